/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package opts

import (
	"os"
	"strconv"

	"github.com/cloudwego/refprune/dom"
)

const (
	_DefaultFanoutDepth = 10 // cutoff at 10 levels of successors
)

const (
	IncrefSymbol = "NRT_incref"
	DecrefSymbol = "NRT_decref"
)

var (
	FanoutDepth   = parseOrDefault("REFPRUNE_FANOUT_DEPTH", _DefaultFanoutDepth, 1)
	DisableFanout = parseFlag("REFPRUNE_DISABLE_FANOUT")
	Dominators    = parseAlgorithm("REFPRUNE_DOMINATORS", dom.LengauerTarjan)
)

func parseOrDefault(key string, def int, min int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("refprune: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("refprune: value too small for " + key)
	} else {
		return ret
	}
}

func parseFlag(key string) bool {
	if env := os.Getenv(key); env == "" {
		return false
	} else if val, err := strconv.ParseBool(env); err != nil {
		panic("refprune: invalid value for " + key)
	} else {
		return val
	}
}

func parseAlgorithm(key string, def dom.Algorithm) dom.Algorithm {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, ok := dom.ParseAlgorithm(env); !ok {
		panic("refprune: invalid value for " + key)
	} else {
		return val
	}
}
