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
	"github.com/cloudwego/refprune/dom"
)

type Options struct {
	IncrefSymbol string
	DecrefSymbol string
	EnableFanout bool
	FanoutDepth  int
	Dominators   dom.Algorithm
}

// CanExpand reports whether the fan-out walk may look past a block found at
// distance d from the incref.
func (self *Options) CanExpand(d int) bool {
	return d+1 < self.FanoutDepth
}

func GetDefaultOptions() Options {
	return Options{
		IncrefSymbol: IncrefSymbol,
		DecrefSymbol: DecrefSymbol,
		EnableFanout: !DisableFanout,
		FanoutDepth:  FanoutDepth,
		Dominators:   Dominators,
	}
}
