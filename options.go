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

package refprune

import (
	"fmt"

	"github.com/cloudwego/refprune/dom"
	"github.com/cloudwego/refprune/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithRefOpSymbols sets the callee names of the incref and decref intrinsics.
//
// The default values are "NRT_incref" and "NRT_decref".
func WithRefOpSymbols(incref string, decref string) Option {
	if incref == "" || decref == "" || incref == decref {
		panic(fmt.Sprintf("refprune: invalid refop symbols: %q, %q", incref, decref))
	} else {
		return func(o *opts.Options) { o.IncrefSymbol, o.DecrefSymbol = incref, decref }
	}
}

// WithFanout enables or disables fan-out elimination, which removes an incref
// against one related decref on each path leaving its block.
//
// This value can also be configured with the `REFPRUNE_DISABLE_FANOUT`
// environment variable.
//
// Fan-out elimination is enabled by default.
func WithFanout(enable bool) Option {
	return func(o *opts.Options) { o.EnableFanout = enable }
}

// WithFanoutDepth sets how many blocks deep fan-out elimination looks for
// related decrefs before giving up.
//
// This value can also be configured with the `REFPRUNE_FANOUT_DEPTH`
// environment variable.
//
// The default value of this option is "10".
func WithFanoutDepth(depth int) Option {
	if depth < 1 {
		panic(fmt.Sprintf("refprune: invalid fan-out depth: %d", depth))
	} else {
		return func(o *opts.Options) { o.FanoutDepth = depth }
	}
}

// WithDominators selects how dominance is computed when no oracle is given.
//
// This value can also be configured with the `REFPRUNE_DOMINATORS`
// environment variable.
func WithDominators(algo dom.Algorithm) Option {
	switch algo {
	case dom.LengauerTarjan, dom.Flow:
		return func(o *opts.Options) { o.Dominators = algo }
	default:
		panic(fmt.Sprintf("refprune: invalid dominator algorithm: %d", algo))
	}
}

// SetFanoutDepth sets the default fan-out depth for all functions from now on.
//
// Returns the old opts.FanoutDepth value.
func SetFanoutDepth(depth int) int {
	depth, opts.FanoutDepth = opts.FanoutDepth, depth
	return depth
}

func options(o []Option) *opts.Options {
	ret := opts.GetDefaultOptions()
	for _, fn := range o {
		fn(&ret)
	}
	return &ret
}
