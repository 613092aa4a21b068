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

package dom

import (
    `github.com/cloudwego/refprune/ir`
)

// Oracle answers dominance queries between blocks of one function.
//
// Dominates(a, b) holds if every path from the entry block to b passes
// through a. PostDominates(a, b) holds if every path from b to a function
// exit passes through a. Both relations are reflexive.
type Oracle interface {
    Dominates(a *ir.BasicBlock, b *ir.BasicBlock) bool
    PostDominates(a *ir.BasicBlock, b *ir.BasicBlock) bool
}

// Kind names an analysis a pass depends on.
type Kind int

const (
    DomTree Kind = iota
    PostDomTree
)

func (self Kind) String() string {
    switch self {
        case DomTree     : return "domtree"
        case PostDomTree : return "postdomtree"
        default          : return "unknown"
    }
}

// Algorithm selects how an Oracle is computed.
type Algorithm int

const (
    LengauerTarjan Algorithm = iota
    Flow
)

var _AlgorithmNames = map[string]Algorithm {
    "lengauer-tarjan" : LengauerTarjan,
    "flow"            : Flow,
}

// ParseAlgorithm converts an algorithm name ("lengauer-tarjan" or "flow").
func ParseAlgorithm(name string) (Algorithm, bool) {
    algo, ok := _AlgorithmNames[name]
    return algo, ok
}

func (self Algorithm) String() string {
    switch self {
        case LengauerTarjan : return "lengauer-tarjan"
        case Flow           : return "flow"
        default             : return "unknown"
    }
}

// Compute builds an Oracle for fn.
func (self Algorithm) Compute(fn *ir.Func) Oracle {
    switch self {
        case Flow : return BuildFlow(fn)
        default   : return Build(fn)
    }
}
