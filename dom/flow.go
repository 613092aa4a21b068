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
    `gonum.org/v1/gonum/graph/flow`
    `gonum.org/v1/gonum/graph/simple`
)

// FlowInfo answers dominance queries with the gonum flow package. It walks
// the immediate dominator chain on every query.
type FlowInfo struct {
    G   *Graph
    Dom flow.DominatorTree
    Pdt flow.DominatorTree
}

func directed(nb int, succ [][]int) *simple.DirectedGraph {
    g := simple.NewDirectedGraph()
    for i := 0; i < nb; i++ {
        g.AddNode(simple.Node(i))
    }

    /* self-loops never change dominance */
    for from, list := range succ {
        for _, to := range list {
            if from != to {
                g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
            }
        }
    }

    /* all done */
    return g
}

// BuildFlow computes the same relations as Build, using gonum.
func BuildFlow(fn *ir.Func) *FlowInfo {
    g := NewGraph(fn)
    nb := len(g.Succ)
    return &FlowInfo {
        G   : g,
        Dom : flow.Dominators(simple.Node(0), directed(nb, g.Succ)),
        Pdt : flow.Dominators(simple.Node(g.Exit), directed(nb, g.Pred)),
    }
}

func chainHas(dt flow.DominatorTree, a int, b int) bool {
    id := int64(b)
    nx := dt.DominatorOf(id)

    /* walk up until the root */
    for nx != nil && nx.ID() != id {
        if id = nx.ID(); id == int64(a) {
            return true
        }
        nx = dt.DominatorOf(id)
    }

    /* not an ancestor */
    return false
}

func (self *FlowInfo) Dominates(a *ir.BasicBlock, b *ir.BasicBlock) bool {
    if a == b {
        return true
    } else if ia, ok := self.G.Index[a]; !ok {
        return false
    } else if ib, ok := self.G.Index[b]; !ok {
        return false
    } else {
        return chainHas(self.Dom, ia, ib)
    }
}

func (self *FlowInfo) PostDominates(a *ir.BasicBlock, b *ir.BasicBlock) bool {
    if a == b {
        return true
    } else if ia, ok := self.G.Index[a]; !ok {
        return false
    } else if ib, ok := self.G.Index[b]; !ok {
        return false
    } else {
        return chainHas(self.Pdt, ia, ib)
    }
}
