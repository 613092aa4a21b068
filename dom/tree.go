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
    `github.com/oleiade/lane`
)

// Tree is a dominator tree over node indices. Pre and Post hold the DFS
// entry and exit times of every node in the tree, -1 for nodes outside of it.
type Tree struct {
    Root        int
    DominatedBy []int
    DominatorOf [][]int
    Pre         []int
    Post        []int
}

func newTree(idom []int, root int) *Tree {
    nb := len(idom)
    ret := &Tree {
        Root        : root,
        DominatedBy : idom,
        DominatorOf : make([][]int, nb),
        Pre         : make([]int, nb),
        Post        : make([]int, nb),
    }

    /* build the children lists */
    for i, d := range idom {
        if d >= 0 {
            ret.DominatorOf[d] = append(ret.DominatorOf[d], i)
        }
    }

    /* number the nodes */
    ret.number()
    return ret
}

func (self *Tree) number() {
    clock := 0
    next := make([]int, len(self.Pre))

    /* nothing is numbered yet */
    for i := range self.Pre {
        self.Pre[i] = -1
        self.Post[i] = -1
    }

    /* start from the root */
    st := lane.NewStack()
    st.Push(self.Root)
    self.Pre[self.Root] = clock

    /* scan until the stack is empty */
    for !st.Empty() {
        v := st.Head().(int)
        clock++

        /* all the children are visited, pop the current node */
        if next[v] == len(self.DominatorOf[v]) {
            st.Pop()
            self.Post[v] = clock
            continue
        }

        /* visit the next child */
        c := self.DominatorOf[v][next[v]]
        next[v]++
        self.Pre[c] = clock
        st.Push(c)
    }
}

// Contains reports whether node v is part of the tree.
func (self *Tree) Contains(v int) bool {
    return self.Pre[v] >= 0
}

// Dominates reports whether a is an ancestor of b in the tree, or a == b.
func (self *Tree) Dominates(a int, b int) bool {
    if a == b {
        return true
    } else if !self.Contains(a) || !self.Contains(b) {
        return false
    } else {
        return self.Pre[a] <= self.Pre[b] && self.Post[b] <= self.Post[a]
    }
}

// Graph is the index form of a function's CFG, node i is fn.Blocks[i]. Exit is
// a virtual node every returning block flows into.
type Graph struct {
    Blocks []*ir.BasicBlock
    Index  map[*ir.BasicBlock]int
    Succ   [][]int
    Pred   [][]int
    Exit   int
}

// NewGraph builds the index form of fn. Successor edges come from the
// terminators, predecessor edges from the Pred lists maintained by
// Func.Rebuild. Edges are de-duplicated.
func NewGraph(fn *ir.Func) *Graph {
    nb := len(fn.Blocks)
    ret := &Graph {
        Blocks : fn.Blocks,
        Index  : make(map[*ir.BasicBlock]int, nb),
        Succ   : make([][]int, nb + 1),
        Pred   : make([][]int, nb + 1),
        Exit   : nb,
    }

    /* assign indices */
    for i, bb := range fn.Blocks {
        ret.Index[bb] = i
    }

    /* add every edge */
    for i, bb := range fn.Blocks {
        ns := 0
        it := bb.Term.Successors()

        /* successor edges */
        for it.Next() {
            ns++
            ret.Succ[i] = appendEdge(ret.Succ[i], ret.Index[it.Block()])
        }

        /* predecessor edges */
        for _, p := range bb.Pred {
            if j, ok := ret.Index[p]; ok {
                ret.Pred[i] = appendEdge(ret.Pred[i], j)
            }
        }

        /* returning blocks flow into the virtual exit */
        if ns == 0 {
            ret.Succ[i] = appendEdge(ret.Succ[i], ret.Exit)
            ret.Pred[ret.Exit] = appendEdge(ret.Pred[ret.Exit], i)
        }
    }

    /* all done */
    return ret
}

func appendEdge(list []int, to int) []int {
    for _, v := range list {
        if v == to {
            return list
        }
    }
    return append(list, to)
}

// Info answers dominance queries with Lengauer-Tarjan trees computed once
// per function.
type Info struct {
    G   *Graph
    Dom *Tree
    Pdt *Tree
}

// Build computes the dominator tree of fn rooted at the entry block, and the
// post-dominator tree rooted at the virtual exit.
func Build(fn *ir.Func) *Info {
    g := NewGraph(fn)
    return &Info {
        G   : g,
        Dom : newTree(immediateDominators(g.Succ, 0), 0),
        Pdt : newTree(immediateDominators(g.Pred, g.Exit), g.Exit),
    }
}

func (self *Info) index(bb *ir.BasicBlock) (int, bool) {
    i, ok := self.G.Index[bb]
    return i, ok
}

func (self *Info) Dominates(a *ir.BasicBlock, b *ir.BasicBlock) bool {
    if a == b {
        return true
    } else if ia, ok := self.index(a); !ok {
        return false
    } else if ib, ok := self.index(b); !ok {
        return false
    } else {
        return self.Dom.Dominates(ia, ib)
    }
}

func (self *Info) PostDominates(a *ir.BasicBlock, b *ir.BasicBlock) bool {
    if a == b {
        return true
    } else if ia, ok := self.index(a); !ok {
        return false
    } else if ib, ok := self.index(b); !ok {
        return false
    } else {
        return self.Pdt.Dominates(ia, ib)
    }
}

// Idom returns the immediate dominator of bb, nil for the entry block and
// unreachable blocks.
func (self *Info) Idom(bb *ir.BasicBlock) *ir.BasicBlock {
    if i, ok := self.index(bb); !ok {
        return nil
    } else if d := self.Dom.DominatedBy[i]; d < 0 {
        return nil
    } else {
        return self.G.Blocks[d]
    }
}

// IpostDom returns the immediate post-dominator of bb, nil if it is the
// virtual exit or bb cannot reach any exit.
func (self *Info) IpostDom(bb *ir.BasicBlock) *ir.BasicBlock {
    if i, ok := self.index(bb); !ok {
        return nil
    } else if d := self.Pdt.DominatedBy[i]; d < 0 || d == self.G.Exit {
        return nil
    } else {
        return self.G.Blocks[d]
    }
}
