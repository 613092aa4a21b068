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

package refops

import (
    `github.com/cloudwego/refprune/ir`
    `github.com/oleiade/lane`
)

// _DecrefIndex groups the decrefs of a function by block, in program order.
type _DecrefIndex map[*ir.BasicBlock][]*RefOp

func newDecrefIndex(decs []*RefOp) _DecrefIndex {
    ret := make(_DecrefIndex)
    for _, d := range decs {
        ret[d.Bb] = append(ret[d.Bb], d)
    }
    return ret
}

// live reports whether bb still holds a decref that is not consumed.
func (self _DecrefIndex) live(bb *ir.BasicBlock) bool {
    for _, d := range self[bb] {
        if !d.dead {
            return true
        }
    }
    return false
}

// related returns the first live decref in bb on the same value as op.
func (self _DecrefIndex) related(bb *ir.BasicBlock, op *RefOp) *RefOp {
    for _, d := range self[bb] {
        if !d.dead && d.Related(op) {
            return d
        }
    }
    return nil
}

func stacknew(bb []*ir.BasicBlock) *lane.Stack {
    ret := lane.NewStack()
    for i := len(bb) - 1; i >= 0; i-- {
        ret.Push(bb[i])
    }
    return ret
}

// hasDecrefBetween reports whether some path leaving head passes through a
// block holding a live decref before it reaches one of tails. Paths stop at
// the tails, and every block is expanded at most once.
func hasDecrefBetween(idx _DecrefIndex, head *ir.BasicBlock, tails ...*ir.BasicBlock) bool {
    st := stacknew(head.Successors())
    vis := make(map[*ir.BasicBlock]struct{})

    /* the tails end every path */
    for _, bb := range tails {
        vis[bb] = struct{}{}
    }

    /* scan until the stack is empty */
    for !st.Empty() {
        bb := st.Pop().(*ir.BasicBlock)

        /* skip visited blocks and the tails */
        if _, ok := vis[bb]; ok {
            continue
        }

        /* any decref on the way makes the pair unsafe */
        if vis[bb] = struct{}{}; idx.live(bb) {
            return true
        }

        /* continue with the successors */
        for _, p := range bb.Successors() {
            st.Push(p)
        }
    }

    /* no decref found */
    return false
}

// reachesAvoiding reports whether any block of dst can be reached from any
// block of src through at least one edge, without passing through avoid.
func reachesAvoiding(src []*ir.BasicBlock, dst []*ir.BasicBlock, avoid *ir.BasicBlock) bool {
    st := lane.NewStack()
    vis := make(map[*ir.BasicBlock]struct{})
    want := make(map[*ir.BasicBlock]struct{}, len(dst))

    /* mark the targets */
    for _, bb := range dst {
        want[bb] = struct{}{}
    }

    /* start from the successors of every source block */
    for _, bb := range src {
        for _, p := range bb.Successors() {
            st.Push(p)
        }
    }

    /* scan until the stack is empty */
    for !st.Empty() {
        bb := st.Pop().(*ir.BasicBlock)

        /* never walk through the avoided block */
        if bb == avoid {
            continue
        }

        /* check for targets */
        if _, ok := want[bb]; ok {
            return true
        }

        /* skip visited blocks */
        if _, ok := vis[bb]; ok {
            continue
        }

        /* continue with the successors */
        vis[bb] = struct{}{}
        for _, p := range bb.Successors() {
            st.Push(p)
        }
    }

    /* not reachable */
    return false
}

// balanced reports whether the blocks a and c always execute alternately,
// given that a dominates c and c post-dominates a: no cycle through c may
// avoid a, and no cycle through a may avoid c.
func balanced(a *ir.BasicBlock, c *ir.BasicBlock) bool {
    src := []*ir.BasicBlock { c }
    dst := []*ir.BasicBlock { a }
    return !reachesAvoiding(src, src, a) && !reachesAvoiding(dst, dst, c)
}
