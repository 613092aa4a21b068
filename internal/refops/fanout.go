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
    `github.com/cloudwego/refprune/dom`
    `github.com/cloudwego/refprune/internal/opts`
    `github.com/cloudwego/refprune/ir`
    `github.com/oleiade/lane`
)

type _Frame struct {
    bb   *ir.BasicBlock
    succ []*ir.BasicBlock
    next int
}

func framenew(bb *ir.BasicBlock) *_Frame {
    return &_Frame {
        bb   : bb,
        succ : bb.Successors(),
    }
}

// _FanoutWalk resolves every path leaving the block of an incref to the
// nearest block holding a related decref.
type _FanoutWalk struct {
    op    *RefOp
    idx   _DecrefIndex
    opts  *opts.Options
    path  map[*ir.BasicBlock]struct{}
    found map[*ir.BasicBlock]struct{}
    order []*ir.BasicBlock
}

func (self *_FanoutWalk) push(st *lane.Stack, fr *_Frame) {
    st.Push(fr)
    self.path[fr.bb] = struct{}{}
}

func (self *_FanoutWalk) pop(st *lane.Stack) {
    delete(self.path, st.Pop().(*_Frame).bb)
}

func (self *_FanoutWalk) add(bb *ir.BasicBlock) {
    if _, ok := self.found[bb]; !ok {
        self.found[bb] = struct{}{}
        self.order = append(self.order, bb)
    }
}

// resolve returns the found blocks in discovery order, or false if some path
// loops back, ends, or runs out of depth before a related decref shows up.
func (self *_FanoutWalk) resolve() ([]*ir.BasicBlock, bool) {
    st := lane.NewStack()
    root := framenew(self.op.Bb)

    /* the incref block must have somewhere to go */
    if len(root.succ) == 0 || !self.opts.CanExpand(0) {
        return nil, false
    }

    /* start from the incref block */
    self.push(st, root)

    /* scan until the stack is empty */
    for !st.Empty() {
        fr := st.Head().(*_Frame)

        /* all the successors are resolved, pop the current block */
        if fr.next == len(fr.succ) {
            self.pop(st)
            continue
        }

        /* take the next successor */
        bb := fr.succ[fr.next]
        fr.next++

        /* back to a block on the current path */
        if _, ok := self.path[bb]; ok {
            return nil, false
        }

        /* this path is resolved */
        if self.idx.related(bb, self.op) != nil {
            self.add(bb)
            continue
        }

        /* expand the block if possible */
        if nf := framenew(bb); len(nf.succ) == 0 || !self.opts.CanExpand(st.Size()) {
            return nil, false
        } else {
            self.push(st, nf)
        }
    }

    /* all paths are resolved */
    return self.order, true
}

// fanout finds the blocks whose related decrefs balance op on every path. The
// incref block must dominate each of them, no other decref may show up on the
// way, and no path may get from one of them to another without going through
// the incref block again.
func fanout(idx _DecrefIndex, op *RefOp, o *opts.Options, oracle dom.Oracle) ([]*ir.BasicBlock, bool) {
    fw := &_FanoutWalk {
        op    : op,
        idx   : idx,
        opts  : o,
        path  : make(map[*ir.BasicBlock]struct{}),
        found : make(map[*ir.BasicBlock]struct{}),
    }

    /* walk the successor graph */
    ret, ok := fw.resolve()
    if !ok {
        return nil, false
    }

    /* every decref block must be dominated by the incref block */
    for _, bb := range ret {
        if !oracle.Dominates(op.Bb, bb) {
            return nil, false
        }
    }

    /* no decrefs in between */
    if hasDecrefBetween(idx, op.Bb, ret...) {
        return nil, false
    }

    /* decref blocks must not reach each other around the incref block */
    if reachesAvoiding(ret, ret, op.Bb) {
        return nil, false
    } else {
        return ret, true
    }
}
