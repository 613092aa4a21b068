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
    `github.com/cloudwego/refprune/internal/log`
    `github.com/cloudwego/refprune/ir`
    `go.uber.org/zap`
)

// Normalize moves the decrefs that come before the last incref of a block
// down to the end of the block, so that within a block every incref precedes
// every decref that can be paired with it.
//
// The moved decrefs are placed in front of the run of decrefs that already
// ends the block, so decrefs never change order among themselves.
type Normalize struct{}

func (Normalize) block(rec Recognizer, bb *ir.BasicBlock) int {
    last := -1
    decr := func(v ir.IrNode) bool {
        k, _ := rec.Classify(v)
        return k == RefDecr
    }

    /* Phase 1: Find the last incref */
    for i, v := range bb.Ins {
        if k, _ := rec.Classify(v); k == RefIncr {
            last = i
        }
    }

    /* no increfs, nothing to do */
    if last < 0 {
        return 0
    }

    /* Phase 2: Pull out the decrefs before the last incref */
    var moved []ir.IrNode
    rest := make([]ir.IrNode, 0, len(bb.Ins))

    /* scan the instructions */
    for i, v := range bb.Ins {
        if i < last && decr(v) {
            moved = append(moved, v)
        } else {
            rest = append(rest, v)
        }
    }

    /* no decrefs to move */
    if len(moved) == 0 {
        return 0
    }

    /* Phase 3: Find the run of decrefs right before the terminator */
    at := len(rest)
    for at > 0 && decr(rest[at - 1]) {
        at--
    }

    /* rebuild the block */
    ins := make([]ir.IrNode, 0, len(bb.Ins))
    ins = append(ins, rest[:at]...)
    ins = append(ins, moved...)
    bb.Ins = append(ins, rest[at:]...)
    return len(moved)
}

func (self Normalize) Apply(ctx *Context) bool {
    ret := false
    for _, bb := range ctx.Fn.Blocks {
        if nb := self.block(ctx.Rec, bb); nb != 0 {
            ret = true
            count(&DecrefsMoved, nb)
            log.Logger().Debug("moved decrefs after the last incref",
                zap.String("func", ctx.Fn.Name),
                zap.String("block", bb.Name),
                zap.Int("count", nb),
            )
        }
    }
    return ret
}
