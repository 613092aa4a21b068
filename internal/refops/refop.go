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
    `fmt`

    `github.com/cloudwego/refprune/ir`
)

type RefKind uint8

const (
    RefNone RefKind = iota
    RefIncr
    RefDecr
)

func (self RefKind) String() string {
    switch self {
        case RefNone : return "none"
        case RefIncr : return "incref"
        case RefDecr : return "decref"
        default      : return fmt.Sprintf("RefKind(%d)", uint8(self))
    }
}

// Recognizer tells refops apart from other instructions by the callee name.
type Recognizer struct {
    Incref string
    Decref string
}

// Classify returns the kind of ins and the value it adjusts. Only calls with
// exactly one argument are refops.
func (self Recognizer) Classify(ins ir.IrNode) (RefKind, ir.Value) {
    var ok bool
    var cc *ir.IrCall

    /* must be a call with a single argument */
    if cc, ok = ins.(*ir.IrCall); !ok || len(cc.Args) != 1 {
        return RefNone, nil
    }

    /* check for the callee */
    switch arg := cc.Usages()[0]; cc.Fn {
        case self.Incref : return RefIncr, arg
        case self.Decref : return RefDecr, arg
        default          : return RefNone, nil
    }
}

// RefOp is a refop found in a block. Pos is the position of the call at the
// time it was collected, dead is set once the refop is scheduled for erasure.
type RefOp struct {
    Kind RefKind
    Ptr  ir.Value
    Ins  *ir.IrCall
    Bb   *ir.BasicBlock
    Pos  int
    dead bool
}

func (self *RefOp) String() string {
    return fmt.Sprintf("%s: %s", self.Bb.Name, self.Ins)
}

// Related reports whether both refops adjust the very same value.
func (self *RefOp) Related(other *RefOp) bool {
    return self.Ptr == other.Ptr
}

type _RefSet struct {
    null []*RefOp
    incs []*RefOp
    decs []*RefOp
}

// collect scans the function in block order, then instruction order.
func collect(rec Recognizer, fn *ir.Func) (ret _RefSet) {
    for _, bb := range fn.Blocks {
        for i, v := range bb.Ins {
            var kind RefKind
            var ptr  ir.Value

            /* skip other instructions */
            if kind, ptr = rec.Classify(v); kind == RefNone {
                continue
            }

            /* create the refop */
            op := &RefOp {
                Kind : kind,
                Ptr  : ptr,
                Ins  : v.(*ir.IrCall),
                Bb   : bb,
                Pos  : i,
            }

            /* classify by operand and kind */
            if ir.IsNull(ptr) {
                ret.null = append(ret.null, op)
            } else if kind == RefIncr {
                ret.incs = append(ret.incs, op)
            } else {
                ret.decs = append(ret.decs, op)
            }
        }
    }
    return
}

// erase removes every refop in ops with one sweep per affected block, and
// returns the number of instructions removed.
func erase(ops []*RefOp) int {
    var nb int
    var bbs []*ir.BasicBlock

    /* build the erase set */
    seen := make(map[*ir.BasicBlock]bool)
    dead := make(map[ir.IrNode]struct{}, len(ops))

    /* mark every instruction */
    for _, op := range ops {
        dead[op.Ins] = struct{}{}
        op.dead = true

        /* remember the blocks in the order they appear */
        if !seen[op.Bb] {
            seen[op.Bb] = true
            bbs = append(bbs, op.Bb)
        }
    }

    /* sweep every affected block */
    for _, bb := range bbs {
        nb += bb.Erase(dead)
    }

    /* all done */
    return nb
}
