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

package ir

import (
    `strings`
)

// BasicBlock is a straight-line sequence of instructions ended by Term.
// Positions "before the terminator" are the tail of Ins.
type BasicBlock struct {
    Id   int
    Name string
    Ins  []IrNode
    Pred []*BasicBlock
    Term IrTerminator
}

// Successors returns the successor blocks in the order the terminator lists them.
func (self *BasicBlock) Successors() []*BasicBlock {
    var ret []*BasicBlock
    for it := self.Term.Successors(); it.Next(); {
        ret = append(ret, it.Block())
    }
    return ret
}

// Index returns the position of ins within the block, or -1 if ins is not
// part of the block.
func (self *BasicBlock) Index(ins IrNode) int {
    for i, v := range self.Ins {
        if v == ins {
            return i
        }
    }
    return -1
}

// Erase removes every instruction found in dead with a single sweep over the
// block, preserving the order of the survivors, and returns the number of
// instructions removed.
func (self *BasicBlock) Erase(dead map[IrNode]struct{}) int {
    ins := self.Ins
    self.Ins = self.Ins[:0]

    /* filter the instructions */
    for _, v := range ins {
        if _, ok := dead[v]; !ok {
            self.Ins = append(self.Ins, v)
        }
    }

    /* clear the tail to release the erased instructions */
    for i := len(self.Ins); i < len(ins); i++ {
        ins[i] = nil
    }

    /* number of erased instructions */
    return len(ins) - len(self.Ins)
}

func (self *BasicBlock) String() string {
    buf := make([]string, 0, len(self.Ins) + 2)
    buf = append(buf, self.Name + ":")

    /* dump every instruction */
    for _, v := range self.Ins {
        buf = append(buf, "    " + v.String())
    }

    /* the terminator, if any */
    if self.Term != nil {
        buf = append(buf, "    " + self.Term.String())
    }

    /* join them together */
    return strings.Join(buf, "\n")
}
