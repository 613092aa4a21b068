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
    `fmt`
    `strings`
)

// Func is a function body. Blocks[0] is the entry block, the order of Blocks
// is the order in which passes visit the function.
type Func struct {
    Name   string
    Args   []*Var
    Blocks []*BasicBlock
}

func (self *Func) Entry() *BasicBlock {
    if len(self.Blocks) == 0 {
        return nil
    } else {
        return self.Blocks[0]
    }
}

// Block finds a block by name.
func (self *Func) Block(name string) *BasicBlock {
    for _, bb := range self.Blocks {
        if bb.Name == name {
            return bb
        }
    }
    return nil
}

// MaxBlock returns the largest block ID in the function.
func (self *Func) MaxBlock() int {
    ret := 0
    for _, bb := range self.Blocks {
        if bb.Id > ret {
            ret = bb.Id
        }
    }
    return ret
}

// Rebuild recomputes the predecessor list of every block from the terminators.
func (self *Func) Rebuild() {
    for _, bb := range self.Blocks {
        bb.Pred = bb.Pred[:0]
    }

    /* add every edge, each predecessor at most once */
    for _, bb := range self.Blocks {
        for it := bb.Term.Successors(); it.Next(); {
            if to := it.Block(); !hasBlock(to.Pred, bb) {
                to.Pred = append(to.Pred, bb)
            }
        }
    }
}

func hasBlock(list []*BasicBlock, bb *BasicBlock) bool {
    for _, p := range list {
        if p == bb {
            return true
        }
    }
    return false
}

func (self *Func) String() string {
    args := make([]string, 0, len(self.Args))
    body := make([]string, 0, len(self.Blocks))

    /* dump the arguments */
    for _, v := range self.Args {
        args = append(args, v.String())
    }

    /* dump every block */
    for _, bb := range self.Blocks {
        body = append(body, bb.String())
    }

    /* join them together */
    return fmt.Sprintf(
        "func @%s(%s) {\n%s\n}\n",
        self.Name,
        strings.Join(args, ", "),
        strings.Join(body, "\n"),
    )
}
