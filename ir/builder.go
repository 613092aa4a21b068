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
    `sort`
)

// Builder assembles a Func block by block. Blocks are created by Label in the
// order they should appear in the function, and may be referenced by branches
// before they are labelled.
type Builder struct {
    fn   *Func
    bb   *BasicBlock
    err  error
    vars map[string]*Var
    refs map[string]*BasicBlock
    defs map[string]bool
}

func CreateBuilder(name string, args ...string) *Builder {
    ret := &Builder {
        fn   : &Func{Name: name},
        vars : make(map[string]*Var),
        refs : make(map[string]*BasicBlock),
        defs : make(map[string]bool),
    }

    /* declare all the arguments */
    for _, v := range args {
        ret.fn.Args = append(ret.fn.Args, ret.Var(v))
    }

    /* all done */
    return ret
}

func (self *Builder) fail(format string, args ...interface{}) {
    if self.err == nil {
        self.err = fmt.Errorf(format, args...)
    }
}

func (self *Builder) block(name string) *BasicBlock {
    var ok bool
    var bb *BasicBlock

    /* check for existing blocks */
    if bb, ok = self.refs[name]; ok {
        return bb
    }

    /* create a new block */
    bb = &BasicBlock{Name: name}
    self.refs[name] = bb
    return bb
}

// Var returns the value named name, the same *Var is returned for the same name.
func (self *Builder) Var(name string) *Var {
    var ok bool
    var vv *Var

    /* check for existing values */
    if vv, ok = self.vars[name]; !ok {
        vv = &Var{Name: name}
        self.vars[name] = vv
    }

    /* all done */
    return vv
}

func (self *Builder) Null() Value {
    return new(ConstNull)
}

func (self *Builder) Int(v int64) Value {
    return &ConstInt{V: v}
}

// Label starts a new block. If the current block has not been terminated yet,
// it falls through into the new block with an explicit jump.
func (self *Builder) Label(name string) {
    if self.defs[name] {
        self.fail("label %s has already been linked", name)
        return
    }

    /* place the block */
    bb := self.block(name)
    bb.Id = len(self.fn.Blocks) + 1
    self.defs[name] = true
    self.fn.Blocks = append(self.fn.Blocks, bb)

    /* fall through from the previous block */
    if self.bb != nil {
        self.bb.Term = IrJump(bb)
    }

    /* switch to the new block */
    self.bb = bb
}

// Emit appends ins to the current block.
func (self *Builder) Emit(ins IrNode) {
    if self.bb == nil {
        self.fail("instruction outside of a block: %s", ins)
    } else if _, ok := ins.(IrTerminator); ok {
        self.fail("terminator emitted as an instruction: %s", ins)
    } else {
        self.bb.Ins = append(self.bb.Ins, ins)
    }
}

func (self *Builder) CALL(fn string, args ...Value) *IrCall {
    ret := &IrCall{Fn: fn, Args: args}
    self.Emit(ret)
    return ret
}

func (self *Builder) OP(r *Var, op string, args ...Value) *IrOp {
    ret := &IrOp{R: r, Op: op, Args: args}
    self.Emit(ret)
    return ret
}

func (self *Builder) terminate(term IrTerminator) {
    if self.bb == nil {
        self.fail("terminator outside of a block: %s", term)
    } else {
        self.bb.Term = term
        self.bb = nil
    }
}

func (self *Builder) JMP(to string) {
    self.terminate(IrJump(self.block(to)))
}

func (self *Builder) BR(v Value, t string, f string) {
    self.terminate(IrBranch(v, self.block(t), self.block(f)))
}

func (self *Builder) SWITCH(v Value, ln string, br map[int64]string) {
    sw := &IrSwitch {
        V  : v,
        Ln : self.block(ln),
        Br : make(map[int64]*BasicBlock, len(br)),
    }

    /* add every case */
    for k, to := range br {
        sw.Br[k] = self.block(to)
    }

    /* terminate the current block */
    self.terminate(sw)
}

func (self *Builder) RET(vals ...Value) {
    self.terminate(&IrReturn{R: vals})
}

// Build links the function and computes the predecessor lists.
func (self *Builder) Build() (*Func, error) {
    var pend []string

    /* check for unresolved labels */
    for name := range self.refs {
        if !self.defs[name] {
            pend = append(pend, name)
        }
    }

    /* report them in a stable order */
    if len(pend) != 0 {
        sort.Strings(pend)
        self.fail("labels are not fully resolved: %v", pend)
    }

    /* the last block must terminate */
    if self.bb != nil {
        self.fail("basic block %s does not terminate", self.bb.Name)
    }

    /* must have at least one block */
    if len(self.fn.Blocks) == 0 {
        self.fail("function %s has no blocks", self.fn.Name)
    }

    /* every value must be defined somewhere */
    if self.err == nil {
        self.checkValues()
    }

    /* check for errors */
    if self.err != nil {
        return nil, self.err
    }

    /* compute the predecessors */
    self.fn.Rebuild()
    return self.fn, nil
}

func (self *Builder) checkValues() {
    var pend []string
    defs := make(map[*Var]bool, len(self.vars))

    /* arguments are always defined */
    for _, v := range self.fn.Args {
        defs[v] = true
    }

    /* collect every definition */
    for _, bb := range self.fn.Blocks {
        for _, v := range bb.Ins {
            if d, ok := v.(IrDefinitions); ok {
                for _, r := range d.Definitions() {
                    defs[r] = true
                }
            }
        }
    }

    /* check every usage, terminators included */
    for _, bb := range self.fn.Blocks {
        ins := append(append([]IrNode(nil), bb.Ins...), bb.Term)
        for _, v := range ins {
            if u, ok := v.(IrUsages); ok {
                for _, x := range u.Usages() {
                    if vv, ok := x.(*Var); ok && !defs[vv] {
                        defs[vv] = true
                        pend = append(pend, vv.String())
                    }
                }
            }
        }
    }

    /* report them in a stable order */
    if len(pend) != 0 {
        sort.Strings(pend)
        self.fail("values are never defined: %v", pend)
    }
}
