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
    `strconv`
    `strings`

    `golang.org/x/exp/maps`
    `golang.org/x/exp/slices`
)

// Value is an operand of an instruction. Values are compared by identity:
// two operands refer to the same value only if they are the same pointer.
type Value interface {
    fmt.Stringer
    irvalue()
}

func (*Var)       irvalue() {}
func (*ConstNull) irvalue() {}
func (*ConstInt)  irvalue() {}

// Var is a named SSA value, such as a function argument or an instruction result.
type Var struct {
    Name string
}

func (self *Var) String() string {
    return "%" + self.Name
}

// ConstNull is the null pointer constant.
type ConstNull struct{}

func (*ConstNull) String() string {
    return "null"
}

type ConstInt struct {
    V int64
}

func (self *ConstInt) String() string {
    return strconv.FormatInt(self.V, 10)
}

// IsNull reports whether v is statically known to be a null pointer.
func IsNull(v Value) bool {
    _, ok := v.(*ConstNull)
    return ok
}

type IrNode interface {
    fmt.Stringer
    irnode()
}

func (*IrCall)   irnode() {}
func (*IrOp)     irnode() {}
func (*IrSwitch) irnode() {}
func (*IrReturn) irnode() {}

type IrUsages interface {
    IrNode
    Usages() []Value
}

type IrDefinitions interface {
    IrNode
    Definitions() []*Var
}

func joinValues(v []Value) string {
    ret := make([]string, 0, len(v))
    for _, x := range v { ret = append(ret, x.String()) }
    return strings.Join(ret, ", ")
}

// IrCall is a call to an external symbol.
type IrCall struct {
    R    *Var
    Fn   string
    Args []Value
}

func (self *IrCall) String() string {
    if self.R == nil {
        return fmt.Sprintf("call @%s(%s)", self.Fn, joinValues(self.Args))
    } else {
        return fmt.Sprintf("%s = call @%s(%s)", self.R, self.Fn, joinValues(self.Args))
    }
}

func (self *IrCall) Usages() []Value {
    return self.Args
}

func (self *IrCall) Definitions() []*Var {
    if self.R == nil {
        return nil
    } else {
        return []*Var { self.R }
    }
}

// IrOp is an operation the reference-count passes know nothing about.
type IrOp struct {
    R    *Var
    Op   string
    Args []Value
}

func (self *IrOp) String() string {
    var buf strings.Builder

    /* result value, if any */
    if self.R != nil {
        buf.WriteString(self.R.String())
        buf.WriteString(" = ")
    }

    /* opcode and arguments */
    buf.WriteString(self.Op)
    if len(self.Args) != 0 {
        buf.WriteByte(' ')
        buf.WriteString(joinValues(self.Args))
    }

    /* all done */
    return buf.String()
}

func (self *IrOp) Usages() []Value {
    return self.Args
}

func (self *IrOp) Definitions() []*Var {
    if self.R == nil {
        return nil
    } else {
        return []*Var { self.R }
    }
}

type IrSuccessors interface {
    Next() bool
    Block() *BasicBlock
    Value() (int64, bool)
}

type IrTerminator interface {
    IrNode
    Successors() IrSuccessors
    irterminator()
}

func (*IrSwitch) irterminator() {}
func (*IrReturn) irterminator() {}

type _SwitchSuccessors struct {
    i int
    k []int64
    b map[int64]*BasicBlock
    v *BasicBlock
    r *BasicBlock
    c bool
}

func (self *_SwitchSuccessors) Next() bool {
    if self.i < len(self.k) {
        self.c = true
        self.v = self.b[self.k[self.i]]
        self.i++
        return true
    } else if self.r != nil {
        self.c = false
        self.v = self.r
        self.r = nil
        return true
    } else {
        self.v = nil
        return false
    }
}

func (self *_SwitchSuccessors) Block() *BasicBlock {
    return self.v
}

func (self *_SwitchSuccessors) Value() (int64, bool) {
    if !self.c {
        return 0, false
    } else {
        return self.k[self.i - 1], true
    }
}

// IrSwitch transfers control to Br[V] if present, or to Ln otherwise. An
// IrSwitch without any cases is an unconditional jump.
type IrSwitch struct {
    V  Value
    Ln *BasicBlock
    Br map[int64]*BasicBlock
}

func (self *IrSwitch) cases() []int64 {
    keys := maps.Keys(self.Br)
    slices.Sort(keys)
    return keys
}

func (self *IrSwitch) String() string {
    nb := len(self.Br)
    ret := make([]string, 0, nb)

    /* no branches */
    if nb == 0 {
        return "goto " + self.Ln.Name
    }

    /* conditional branch */
    if bb, ok := self.Br[1]; ok && nb == 1 {
        return fmt.Sprintf("br %s, %s, %s", self.V, bb.Name, self.Ln.Name)
    }

    /* add each case */
    for _, id := range self.cases() {
        ret = append(ret, fmt.Sprintf("%d => %s", id, self.Br[id].Name))
    }

    /* join them together */
    return fmt.Sprintf(
        "switch %s, %s [%s]",
        self.V,
        self.Ln.Name,
        strings.Join(ret, ", "),
    )
}

func (self *IrSwitch) Usages() []Value {
    if self.V == nil {
        return nil
    } else {
        return []Value { self.V }
    }
}

// Successors iterates the case targets in ascending case order, then the
// default target.
func (self *IrSwitch) Successors() IrSuccessors {
    return &_SwitchSuccessors {
        k: self.cases(),
        b: self.Br,
        r: self.Ln,
    }
}

type _EmptySuccessor struct{}
func (_EmptySuccessor) Next()  bool          { return false }
func (_EmptySuccessor) Block() *BasicBlock   { return nil }
func (_EmptySuccessor) Value() (int64, bool) { return 0, false }

type IrReturn struct {
    R []Value
}

func (self *IrReturn) String() string {
    if len(self.R) == 0 {
        return "ret"
    } else {
        return "ret " + joinValues(self.R)
    }
}

func (self *IrReturn) Usages() []Value {
    return self.R
}

func (self *IrReturn) Successors() IrSuccessors {
    return _EmptySuccessor{}
}

// IrJump creates an unconditional jump to bb.
func IrJump(bb *BasicBlock) IrTerminator {
    return &IrSwitch{Ln: bb}
}

// IrBranch creates a two-way branch on v.
func IrBranch(v Value, t *BasicBlock, f *BasicBlock) IrTerminator {
    return &IrSwitch{V: v, Ln: f, Br: map[int64]*BasicBlock{1: t}}
}
