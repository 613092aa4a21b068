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
    `testing`

    `github.com/stretchr/testify/require`
)

func TestBuilder_Loop(t *testing.T) {
    p := CreateBuilder("loop", "p")
    p.Label("entry")
    p.CALL("NRT_incref", p.Var("p"))
    p.Label("body")
    p.OP(p.Var("c"), "next", p.Var("p"))
    p.BR(p.Var("c"), "body", "exit")
    p.Label("exit")
    p.CALL("NRT_decref", p.Var("p"))
    p.RET()
    fn, err := p.Build()
    require.NoError(t, err)

    /* the self loop shows up once in the predecessors */
    body := fn.Block("body")
    require.Equal(t, []*BasicBlock { fn.Entry(), body }, body.Pred)
    require.Equal(t, []*BasicBlock { body, fn.Block("exit") }, body.Successors())
    require.Equal(t, 2, body.Id)

    /* the text form parses back to the same thing */
    require.Equal(t, fn.String(), MustParse(fn.String()).String())
}

func TestBuilder_Errors(t *testing.T) {
    p := CreateBuilder("bad")
    p.RET()
    p.Label("entry")
    p.JMP("missing")
    _, err := p.Build()
    require.EqualError(t, err, "terminator outside of a block: ret")
}

func TestBasicBlock_Erase(t *testing.T) {
    p := CreateBuilder("erase", "a")
    p.Label("entry")
    i0 := p.CALL("f", p.Var("a"))
    i1 := p.CALL("g", p.Var("a"))
    i2 := p.CALL("h", p.Var("a"))
    p.RET()
    fn, err := p.Build()
    require.NoError(t, err)

    /* erase the first and the last call */
    bb := fn.Entry()
    nb := bb.Erase(map[IrNode]struct{} { i0: {}, i2: {} })
    require.Equal(t, 2, nb)
    require.Equal(t, []IrNode { i1 }, bb.Ins)
    require.Equal(t, 0, bb.Index(i1))
    require.Equal(t, -1, bb.Index(i0))

    /* nothing left to erase */
    require.Zero(t, bb.Erase(map[IrNode]struct{} { i0: {} }))
}

func TestBuilder_UndefinedValues(t *testing.T) {
    p := CreateBuilder("undef", "a")
    p.Label("entry")
    p.OP(p.Var("x"), "load", p.Var("a"))
    p.CALL("use", p.Var("x"), p.Var("z"))
    p.BR(p.Var("y"), "exit", "exit")
    p.Label("exit")
    p.RET(p.Var("z"), p.Int(0), p.Null())
    _, err := p.Build()
    require.EqualError(t, err, "values are never defined: [%y %z]")

    /* values defined in any block are fine */
    p = CreateBuilder("def", "a")
    p.Label("entry")
    p.JMP("next")
    p.Label("exit")
    p.RET(p.Var("r"))
    p.Label("next")
    call := p.CALL("get", p.Var("a"))
    call.R = p.Var("r")
    p.JMP("exit")
    _, err = p.Build()
    require.NoError(t, err)
    require.Equal(t, []*Var { p.Var("r") }, call.Definitions())
}
