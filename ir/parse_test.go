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

    `github.com/davecgh/go-spew/spew`
    `github.com/google/go-cmp/cmp`
    `github.com/stretchr/testify/require`
)

const _DiamondSrc = `func @diamond(%a, %b) {
entry:
    call @NRT_incref(%a)
    %t = load %b
    br %t, then, else
then:
    call @NRT_decref(%a)
    goto exit
else:
    %r = call @compute(%a, 42)
    call @NRT_decref(%a)
    goto exit
exit:
    ret %r
}
`

func TestParse_Roundtrip(t *testing.T) {
    fn, err := Parse(_DiamondSrc)
    require.NoError(t, err)
    if diff := cmp.Diff(_DiamondSrc, fn.String()); diff != "" {
        t.Fatalf("printed function mismatch (-want +got):\n%s", diff)
    }
}

func TestParse_Structure(t *testing.T) {
    fn := MustParse(_DiamondSrc)
    require.Equal(t, "diamond", fn.Name)
    require.Len(t, fn.Args, 2)
    require.Len(t, fn.Blocks, 4)
    require.Equal(t, fn.Blocks[0], fn.Entry())
    require.Equal(t, 4, fn.MaxBlock())

    /* successors follow the terminator */
    entry := fn.Entry()
    require.Equal(t, []*BasicBlock { fn.Block("then"), fn.Block("else") }, entry.Successors())

    /* predecessors are computed by the builder */
    exit := fn.Block("exit")
    require.Equal(t, []*BasicBlock { fn.Block("then"), fn.Block("else") }, exit.Pred)
    require.Empty(t, entry.Pred)

    /* values are interned by name */
    c0 := entry.Ins[0].(*IrCall)
    c1 := fn.Block("then").Ins[0].(*IrCall)
    require.Same(t, fn.Args[0], c0.Args[0])
    require.Same(t, c0.Args[0], c1.Args[0])
    spew.Dump(entry.Ins)
}

func TestParse_Values(t *testing.T) {
    fn := MustParse(`
; leading comments are fine
func @values() {
entry:                  ; trailing comments too
    call @f(null, -1, 0x10)
    ret
}`)
    cc := fn.Entry().Ins[0].(*IrCall)
    require.True(t, IsNull(cc.Args[0]))
    require.False(t, IsNull(cc.Args[1]))
    require.Equal(t, int64(-1), cc.Args[1].(*ConstInt).V)
    require.Equal(t, int64(16), cc.Args[2].(*ConstInt).V)
}

func TestParse_Switch(t *testing.T) {
    src := `func @sw(%v) {
entry:
    switch %v, c [2 => b, 0 => a]
a:
    ret
b:
    ret
c:
    ret
}
`
    fn, err := Parse(src)
    require.NoError(t, err)
    require.Equal(t, "switch %v, c [0 => a, 2 => b]", fn.Entry().Term.String())

    /* cases first in order, then the default */
    var ids []int64
    var bbs []string
    for it := fn.Entry().Term.Successors(); it.Next(); {
        id, ok := it.Value()
        if ok {
            ids = append(ids, id)
        }
        bbs = append(bbs, it.Block().Name)
    }
    require.Equal(t, []int64 { 0, 2 }, ids)
    require.Equal(t, []string { "a", "b", "c" }, bbs)
}

func TestParse_FallThrough(t *testing.T) {
    fn := MustParse(`func @ft() {
entry:
    nop
next:
    ret
}`)
    require.Equal(t, "goto next", fn.Entry().Term.String())
    require.Equal(t, []*BasicBlock { fn.Entry() }, fn.Block("next").Pred)
}

func TestParse_Errors(t *testing.T) {
    tests := []struct {
        name string
        src  string
        line int
    } {
        { name: "empty"           , src: ""                                                   , line: 1 },
        { name: "no header"       , src: "entry:\n    ret\n"                                  , line: 1 },
        { name: "bad argument"    , src: "func @f(a) {\nentry:\n    ret\n}"                   , line: 1 },
        { name: "unresolved label", src: "func @f() {\nentry:\n    goto nowhere\n}"            , line: 4 },
        { name: "duplicated label", src: "func @f() {\nentry:\n    ret\nentry:\n    ret\n}"   , line: 4 },
        { name: "unterminated"    , src: "func @f() {\nentry:\n    nop\n}"                     , line: 4 },
        { name: "no blocks"       , src: "func @f() {\n}"                                     , line: 2 },
        { name: "outside a block" , src: "func @f() {\n    nop\n}"                            , line: 2 },
        { name: "bad value"       , src: "func @f() {\nentry:\n    call @g(x)\n    ret\n}"    , line: 3 },
        { name: "bad call"        , src: "func @f() {\nentry:\n    call g(%x)\n    ret\n}"    , line: 3 },
        { name: "valued branch"   , src: "func @f() {\nentry:\n    %x = ret\n}"               , line: 3 },
        { name: "bad branch"      , src: "func @f() {\nentry:\n    br %x, a\n}"               , line: 3 },
        { name: "duplicated case" , src: "func @f() {\nentry:\n    switch %x, a [1 => a, 1 => a]\na:\n    ret\n}", line: 3 },
        { name: "undefined value" , src: "func @f() {\nentry:\n    call @g(%x)\n    ret\n}"   , line: 5 },
        { name: "undefined cond"  , src: "func @f() {\nentry:\n    br %c, a, a\na:\n    ret\n}", line: 6 },
        { name: "trailing text"   , src: "func @f() {\nentry:\n    ret\n}\nret"              , line: 5 },
    }
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            _, err := Parse(tc.src)
            require.Error(t, err)
            se, ok := err.(SyntaxError)
            require.True(t, ok, "unexpected error type: %T", err)
            require.Equal(t, tc.line, se.Line, se.Error())
        })
    }
}

func TestMustParse_Panics(t *testing.T) {
    require.Panics(t, func() { MustParse("func @f() {") })
}
