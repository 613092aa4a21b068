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
    `strings`
    `testing`

    `github.com/cloudwego/refprune/dom`
    `github.com/cloudwego/refprune/internal/opts`
    `github.com/cloudwego/refprune/ir`
    `github.com/google/go-cmp/cmp`
    `github.com/stretchr/testify/require`
)

func testOptions() *opts.Options {
    return &opts.Options {
        IncrefSymbol : opts.IncrefSymbol,
        DecrefSymbol : opts.DecrefSymbol,
        EnableFanout : true,
        FanoutDepth  : 10,
        Dominators   : dom.LengauerTarjan,
    }
}

func runPass(t *testing.T, p Pass, o *opts.Options, src string) (*ir.Func, bool) {
    fn, err := ir.Parse(src)
    require.NoError(t, err)
    return fn, p.Apply(NewContext(fn, o, nil))
}

func requireFunc(t *testing.T, want string, fn *ir.Func) {
    want = strings.TrimLeft(want, "\n")
    if diff := cmp.Diff(ir.MustParse(want).String(), fn.String()); diff != "" {
        t.Fatalf("function mismatch (-want +got):\n%s", diff)
    }
}

func TestRecognizer_Classify(t *testing.T) {
    fn := ir.MustParse(`func @f(%p) {
entry:
    call @NRT_incref(%p)
    call @NRT_decref(null)
    call @NRT_incref(%p, %p)
    %x = call @other(%p)
    %y = load %p
    NRT_decref %p
    ret
}`)
    rec := Recognizer{Incref: opts.IncrefSymbol, Decref: opts.DecrefSymbol}
    ins := fn.Entry().Ins

    kind, ptr := rec.Classify(ins[0])
    require.Equal(t, RefIncr, kind)
    require.Same(t, fn.Args[0], ptr)

    kind, ptr = rec.Classify(ins[1])
    require.Equal(t, RefDecr, kind)
    require.True(t, ir.IsNull(ptr))

    /* operations are never refops, even with a matching name */
    op := ins[5].(*ir.IrOp)
    require.Equal(t, []ir.Value { fn.Args[0] }, op.Usages())
    require.Empty(t, op.Definitions())

    for _, v := range ins[2:] {
        kind, ptr = rec.Classify(v)
        require.Equal(t, RefNone, kind, v.String())
        require.Nil(t, ptr)
    }

    require.Equal(t, "incref", RefIncr.String())
    require.Equal(t, "decref", RefDecr.String())
    require.Equal(t, "none", RefNone.String())
}

func TestRecognizer_CustomSymbols(t *testing.T) {
    fn := ir.MustParse(`func @f(%p) {
entry:
    call @retain(%p)
    call @NRT_decref(%p)
    ret
}`)
    rec := Recognizer{Incref: "retain", Decref: "release"}
    kind, _ := rec.Classify(fn.Entry().Ins[0])
    require.Equal(t, RefIncr, kind)
    kind, _ = rec.Classify(fn.Entry().Ins[1])
    require.Equal(t, RefNone, kind)
}

func TestPasses_Table(t *testing.T) {
    require.Len(t, Passes, 2)
    require.Equal(t, "normalize refops", Passes[0].Name)
    require.Equal(t, "nrtrefnormalizepass", Passes[0].Arg)
    require.Empty(t, Passes[0].Requires)
    require.Equal(t, "prune refops", Passes[1].Name)
    require.Equal(t, "nrtrefprunepass", Passes[1].Arg)
    require.Equal(t, []dom.Kind { dom.DomTree, dom.PostDomTree }, Passes[1].Requires)
}

func TestOptimize_Pipeline(t *testing.T) {
    fn := ir.MustParse(`func @f(%p, %q) {
entry:
    call @NRT_decref(%q)
    call @NRT_incref(%p)
    call @use(%p)
    call @NRT_decref(%p)
    ret
}`)
    require.True(t, Optimize(fn, testOptions(), nil))
    requireFunc(t, `
func @f(%p, %q) {
entry:
    call @use(%p)
    call @NRT_decref(%q)
    ret
}`, fn)
    require.False(t, Optimize(fn, testOptions(), nil))
}

func TestOptimize_FlowOracle(t *testing.T) {
    o := testOptions()
    o.Dominators = dom.Flow
    fn := ir.MustParse(`func @f(%p) {
entry:
    call @NRT_incref(%p)
    goto exit
exit:
    call @NRT_decref(%p)
    ret
}`)
    require.True(t, Optimize(fn, o, nil))
    require.Empty(t, fn.Entry().Ins)
    require.Empty(t, fn.Block("exit").Ins)
}
