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
)

// Context carries everything a pass needs while processing one function.
type Context struct {
    Fn   *ir.Func
    Dom  dom.Oracle
    Opts *opts.Options
    Rec  Recognizer
}

func NewContext(fn *ir.Func, o *opts.Options, oracle dom.Oracle) *Context {
    return &Context {
        Fn   : fn,
        Dom  : oracle,
        Opts : o,
        Rec  : Recognizer {
            Incref: o.IncrefSymbol,
            Decref: o.DecrefSymbol,
        },
    }
}

// oracle computes the dominance oracle on first use.
func (self *Context) oracle() dom.Oracle {
    if self.Dom == nil {
        self.Dom = self.Opts.Dominators.Compute(self.Fn)
    }
    return self.Dom
}

// Pass rewrites the function in ctx and reports whether it changed anything.
type Pass interface {
    Apply(ctx *Context) bool
}

type PassDescriptor struct {
    Pass     Pass
    Name     string
    Arg      string
    Requires []dom.Kind
}

var Passes = [...]PassDescriptor {
    { Name: "normalize refops" , Arg: "nrtrefnormalizepass" , Pass: new(Normalize) },
    { Name: "prune refops"     , Arg: "nrtrefprunepass"     , Pass: new(Prune), Requires: []dom.Kind { dom.DomTree, dom.PostDomTree } },
}

// Optimize runs every pass in order. The oracle is computed right before the
// first pass that requires it if none is provided.
func Optimize(fn *ir.Func, o *opts.Options, oracle dom.Oracle) bool {
    ret := false
    ctx := NewContext(fn, o, oracle)

    /* run every pass */
    for _, p := range Passes {
        if len(p.Requires) != 0 {
            ctx.oracle()
        }
        if p.Pass.Apply(ctx) {
            ret = true
        }
    }

    /* all done */
    return ret
}
