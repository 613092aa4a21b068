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
    `strconv`
    `strings`
)

type _Parser struct {
    ln  int
    src string
    pb  *Builder
}

// Parse reads a single function in the form printed by Func.String.
func Parse(src string) (*Func, error) {
    var err error
    var fn  *Func
    var ps  *_Parser

    /* parse line by line */
    lines := strings.Split(src, "\n")
    for i, raw := range lines {
        s := stripComment(raw)
        ln := i + 1

        /* skip empty lines */
        if s == "" {
            continue
        }

        /* nothing is allowed after the closing brace */
        if fn != nil {
            return nil, eunexpected(ln, raw, "text after the function body")
        }

        /* header, closing brace, or a body line */
        if ps == nil {
            ps, err = parseHeader(ln, raw, s)
        } else if s == "}" {
            if fn, err = ps.pb.Build(); err != nil {
                err = esyntax(ln, raw, err.Error())
            }
        } else {
            ps.ln, ps.src = ln, raw
            err = ps.line(s)

            /* errors reported by the builder */
            if err == nil && ps.pb.err != nil {
                err = esyntax(ln, raw, ps.pb.err.Error())
            }
        }

        /* check for errors */
        if err != nil {
            return nil, err
        }
    }

    /* must have a complete function */
    if fn == nil {
        return nil, esyntax(len(lines), "", "unexpected end of input")
    } else {
        return fn, nil
    }
}

// MustParse is like Parse but panics on errors.
func MustParse(src string) *Func {
    if fn, err := Parse(src); err != nil {
        panic(err)
    } else {
        return fn
    }
}

func stripComment(s string) string {
    if i := strings.IndexByte(s, ';'); i >= 0 {
        s = s[:i]
    }
    return strings.TrimSpace(s)
}

func isIdent(s string) bool {
    if s == "" {
        return false
    }

    /* letters, digits, '_' and '.' */
    for _, c := range s {
        if !(c == '_' || c == '.' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
            return false
        }
    }

    /* all done */
    return true
}

func splitList(s string) []string {
    if s = strings.TrimSpace(s); s == "" {
        return nil
    }

    /* split by commas */
    ret := strings.Split(s, ",")
    for i, v := range ret {
        ret[i] = strings.TrimSpace(v)
    }

    /* all done */
    return ret
}

func parseHeader(ln int, raw string, s string) (*_Parser, error) {
    var args []string
    var name string

    /* func @name(%a, %b) { */
    if !strings.HasPrefix(s, "func @") || !strings.HasSuffix(s, "{") {
        return nil, esyntax(ln, raw, "function header expected")
    }

    /* locate the argument list */
    s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "func @"), "{"))
    lp, rp := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')

    /* must be well-formed */
    if lp <= 0 || rp != len(s) - 1 {
        return nil, esyntax(ln, raw, "malformed function header")
    }

    /* extract the function name */
    if name = s[:lp]; !isIdent(name) {
        return nil, esyntax(ln, raw, "invalid function name: " + name)
    }

    /* parse every argument */
    for _, v := range splitList(s[lp + 1:rp]) {
        if !strings.HasPrefix(v, "%") || !isIdent(v[1:]) {
            return nil, esyntax(ln, raw, "invalid argument: " + v)
        } else {
            args = append(args, v[1:])
        }
    }

    /* create the builder */
    return &_Parser {
        ln  : ln,
        src : raw,
        pb  : CreateBuilder(name, args...),
    }, nil
}

func (self *_Parser) error(reason string) error {
    return esyntax(self.ln, self.src, reason)
}

func (self *_Parser) value(s string) (Value, error) {
    if s == "null" {
        return self.pb.Null(), nil
    } else if strings.HasPrefix(s, "%") && isIdent(s[1:]) {
        return self.pb.Var(s[1:]), nil
    } else if v, err := strconv.ParseInt(s, 0, 64); err == nil {
        return self.pb.Int(v), nil
    } else {
        return nil, self.error("invalid value: " + s)
    }
}

func (self *_Parser) values(s string) ([]Value, error) {
    var err error
    var ret []Value

    /* parse each value */
    for _, v := range splitList(s) {
        var vv Value
        if vv, err = self.value(v); err != nil {
            return nil, err
        }
        ret = append(ret, vv)
    }

    /* all done */
    return ret, nil
}

func (self *_Parser) label(s string) (string, error) {
    if !isIdent(s) {
        return "", self.error("invalid label: " + s)
    } else {
        return s, nil
    }
}

func (self *_Parser) line(s string) error {
    var rv *Var
    var op string
    var rest string

    /* block labels */
    if strings.HasSuffix(s, ":") {
        if name := strings.TrimSuffix(s, ":"); !isIdent(name) {
            return self.error("invalid label: " + name)
        } else {
            self.pb.Label(name)
            return nil
        }
    }

    /* result value */
    if strings.HasPrefix(s, "%") {
        if i := strings.IndexByte(s, '='); i < 0 {
            return eunexpected(self.ln, self.src, "value without assignment")
        } else if r := strings.TrimSpace(s[1:i]); !isIdent(r) {
            return self.error("invalid result value: %" + r)
        } else {
            rv, s = self.pb.Var(r), strings.TrimSpace(s[i + 1:])
        }
    }

    /* split the opcode */
    if i := strings.IndexAny(s, " \t"); i < 0 {
        op = s
    } else {
        op, rest = s[:i], strings.TrimSpace(s[i + 1:])
    }

    /* terminators never produce values */
    switch op {
        case "goto", "br", "switch", "ret": {
            if rv != nil {
                return self.error(op + " does not produce a value")
            }
        }
    }

    /* dispatch by opcode */
    switch op {
        case "goto"   : return self.jump(rest)
        case "br"     : return self.branch(rest)
        case "switch" : return self.switch_(rest)
        case "ret"    : return self.ret(rest)
        case "call"   : return self.call(rv, rest)
        default       : return self.op(rv, op, rest)
    }
}

func (self *_Parser) jump(s string) error {
    if to, err := self.label(s); err != nil {
        return err
    } else {
        self.pb.JMP(to)
        return nil
    }
}

func (self *_Parser) branch(s string) error {
    var err error
    var cv  Value
    var tl  string
    var fl  string

    /* br %v, then, else */
    args := splitList(s)
    if len(args) != 3 {
        return self.error("br expects a value and two labels")
    }

    /* parse the condition and the targets */
    if cv, err = self.value(args[0]); err != nil { return err }
    if tl, err = self.label(args[1]); err != nil { return err }
    if fl, err = self.label(args[2]); err != nil { return err }

    /* terminate the block */
    self.pb.BR(cv, tl, fl)
    return nil
}

func (self *_Parser) switch_(s string) error {
    var err error
    var cv  Value
    var ln  string

    /* switch %v, default [k => label, ...] */
    lb, rb := strings.IndexByte(s, '['), strings.LastIndexByte(s, ']')
    if lb < 0 || rb != len(s) - 1 {
        return self.error("switch expects a case list")
    }

    /* the condition and the default target */
    head := splitList(s[:lb])
    if len(head) != 2 {
        return self.error("switch expects a value and a default label")
    }

    /* parse the condition and the default target */
    if cv, err = self.value(head[0]); err != nil { return err }
    if ln, err = self.label(head[1]); err != nil { return err }

    /* parse every case */
    br := make(map[int64]string)
    for _, c := range splitList(s[lb + 1:rb]) {
        var k int64
        var to string
        kv := strings.Split(c, "=>")

        /* k => label */
        if len(kv) != 2 {
            return self.error("invalid switch case: " + c)
        }

        /* parse the case value */
        if k, err = strconv.ParseInt(strings.TrimSpace(kv[0]), 0, 64); err != nil {
            return self.error("invalid switch case: " + c)
        }

        /* check for duplications */
        if _, ok := br[k]; ok {
            return self.error("duplicated switch case: " + c)
        }

        /* parse the target */
        if to, err = self.label(strings.TrimSpace(kv[1])); err != nil {
            return err
        }

        /* add the case */
        br[k] = to
    }

    /* terminate the block */
    self.pb.SWITCH(cv, ln, br)
    return nil
}

func (self *_Parser) ret(s string) error {
    if vals, err := self.values(s); err != nil {
        return err
    } else {
        self.pb.RET(vals...)
        return nil
    }
}

func (self *_Parser) call(rv *Var, s string) error {
    var fn   string
    var args []Value

    /* call @fn(args) */
    lp, rp := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
    if !strings.HasPrefix(s, "@") || lp < 0 || rp != len(s) - 1 {
        return self.error("malformed call: " + s)
    }

    /* parse the callee */
    if fn = s[1:lp]; !isIdent(fn) {
        return self.error("invalid callee: " + fn)
    }

    /* parse the arguments */
    args, err := self.values(s[lp + 1:rp])
    if err != nil {
        return err
    }

    /* add the call */
    self.pb.Emit(&IrCall{R: rv, Fn: fn, Args: args})
    return nil
}

func (self *_Parser) op(rv *Var, op string, s string) error {
    if !isIdent(op) {
        return self.error("invalid opcode: " + op)
    } else if args, err := self.values(s); err != nil {
        return err
    } else {
        self.pb.Emit(&IrOp{R: rv, Op: op, Args: args})
        return nil
    }
}
