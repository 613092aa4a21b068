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
    `sync/atomic`
    `testing`

    `github.com/stretchr/testify/require`
)

func TestNormalize_Reorder(t *testing.T) {
    fn, ok := runPass(t, Normalize{}, testOptions(), `func @f(%p, %q, %r) {
entry:
    call @NRT_decref(%p)
    call @NRT_incref(%q)
    call @NRT_decref(%r)
    ret
}`)
    require.True(t, ok)
    requireFunc(t, `
func @f(%p, %q, %r) {
entry:
    call @NRT_incref(%q)
    call @NRT_decref(%p)
    call @NRT_decref(%r)
    ret
}`, fn)
}

func TestNormalize_KeepOtherInstructions(t *testing.T) {
    fn, ok := runPass(t, Normalize{}, testOptions(), `func @f(%p, %q) {
entry:
    %a = load %p
    call @NRT_decref(%p)
    call @use(%a)
    call @NRT_decref(%q)
    call @NRT_incref(%a)
    call @NRT_incref(%q)
    store %a, %q
    ret
}`)
    require.True(t, ok)
    requireFunc(t, `
func @f(%p, %q) {
entry:
    %a = load %p
    call @use(%a)
    call @NRT_incref(%a)
    call @NRT_incref(%q)
    store %a, %q
    call @NRT_decref(%p)
    call @NRT_decref(%q)
    ret
}`, fn)
}

func TestNormalize_Unchanged(t *testing.T) {
    tests := map[string]string {
        "no refops": `func @f(%p) {
entry:
    call @use(%p)
    ret
}`,
        "increfs only": `func @f(%p) {
entry:
    call @NRT_incref(%p)
    call @NRT_incref(%p)
    ret
}`,
        "decrefs only": `func @f(%p) {
entry:
    call @NRT_decref(%p)
    call @use(%p)
    call @NRT_decref(%p)
    ret
}`,
        "already ordered": `func @f(%p) {
entry:
    call @NRT_incref(%p)
    call @use(%p)
    call @NRT_decref(%p)
    ret
}`,
    }
    for name, src := range tests {
        t.Run(name, func(t *testing.T) {
            fn, ok := runPass(t, Normalize{}, testOptions(), src)
            require.False(t, ok)
            requireFunc(t, src, fn)
        })
    }
}

func TestNormalize_PerBlock(t *testing.T) {
    before := atomic.LoadInt64(&DecrefsMoved)
    fn, ok := runPass(t, Normalize{}, testOptions(), `func @f(%p, %c) {
entry:
    call @NRT_decref(%p)
    br %c, a, b
a:
    call @NRT_decref(%p)
    call @NRT_incref(%p)
    goto b
b:
    call @NRT_incref(%p)
    ret
}`)
    require.True(t, ok)
    require.Equal(t, int64(1), atomic.LoadInt64(&DecrefsMoved) - before)
    requireFunc(t, `
func @f(%p, %c) {
entry:
    call @NRT_decref(%p)
    br %c, a, b
a:
    call @NRT_incref(%p)
    call @NRT_decref(%p)
    goto b
b:
    call @NRT_incref(%p)
    ret
}`, fn)
}
