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

package debug

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/refprune"
	"github.com/cloudwego/refprune/ir"
)

func TestGetStats(t *testing.T) {
	s0 := GetStats()
	refprune.Optimize(ir.MustParse(`func @f(%p, %q, %c) {
entry:
    call @NRT_decref(%q)
    call @NRT_incref(%p)
    call @NRT_incref(null)
    call @NRT_incref(%q)
    br %c, left, right
left:
    call @NRT_decref(%p)
    goto exit
right:
    call @NRT_decref(%p)
    goto exit
exit:
    call @NRT_decref(%q)
    ret
}`))
	s1 := GetStats()
	require.Equal(t, 1, s1.Normalize.DecrefsMoved-s0.Normalize.DecrefsMoved)
	require.Equal(t, 1, s1.Prune.NullDropped-s0.Prune.NullDropped)
	require.Equal(t, 1, s1.Prune.PairsPruned-s0.Prune.PairsPruned)
	require.Equal(t, 1, s1.Fanout.Increfs-s0.Fanout.Increfs)
	require.Equal(t, 2, s1.Fanout.Decrefs-s0.Fanout.Decrefs)
}
