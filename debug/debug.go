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
	"sync/atomic"

	"github.com/cloudwego/refprune/internal/refops"
)

// A Stats records statistics about the refop passes since the program started.
type Stats struct {
	Normalize NormalizeStats
	Prune     PruneStats
	Fanout    FanoutStats
}

// A NormalizeStats records statistics about decref relocation.
type NormalizeStats struct {
	DecrefsMoved int
}

// A PruneStats records statistics about null drops and pair matching.
type PruneStats struct {
	NullDropped   int
	PairsPruned   int
	PairsRejected int
}

// A FanoutStats records statistics about fan-out elimination.
type FanoutStats struct {
	Increfs int
	Decrefs int
}

// GetStats returns statistics of the refop passes.
func GetStats() Stats {
	return Stats{
		Normalize: NormalizeStats{
			DecrefsMoved: int(atomic.LoadInt64(&refops.DecrefsMoved)),
		},
		Prune: PruneStats{
			NullDropped:   int(atomic.LoadInt64(&refops.NullDropped)),
			PairsPruned:   int(atomic.LoadInt64(&refops.PairsPruned)),
			PairsRejected: int(atomic.LoadInt64(&refops.PairsRejected)),
		},
		Fanout: FanoutStats{
			Increfs: int(atomic.LoadInt64(&refops.FanoutIncrefs)),
			Decrefs: int(atomic.LoadInt64(&refops.FanoutDecrefs)),
		},
	}
}
