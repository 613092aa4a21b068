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
)

var (
    DecrefsMoved  int64
    NullDropped   int64
    PairsPruned   int64
    PairsRejected int64
    FanoutIncrefs int64
    FanoutDecrefs int64
)

func count(p *int64, n int) {
    if n != 0 {
        atomic.AddInt64(p, int64(n))
    }
}
