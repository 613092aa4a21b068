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
    `github.com/cloudwego/refprune/internal/log`
    `go.uber.org/zap`
)

// Prune removes refops that have no observable effect on reference counts:
//
//   - refops on null are dropped;
//   - an incref and a decref on the same value are removed together when the
//     incref dominates the decref, the decref post-dominates the incref and
//     nothing can decrement a count in between;
//   - an incref followed by a related decref on every path leaving its block
//     is removed together with one such decref per path (fan-out).
//
// Erasure always happens after the scan that decided it.
type Prune struct{}

func dominates(oracle dom.Oracle, a *RefOp, b *RefOp) bool {
    if a.Bb == b.Bb {
        return a.Pos < b.Pos
    } else {
        return oracle.Dominates(a.Bb, b.Bb)
    }
}

func postDominates(oracle dom.Oracle, a *RefOp, b *RefOp) bool {
    if a.Bb == b.Bb {
        return a.Pos > b.Pos
    } else {
        return oracle.PostDominates(a.Bb, b.Bb)
    }
}

func (self Prune) dropNull(ctx *Context, rs *_RefSet) int {
    for _, op := range rs.null {
        log.Logger().Debug("dropping refop on null",
            zap.String("func", ctx.Fn.Name),
            zap.Stringer("refop", op),
        )
    }
    return erase(rs.null)
}

func (self Prune) reject(ctx *Context, inc *RefOp, dec *RefOp, reason string) {
    count(&PairsRejected, 1)
    log.Logger().Debug("refop pair rejected",
        zap.String("func", ctx.Fn.Name),
        zap.Stringer("incref", inc),
        zap.Stringer("decref", dec),
        zap.String("reason", reason),
    )
}

// safe checks a pair that spans two blocks.
func (self Prune) safe(ctx *Context, idx _DecrefIndex, inc *RefOp, dec *RefOp) bool {
    if hasDecrefBetween(idx, inc.Bb, dec.Bb) {
        self.reject(ctx, inc, dec, "decref in between")
        return false
    } else if !balanced(inc.Bb, dec.Bb) {
        self.reject(ctx, inc, dec, "unbalanced cycle")
        return false
    } else {
        return true
    }
}

func (self Prune) match(ctx *Context, idx _DecrefIndex, inc *RefOp, decs []*RefOp) *RefOp {
    oracle := ctx.oracle()

    /* first fit in visiting order */
    for _, dec := range decs {
        if dec.dead || !inc.Related(dec) {
            continue
        }

        /* the decref must balance the incref on every path */
        if !dominates(oracle, inc, dec) || !postDominates(oracle, dec, inc) {
            continue
        }

        /* cross-block pairs need further checks */
        if dec.Bb == inc.Bb || self.safe(ctx, idx, inc, dec) {
            return dec
        }
    }

    /* no match */
    return nil
}

func (self Prune) pairs(ctx *Context, rs *_RefSet, idx _DecrefIndex) int {
    var np  int
    var rem []*RefOp

    /* scan every incref */
    for _, inc := range rs.incs {
        if dec := self.match(ctx, idx, inc, rs.decs); dec != nil {
            np++
            inc.dead = true
            dec.dead = true
            rem = append(rem, inc, dec)
            log.Logger().Debug("pruned refop pair",
                zap.String("func", ctx.Fn.Name),
                zap.Stringer("incref", inc),
                zap.Stringer("decref", dec),
            )
        }
    }

    /* erase all at once */
    erase(rem)
    count(&PairsPruned, np)
    return np
}

func (self Prune) fanout(ctx *Context, rs *_RefSet, idx _DecrefIndex) int {
    var nd  int
    var ni  int
    var rem []*RefOp

    /* scan every incref that is still around */
    for _, inc := range rs.incs {
        if inc.dead {
            continue
        }

        /* all the paths must resolve */
        bbs, ok := fanout(idx, inc, ctx.Opts, ctx.oracle())
        if !ok {
            continue
        }

        /* remove the incref and one decref per found block */
        ni++
        inc.dead = true
        rem = append(rem, inc)

        /* pick the decrefs */
        for _, bb := range bbs {
            dec := idx.related(bb, inc)
            dec.dead = true
            rem = append(rem, dec)
            nd++
        }

        /* log the removal */
        log.Logger().Debug("pruned fan-out incref",
            zap.String("func", ctx.Fn.Name),
            zap.Stringer("incref", inc),
            zap.Int("decrefs", len(bbs)),
        )
    }

    /* erase all at once */
    erase(rem)
    count(&FanoutIncrefs, ni)
    count(&FanoutDecrefs, nd)
    return ni
}

func (self Prune) Apply(ctx *Context) bool {
    rs := collect(ctx.Rec, ctx.Fn)
    idx := newDecrefIndex(rs.decs)

    /* Phase 1: Drop refops on null */
    nb := self.dropNull(ctx, &rs)
    count(&NullDropped, nb)

    /* Phase 2: Match incref / decref pairs */
    np := self.pairs(ctx, &rs, idx)

    /* Phase 3: Fan-out elimination */
    if ctx.Opts.EnableFanout {
        np += self.fanout(ctx, &rs, idx)
    }

    /* check for modifications */
    return nb != 0 || np != 0
}
