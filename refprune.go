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

// Package refprune removes redundant reference count updates from functions.
package refprune

import (
	"go.uber.org/zap"

	"github.com/cloudwego/refprune/dom"
	"github.com/cloudwego/refprune/internal/log"
	"github.com/cloudwego/refprune/internal/refops"
	"github.com/cloudwego/refprune/ir"
)

// PassInfo describes a registered pass.
type PassInfo struct {
	Name     string
	Arg      string
	Requires []dom.Kind
}

// Passes returns the passes run by Optimize, in order.
func Passes() []PassInfo {
	ret := make([]PassInfo, 0, len(refops.Passes))
	for _, p := range refops.Passes {
		ret = append(ret, PassInfo{
			Name:     p.Name,
			Arg:      p.Arg,
			Requires: append([]dom.Kind(nil), p.Requires...),
		})
	}
	return ret
}

// Normalize moves the decrefs in each block of fn after the last incref of
// that block, and reports whether fn was changed.
func Normalize(fn *ir.Func, o ...Option) bool {
	return refops.Normalize{}.Apply(refops.NewContext(fn, options(o), nil))
}

// Prune removes redundant refops from fn, and reports whether fn was changed.
// If oracle is nil, it is computed from fn.
func Prune(fn *ir.Func, oracle dom.Oracle, o ...Option) bool {
	return refops.Prune{}.Apply(refops.NewContext(fn, options(o), oracle))
}

// Optimize runs Normalize then Prune on fn, and reports whether fn was changed.
func Optimize(fn *ir.Func, o ...Option) bool {
	return refops.Optimize(fn, options(o), nil)
}

// SetLogger sets the logger used by every pass. A nil logger disables logging.
//
// SetLogger is not synchronized with running passes: call it during program
// initialization, before any Normalize, Prune or Optimize call, and never
// while one of them may be running on another goroutine.
func SetLogger(l *zap.Logger) {
	log.SetLogger(l)
}
