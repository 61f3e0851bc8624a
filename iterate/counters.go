// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterate

// Counters is the process-wide, increment-only evaluation statistics of
// spec.md §3: every Iterate produced across one solve (accepted or
// discarded trial alike) shares the same Counters instance, so a rejected
// line-search trial's evaluations still count.
type Counters struct {
	Objective           int
	Constraints         int
	ObjectiveGradient   int
	ConstraintsJacobian int
	LagrangianHessian   int
	SubproblemsSolved   int
}

// SetCounters installs the shared Counters instance this Iterate's
// Evaluate* methods increment. Every trial Iterate derived from another
// within one solve should share the same instance (see
// mechanism.trialIterate).
func (it *Iterate) SetCounters(c *Counters) { it.counters = c }

// Counters returns the shared Counters instance installed by SetCounters,
// or nil if none has been installed.
func (it *Iterate) Counters() *Counters { return it.counters }

// RecordSubproblemSolved increments the shared subproblem-solve counter;
// called by a constraint-relaxation strategy once per external
// LP/QP/interior-point solver invocation.
func (it *Iterate) RecordSubproblemSolved() {
	if it.counters != nil {
		it.counters.SubproblemsSolved++
	}
}
