// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package strategy implements the globalization strategies that decide
// whether a trial iterate is acceptable: the Pareto filter and the
// l1-penalty merit function.
package strategy

import "github.com/gosolve/nlp/iterate"

// Progress is the (infeasibility, objective) pair a Strategy compares
// between the current and trial iterate; Objective holds f in both
// restoration and optimality mode, per iterate.Progress.
type Progress = iterate.Progress

// Strategy is the capability set shared by Filter and L1Penalty.
type Strategy interface {
	// Initialize resets the strategy's state at the start of a phase,
	// recording the starting iterate's progress as the initial reference.
	Initialize(current Progress)

	// Reset clears all accumulated acceptance history (filter contents and
	// h_max, or nothing for the stateless l1-penalty merit).
	Reset()

	// Notify records current into any history the strategy keeps, without
	// performing a dominance or acceptance check.
	Notify(current Progress)

	// CheckAcceptance decides whether trial is acceptable given current,
	// the predicted reduction at the trial step, and the objective
	// multiplier sigma that produced the step. predictedReduction is the
	// subproblem's model-predicted decrease at this step.
	CheckAcceptance(current, trial Progress, predictedReduction, sigma float64) bool
}
