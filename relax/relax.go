// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package relax implements the two constraint-relaxation strategies that
// turn a possibly-infeasible subproblem into a sequence of well-posed
// subproblems: feasibility restoration (two-phase) and l1 relaxation
// (elastic variables with a Byrd steering rule).
package relax

import (
	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/model"
)

// ConstraintRelaxation is the capability set the globalization mechanism
// drives each major iteration: ask for a direction, then repeatedly offer
// trial iterates for acceptance until one is accepted or the mechanism
// gives up.
type ConstraintRelaxation interface {
	Initialize(problem model.Problem, it *iterate.Iterate) error

	// ComputeFeasibleDirection solves the current subproblem (possibly
	// switching to a feasibility model internally) and returns a Direction.
	ComputeFeasibleDirection(problem model.Problem, it *iterate.Iterate, trustRegionRadius float64) (*iterate.Direction, error)

	// IsAcceptable decides whether trial is acceptable relative to
	// current given the direction that produced it and the step length
	// alpha, performing any phase/penalty-parameter transitions this
	// variant owns as a side effect.
	IsAcceptable(problem model.Problem, current, trial *iterate.Iterate, direction *iterate.Direction, alpha float64) (bool, error)
}

// objectiveGradientSetter is implemented by subproblem variants that
// support overriding the linear term directly (subproblem.QP,
// subproblem.LP), needed to install the feasibility problem's
// l1-violation linear objective.
type objectiveGradientSetter interface {
	SetObjectiveGradient(g []float64)
}
