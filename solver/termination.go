// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import "github.com/gosolve/nlp/iterate"

// TerminationStatus is the outcome the driver reports for a solve, per
// spec.md §4.6's classifier.
type TerminationStatus int

const (
	NotOptimal TerminationStatus = iota
	FeasibleKKTPoint
	FritzJohnPoint
	InfeasibleKKTPoint
	FeasibleSmallStep
	InfeasibleSmallStep
)

func (s TerminationStatus) String() string {
	switch s {
	case FeasibleKKTPoint:
		return "FEASIBLE_KKT_POINT"
	case FritzJohnPoint:
		return "FRITZ_JOHN_POINT"
	case InfeasibleKKTPoint:
		return "INFEASIBLE_KKT_POINT"
	case FeasibleSmallStep:
		return "FEASIBLE_SMALL_STEP"
	case InfeasibleSmallStep:
		return "INFEASIBLE_SMALL_STEP"
	default:
		return "NOT_OPTIMAL"
	}
}

// Successful reports whether status maps to exit code 0 per spec.md §6's
// CLI contract.
func (s TerminationStatus) Successful() bool {
	return s == FeasibleKKTPoint || s == FeasibleSmallStep
}

// Tolerances bundles the scalar thresholds the classifier compares
// residuals against.
type Tolerances struct {
	Epsilon         float64
	SmallStepFactor float64
}

// hasNontrivialDuals reports whether any multiplier on it is nonzero, the
// "no trivial duals" half of the Fritz-John test: a KKT system satisfied
// only by the all-zero multiplier witnesses a failed constraint
// qualification, not a genuine stationary point.
func hasNontrivialDuals(it *iterate.Iterate) bool {
	for _, l := range it.Lambda {
		if l != 0 {
			return true
		}
	}
	for _, z := range it.ZLower {
		if z != 0 {
			return true
		}
	}
	for _, z := range it.ZUpper {
		if z != 0 {
			return true
		}
	}
	return false
}

// Classify implements spec.md §4.6's termination classifier on the
// iterate's residuals and multipliers, the last accepted step norm, and
// the problem's objective sign.
func Classify(it *iterate.Iterate, stepNorm float64, objectiveSign float64, tol Tolerances) TerminationStatus {
	r := it.Residuals
	eps := tol.Epsilon
	smallStep := eps / tol.SmallStepFactor

	switch {
	case r.StationarityOpt <= eps && r.ComplementarityOpt <= eps && r.Infeasibility <= eps && objectiveSign > 0:
		return FeasibleKKTPoint
	case r.StationarityFeas <= eps && r.ComplementarityFeas <= eps && r.Infeasibility <= eps && hasNontrivialDuals(it):
		return FritzJohnPoint
	case r.StationarityFeas <= eps && r.ComplementarityFeas <= eps && r.Infeasibility > eps:
		return InfeasibleKKTPoint
	case stepNorm <= smallStep && r.Infeasibility <= eps:
		return FeasibleSmallStep
	case stepNorm <= smallStep && r.Infeasibility > eps:
		return InfeasibleSmallStep
	default:
		return NotOptimal
	}
}
