// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package iterate holds the primal-dual iterate state machine: lazily
// evaluated, memoized caches of f, c, gradients and the Lagrangian Hessian,
// the derived residual and progress measures, and the Direction result
// type produced by a subproblem solve.
package iterate

// SolverStatus is the outcome reported by an external LP/QP/interior-point
// solver for one subproblem solve.
type SolverStatus int

const (
	Optimal SolverStatus = iota
	UnboundedProblem
	BoundInconsistency
	Infeasible
	IncorrectParameter
	LPInsufficientSpace
	HessianInsufficientSpace
	SparseInsufficientSpace
	MaxRestartsReached
	Undefined
)

func (s SolverStatus) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case UnboundedProblem:
		return "UNBOUNDED_PROBLEM"
	case BoundInconsistency:
		return "BOUND_INCONSISTENCY"
	case Infeasible:
		return "INFEASIBLE"
	case IncorrectParameter:
		return "INCORRECT_PARAMETER"
	case LPInsufficientSpace:
		return "LP_INSUFFICIENT_SPACE"
	case HessianInsufficientSpace:
		return "HESSIAN_INSUFFICIENT_SPACE"
	case SparseInsufficientSpace:
		return "SPARSE_INSUFFICIENT_SPACE"
	case MaxRestartsReached:
		return "MAX_RESTARTS_REACHED"
	default:
		return "UNDEFINED"
	}
}

// ConstraintSide classifies which bound a constraint violates in an
// infeasible subproblem solve.
type ConstraintSide int

const (
	Feasible ConstraintSide = iota
	InfeasibleLower
	InfeasibleUpper
)

// ConstraintPartition partitions the constraint set by violation side,
// produced when a subproblem solve returns Infeasible.
type ConstraintPartition struct {
	FeasibleIdx   []int
	InfeasibleIdx []int
	Side          []ConstraintSide // indexed by constraint j
}

// NewConstraintPartition builds a partition from a per-constraint
// violation measure: negative means InfeasibleLower, positive means
// InfeasibleUpper, zero means Feasible.
func NewConstraintPartition(violation []float64) *ConstraintPartition {
	p := &ConstraintPartition{Side: make([]ConstraintSide, len(violation))}
	for j, v := range violation {
		switch {
		case v < 0:
			p.Side[j] = InfeasibleLower
			p.InfeasibleIdx = append(p.InfeasibleIdx, j)
		case v > 0:
			p.Side[j] = InfeasibleUpper
			p.InfeasibleIdx = append(p.InfeasibleIdx, j)
		default:
			p.Side[j] = Feasible
			p.FeasibleIdx = append(p.FeasibleIdx, j)
		}
	}
	return p
}

// Direction is the by-value result of a subproblem solve: a primal step,
// dual step, active-set tags, and (if infeasible) a ConstraintPartition.
type Direction struct {
	Primal []float64 // length n, possibly extended by elastic variables
	Dual   []float64 // raw solver multiplier output, diagnostic only

	// Lambda, ZLower and ZUpper are the reconstructed constraint and
	// bound multipliers of the subproblem just solved, indexed the same
	// way as Iterate.Lambda/ZLower/ZUpper; nil when the subproblem
	// variant does not support dual reconstruction (e.g. a non-optimal
	// solve). A mechanism installs these onto the accepted trial Iterate
	// once IsAcceptable returns true.
	Lambda []float64
	ZLower map[int]float64
	ZUpper map[int]float64

	AtLowerBound map[int]bool // variable index -> at lower bound
	AtUpperBound map[int]bool // variable index -> at upper bound

	Partition *ConstraintPartition // nil unless the solve was infeasible

	Status SolverStatus
	Norm   float64 // ||d||

	PredictedObjective  float64
	ObjectiveMultiplier float64 // sigma that produced this direction
	IsRelaxed           bool
}

// NormInf computes the l-infinity norm of the primal step, used by
// mechanisms to decide whether a trust-region step is "on the boundary."
func (d *Direction) NormInf() float64 {
	m := 0.0
	for _, v := range d.Primal {
		if a := v; a < 0 {
			m = max(m, -a)
		} else {
			m = max(m, a)
		}
	}
	return m
}
