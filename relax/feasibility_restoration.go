// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package relax

import (
	"fmt"
	"math"

	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/model"
	"github.com/gosolve/nlp/strategy"
	"github.com/gosolve/nlp/subproblem"
)

// Phase is the two-state machine feasibility restoration drives: each
// major iteration runs entirely in one phase, and transitions happen only
// inside IsAcceptable.
type Phase int

const (
	PhaseOptimality Phase = iota
	PhaseRestoration
)

func (p Phase) String() string {
	if p == PhaseRestoration {
		return "RESTORATION"
	}
	return "OPTIMALITY"
}

// filterAcceptChecker is implemented by strategy.FilterStrategy; used to
// peek at whether the optimality filter would accept a candidate without
// mutating it, per the RESTORATION->OPTIMALITY transition rule.
type filterAcceptChecker interface {
	WouldAccept(trial strategy.Progress) bool
}

// FeasibilityRestoration is the two-phase constraint-relaxation strategy
// of spec.md §4.3.a: solve the original subproblem; on infeasibility,
// switch to a restoration subproblem that minimizes l1 constraint
// violation with a zero objective multiplier. Phase transitions happen
// exclusively inside IsAcceptable.
type FeasibilityRestoration struct {
	Sub subproblem.Subproblem

	// OptimalityStrategy and RestorationStrategy are independent
	// globalization strategies, one per phase, each with its own filter
	// or merit state.
	OptimalityStrategy  strategy.Strategy
	RestorationStrategy strategy.Strategy

	// ObjectiveSign is the Problem's sigma for a non-relaxed solve (+1 to
	// minimize f, -1 if the Problem poses maximization).
	ObjectiveSign float64

	// RequireOptimalityFilterAccept gates the RESTORATION->OPTIMALITY
	// transition on the optimality strategy also accepting the candidate
	// (spec.md §9 open question (a)); defaults to true. When the active
	// OptimalityStrategy does not implement filterAcceptChecker, the
	// transition proceeds unconditionally regardless of this flag.
	RequireOptimalityFilterAccept bool

	// ResidualNorm is the norm used to reduce constraint violation into
	// the restoration objective's progress measures.
	ResidualNorm model.ResidualNorm

	phase Phase
}

// NewFeasibilityRestoration wires a subproblem and one strategy per phase,
// with the optimality-filter transition check enabled by default.
func NewFeasibilityRestoration(sub subproblem.Subproblem, optimality, restoration strategy.Strategy, objectiveSign float64) *FeasibilityRestoration {
	return &FeasibilityRestoration{
		Sub:                           sub,
		OptimalityStrategy:            optimality,
		RestorationStrategy:           restoration,
		ObjectiveSign:                 objectiveSign,
		RequireOptimalityFilterAccept: true,
		ResidualNorm:                  model.L1,
	}
}

func (fr *FeasibilityRestoration) Phase() Phase { return fr.phase }

// ComputeSecondOrderCorrection delegates to the wrapped subproblem's own
// second-order correction when it supports one, letting the line-search
// mechanism mitigate the Maratos effect without knowing which subproblem
// variant it is driving.
func (fr *FeasibilityRestoration) ComputeSecondOrderCorrection(problem model.Problem, it *iterate.Iterate, trial []float64) (*iterate.Direction, error) {
	soc, ok := fr.Sub.(subproblem.SecondOrderCorrector)
	if !ok {
		return nil, fmt.Errorf("relax: subproblem %T does not support second-order correction", fr.Sub)
	}
	return soc.ComputeSecondOrderCorrection(problem, it, trial)
}

func (fr *FeasibilityRestoration) Initialize(problem model.Problem, it *iterate.Iterate) error {
	fr.Sub.Initialize(problem, it)
	if err := it.UpdateProgress(problem, nil, fr.ResidualNorm); err != nil {
		return err
	}
	fr.phase = PhaseOptimality
	fr.OptimalityStrategy.Initialize(toStrategyProgress(it.Progress))
	fr.RestorationStrategy.Initialize(toStrategyProgress(it.Progress))
	return nil
}

// ComputeFeasibleDirection implements spec.md §4.3.a's compute_feasible_direction:
// solve the real subproblem first; if it reports INFEASIBLE, build and
// solve the restoration problem instead.
func (fr *FeasibilityRestoration) ComputeFeasibleDirection(problem model.Problem, it *iterate.Iterate, trustRegionRadius float64) (*iterate.Direction, error) {
	if err := fr.Sub.CreateCurrentSubproblem(problem, it, fr.ObjectiveSign, trustRegionRadius); err != nil {
		return nil, err
	}
	dir, err := fr.Sub.Solve(problem, it)
	it.RecordSubproblemSolved()
	if err != nil {
		return nil, err
	}
	if dir.Status != iterate.Infeasible {
		return dir, nil
	}
	return fr.solveRestoration(problem, it, dir)
}

// solveRestoration forms the feasibility problem per spec.md §4.3.a: sigma
// set to zero, linear objective built from the Jacobian rows of the
// offending constraints, each weighted by the sign of its violated side
// (+1 lower, -1 upper; the iterate's multipliers are left unchanged),
// bounds one-sided relative to the
// violated side, starting point the previously returned (infeasible)
// direction.
func (fr *FeasibilityRestoration) solveRestoration(problem model.Problem, it *iterate.Iterate, infeasibleDir *iterate.Direction) (*iterate.Direction, error) {
	setter, ok := fr.Sub.(objectiveGradientSetter)
	if !ok {
		return nil, fmt.Errorf("relax: feasibility restoration requires a subproblem supporting SetObjectiveGradient, got %T", fr.Sub)
	}

	jac, err := it.EvaluateConstraintsJacobian(problem, nil)
	if err != nil {
		return nil, err
	}

	n := problem.NumVariables()
	feasObj := make([]float64, n)
	lambda := make([]float64, problem.NumConstraints())

	partition := infeasibleDir.Partition
	if partition == nil {
		return nil, fmt.Errorf("relax: infeasible direction carries no constraint partition")
	}
	for _, j := range partition.InfeasibleIdx {
		sign := 1.0
		if partition.Side[j] == iterate.InfeasibleUpper {
			sign = -1.0
		}
		lambda[j] = sign
		for i, v := range jac[j] {
			if i < n {
				feasObj[i] += sign * v
			}
		}
	}

	restricted := &restrictedProblem{Problem: problem, partition: partition}

	// Relinearize at the warm-start point x_k + infeasibleDir.Primal without
	// permanently relocating the driver-owned current iterate: X is
	// restored before this function returns, on every path, and the
	// displacement is folded into the returned direction instead so that a
	// caller computing x_k + alpha*d still lands on the right trial point.
	origX := append([]float64(nil), it.X...)
	warmStart := append([]float64(nil), origX...)
	for i := range warmStart {
		if i < len(infeasibleDir.Primal) {
			warmStart[i] += infeasibleDir.Primal[i]
		}
	}
	it.SetX(warmStart)
	defer it.SetX(origX)

	if err := fr.Sub.CreateCurrentSubproblem(restricted, it, 0, math.Inf(1)); err != nil {
		return nil, err
	}
	setter.SetObjectiveGradient(feasObj)

	dir, err := fr.Sub.Solve(restricted, it)
	it.RecordSubproblemSolved()
	if err != nil {
		return nil, err
	}
	dir.IsRelaxed = true
	dir.ObjectiveMultiplier = 0

	// dir.Primal is relative to warmStart; compose it with the displacement
	// from x_k so the caller's x_k + alpha*dir.Primal reaches
	// warmStart + alpha*dir.Primal at alpha=1.
	for i := range dir.Primal {
		if i < len(infeasibleDir.Primal) {
			dir.Primal[i] += infeasibleDir.Primal[i]
		}
	}
	return dir, nil
}

// IsAcceptable implements the OPTIMALITY<->RESTORATION transitions of
// spec.md §4.3.a and delegates the actual accept/reject decision to
// whichever strategy is active for the current phase.
func (fr *FeasibilityRestoration) IsAcceptable(problem model.Problem, current, trial *iterate.Iterate, direction *iterate.Direction, alpha float64) (bool, error) {
	if err := trial.UpdateProgress(problem, nil, fr.ResidualNorm); err != nil {
		return false, err
	}

	currentProgress := toStrategyProgress(current.Progress)
	trialProgress := toStrategyProgress(trial.Progress)

	pr := fr.Sub.GeneratePredictedReduction(problem, direction)
	predicted := pr.Optimality(fr.ObjectiveSign, alpha) + pr.Infeasibility(alpha)

	if fr.phase == PhaseOptimality {
		if direction.IsRelaxed {
			fr.OptimalityStrategy.Notify(currentProgress)
			fr.RestorationStrategy.Reset()
			fr.phase = PhaseRestoration
			accepted := fr.RestorationStrategy.CheckAcceptance(currentProgress, trialProgress, predicted, 0)
			return accepted, nil
		}
		return fr.OptimalityStrategy.CheckAcceptance(currentProgress, trialProgress, predicted, fr.ObjectiveSign), nil
	}

	// PhaseRestoration.
	if !direction.IsRelaxed && fr.optimalityWouldAccept(trialProgress) {
		fr.RestorationStrategy.Notify(currentProgress)
		fr.OptimalityStrategy.Reset()
		fr.phase = PhaseOptimality
		return fr.OptimalityStrategy.CheckAcceptance(currentProgress, trialProgress, predicted, fr.ObjectiveSign), nil
	}
	return fr.RestorationStrategy.CheckAcceptance(currentProgress, trialProgress, predicted, 0), nil
}

// optimalityWouldAccept implements the RESTORATION->OPTIMALITY gate: if
// RequireOptimalityFilterAccept is set and the optimality strategy exposes
// a non-mutating peek, require it to accept the candidate; otherwise
// transition unconditionally on a non-relaxed direction.
func (fr *FeasibilityRestoration) optimalityWouldAccept(trial strategy.Progress) bool {
	if !fr.RequireOptimalityFilterAccept {
		return true
	}
	checker, ok := fr.OptimalityStrategy.(filterAcceptChecker)
	if !ok {
		return true
	}
	return checker.WouldAccept(trial)
}

func toStrategyProgress(p iterate.Progress) strategy.Progress {
	return strategy.Progress{Infeasibility: p.Infeasibility, Objective: p.Objective}
}

// restrictedProblem overrides ConstraintBounds to rewrite each infeasible
// constraint to a one-sided bound relative to its violated side, per
// spec.md §4.3.a; feasible constraints and all other Problem behavior
// (including ObjectiveSign, which the caller ignores by passing sigma=0
// directly to CreateCurrentSubproblem) pass through unchanged.
type restrictedProblem struct {
	model.Problem
	partition *iterate.ConstraintPartition
}

func (rp *restrictedProblem) ConstraintBounds(j int) model.Bound {
	b := rp.Problem.ConstraintBounds(j)
	if j >= len(rp.partition.Side) {
		return b
	}
	switch rp.partition.Side[j] {
	case iterate.InfeasibleLower:
		return model.Bound{Lower: math.Inf(-1), Upper: b.Lower}
	case iterate.InfeasibleUpper:
		return model.Bound{Lower: b.Upper, Upper: math.Inf(1)}
	default:
		return b
	}
}
