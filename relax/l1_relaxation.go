// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package relax

import (
	"math"

	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/model"
	"github.com/gosolve/nlp/strategy"
	"github.com/gosolve/nlp/subproblem"
)

const (
	defaultKappaDecrease = 0.5
	muFloor              = 1e-10
	maxSteeringSweeps    = 30
)

// L1Relaxation is the elastic-variable constraint-relaxation strategy of
// spec.md §4.3.b: two nonnegative elastics per constraint turn min sigma*f
// + mu*||violation||_1 into an active-set QP, with mu adapted every major
// iteration by a Byrd steering rule.
type L1Relaxation struct {
	Sub *subproblem.QP

	Strategy strategy.Strategy

	ObjectiveSign float64
	Mu            float64
	Epsilon1      float64
	Epsilon2      float64
	KappaDecrease float64
	ResidualNorm  model.ResidualNorm

	// MuHistory records mu after every ComputeFeasibleDirection call, for
	// the "mu is non-increasing" testable property.
	MuHistory []float64
}

// NewL1Relaxation wires a QP subproblem (the only variant that supports
// ElasticCount) and a single globalization strategy, with the spec's
// default steering-rule decrease factor.
func NewL1Relaxation(sub *subproblem.QP, strat strategy.Strategy, objectiveSign, mu0, epsilon1, epsilon2 float64) *L1Relaxation {
	return &L1Relaxation{
		Sub:           sub,
		Strategy:      strat,
		ObjectiveSign: objectiveSign,
		Mu:            mu0,
		Epsilon1:      epsilon1,
		Epsilon2:      epsilon2,
		KappaDecrease: defaultKappaDecrease,
		ResidualNorm:  model.L1,
	}
}

func (lr *L1Relaxation) Initialize(problem model.Problem, it *iterate.Iterate) error {
	lr.Sub.ElasticCount = 2 * problem.NumConstraints()
	lr.Sub.Initialize(problem, it)
	if err := it.UpdateProgress(problem, nil, lr.ResidualNorm); err != nil {
		return err
	}
	lr.Strategy.Initialize(toStrategyProgress(it.Progress))
	return nil
}

// solveAt assembles and solves the elastic QP at penalty mu, reusing the
// Jacobian/objective already built by CreateCurrentSubproblem.
func (lr *L1Relaxation) solveAt(problem model.Problem, it *iterate.Iterate, mu float64) (*iterate.Direction, error) {
	lr.Sub.SetElasticPenalty(mu)
	dir, err := lr.Sub.Solve(problem, it)
	it.RecordSubproblemSolved()
	return dir, err
}

// ComputeFeasibleDirection runs the Byrd steering rule of spec.md §4.3.b
// steps 1-6, resolving the elastic QP at a sequence of candidate mu values
// until the two sufficient-progress conditions both hold (or mu collapses
// to zero).
func (lr *L1Relaxation) ComputeFeasibleDirection(problem model.Problem, it *iterate.Iterate, trustRegionRadius float64) (*iterate.Direction, error) {
	n := problem.NumVariables()
	q := problem.NumConstraints()
	lr.Sub.ElasticCount = 2 * q

	if err := lr.Sub.CreateCurrentSubproblem(problem, it, lr.ObjectiveSign, trustRegionRadius); err != nil {
		return nil, err
	}
	lr.Sub.SetElasticCoefficients()

	muEntering := lr.Mu
	hk := it.Progress.Infeasibility

	// Step 1.
	dir, err := lr.solveAt(problem, it, lr.Mu)
	if err != nil {
		return nil, err
	}
	mk := elasticMagnitude(dir.Primal, n)
	if mk <= 0 {
		lr.MuHistory = append(lr.MuHistory, lr.Mu)
		return dir, nil
	}

	// Step 2.
	d0, err := lr.solveAt(problem, it, 0)
	if err != nil {
		return nil, err
	}
	mk0 := elasticMagnitude(d0.Primal, n)

	// Step 3. The complementarity(d0) term is approximated by the
	// elastic magnitude of d0 itself: at a truly complementary solution
	// the elastics used are exactly the unavoidable violation, so this
	// proxy is zero exactly when the spec's exact measure would be.
	gFeas, err := it.EvaluateLagrangianGradient(problem, nil, iterate.Feasibility, lr.ObjectiveSign, it.Lambda, it.ZLower, it.ZUpper)
	if err != nil {
		return nil, err
	}
	e := mk0 + l1Norm(gFeas)
	if e == 0 {
		lr.Mu = 0
		lr.finishMuUpdate(muEntering)
		return d0, nil
	}

	// Step 4.
	candidate := math.Min(lr.Mu, math.Pow(e/math.Max(1, hk), 2))
	lr.Mu = candidate

	fModelD := lr.Sub.GeneratePredictedReduction(problem, dir).Optimality(lr.ObjectiveSign, 1)
	fModelD0 := lr.Sub.GeneratePredictedReduction(problem, d0).Optimality(lr.ObjectiveSign, 1)

	// Step 5.
	for sweep := 0; sweep < maxSteeringSweeps; sweep++ {
		cond1 := (mk0 == 0 && mk == 0) || (hk-mk >= lr.Epsilon1*(hk-mk0))
		cond2 := hk-fModelD >= lr.Epsilon2*(hk-fModelD0)
		if cond1 && cond2 {
			break
		}
		lr.Mu *= lr.KappaDecrease
		if lr.Mu < muFloor {
			lr.Mu = 0
			dir = d0
			mk = mk0
			fModelD = fModelD0
			break
		}
		dir, err = lr.solveAt(problem, it, lr.Mu)
		if err != nil {
			return nil, err
		}
		mk = elasticMagnitude(dir.Primal, n)
		fModelD = lr.Sub.GeneratePredictedReduction(problem, dir).Optimality(lr.ObjectiveSign, 1)
	}

	lr.finishMuUpdate(muEntering)
	return dir, nil
}

// finishMuUpdate resets the globalization strategy whenever mu shrank this
// iteration, per spec.md §4.3.b's "any decrease in mu invalidates the
// filter/merit history," and appends to MuHistory.
func (lr *L1Relaxation) finishMuUpdate(muEntering float64) {
	if lr.Mu < muEntering {
		lr.Strategy.Reset()
	}
	lr.MuHistory = append(lr.MuHistory, lr.Mu)
}

// muSetter is implemented by strategy.L1Penalty; L1Relaxation uses it to
// keep the merit function's penalty parameter synchronized with the
// steering rule's current mu before every acceptance check.
type muSetter interface{ SetMu(mu float64) }

// IsAcceptable has no phase to transition: acceptance is delegated
// directly to the single globalization strategy, using the iterates'
// (infeasibility, objective) progress pairs; the strategy forms its own
// merit value from them (mu*f + h for L1Penalty).
func (lr *L1Relaxation) IsAcceptable(problem model.Problem, current, trial *iterate.Iterate, direction *iterate.Direction, alpha float64) (bool, error) {
	if err := trial.UpdateProgress(problem, nil, lr.ResidualNorm); err != nil {
		return false, err
	}
	if s, ok := lr.Strategy.(muSetter); ok {
		s.SetMu(lr.Mu)
	}
	pr := lr.Sub.GeneratePredictedReduction(problem, direction)
	predicted := pr.Optimality(lr.ObjectiveSign, alpha) + pr.Infeasibility(alpha)
	accepted := lr.Strategy.CheckAcceptance(toStrategyProgress(current.Progress), toStrategyProgress(trial.Progress), predicted, lr.ObjectiveSign)
	if accepted {
		lr.Strategy.Notify(toStrategyProgress(current.Progress))
	}
	return accepted, nil
}

// ComputeSecondOrderCorrection delegates to the wrapped QP subproblem's own
// Maratos-effect correction.
func (lr *L1Relaxation) ComputeSecondOrderCorrection(problem model.Problem, it *iterate.Iterate, trial []float64) (*iterate.Direction, error) {
	return lr.Sub.ComputeSecondOrderCorrection(problem, it, trial)
}

func elasticMagnitude(d []float64, n int) float64 {
	s := 0.0
	for i := n; i < len(d); i++ {
		s += math.Abs(d[i])
	}
	return s
}

func l1Norm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += math.Abs(x)
	}
	return s
}
