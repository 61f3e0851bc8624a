// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package subproblem

import (
	"fmt"
	"math"

	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/lpsolve"
	"github.com/gosolve/nlp/model"
	"gonum.org/v1/gonum/mat"
)

// LP is the linearized LP Subproblem variant selected by subproblem=LP,
// whatever the hessian_model option says, giving an SLP (rather than SQP)
// outer loop: the objective term is purely linear, so GeneratePredictedReduction's
// quadratic contribution is always zero.
type LP struct {
	n, q int

	Solver lpsolve.Solver

	objGrad []float64
	jac     model.SparseMatrix
	lower   []float64
	upper   []float64
}

// NewLP creates an LP subproblem backed by the default simplex solver.
func NewLP(n, q int) *LP {
	return &LP{n: n, q: q, Solver: lpsolve.SimplexSolver{}}
}

func (p *LP) Initialize(problem model.Problem, it *iterate.Iterate) {
	perturbInterior(it.X, problem.VariableBounds)
}

func (p *LP) CreateCurrentSubproblem(problem model.Problem, it *iterate.Iterate, sigma, trustRegionRadius float64) error {
	g, err := it.EvaluateObjectiveGradient(problem, nil)
	if err != nil {
		return err
	}
	jac, err := it.EvaluateConstraintsJacobian(problem, nil)
	if err != nil {
		return err
	}
	p.objGrad = append([]float64(nil), g...)
	p.jac = jac

	lower := make([]float64, p.n)
	upper := make([]float64, p.n)
	for i := 0; i < p.n; i++ {
		b := problem.VariableBounds(i)
		lower[i] = math.Max(b.Lower-it.X[i], -trustRegionRadius)
		upper[i] = math.Min(b.Upper-it.X[i], trustRegionRadius)
	}
	p.lower, p.upper = lower, upper
	return nil
}

// SetObjectiveGradient overrides the linear term directly; see
// QP.SetObjectiveGradient.
func (p *LP) SetObjectiveGradient(g []float64) {
	p.objGrad = append([]float64(nil), g...)
}

func (p *LP) BuildObjectiveModel(problem model.Problem, it *iterate.Iterate, sigma float64) error {
	g, err := it.EvaluateObjectiveGradient(problem, nil)
	if err != nil {
		return err
	}
	scaled := make([]float64, len(g))
	for i, v := range g {
		scaled[i] = sigma * v
	}
	p.objGrad = scaled
	return nil
}

// Solve linearizes every constraint about the current iterate and converts
// the box-constrained linear system into lpsolve's standard form: one
// equality row per constraint (inequality rows become equalities against a
// bounded slack, folded in the same displacement-bound block the QP variant
// uses for its box constraints).
func (p *LP) Solve(problem model.Problem, it *iterate.Iterate) (*iterate.Direction, error) {
	cVal, err := it.EvaluateConstraints(problem, nil)
	if err != nil {
		return nil, err
	}

	n := p.n
	var rows [][]float64
	var rhs []float64
	var slackCol []int // slackCol[r] is the slack column for row r, or -1
	var slackLower, slackUpper []float64

	for j := 0; j < p.q; j++ {
		b := problem.ConstraintBounds(j)
		row := make([]float64, n)
		for i, v := range p.jac[j] {
			if i < n {
				row[i] = v
			}
		}
		if b.Kind() == model.Equality {
			rows = append(rows, row)
			rhs = append(rhs, b.Lower-cVal[j])
			slackCol = append(slackCol, -1)
			continue
		}
		// grad g_j . d in [lower-c, upper-c]; introduce a slack s with
		// d-row equal to s and bound s in [lower-c, upper-c].
		rows = append(rows, row)
		rhs = append(rhs, 0)
		slackCol = append(slackCol, n+len(slackLower))
		slackLower = append(slackLower, b.Lower-cVal[j])
		slackUpper = append(slackUpper, b.Upper-cVal[j])
	}

	total := n + len(slackLower)
	aEq := mat.NewDense(len(rows), total, nil)
	for r, row := range rows {
		for i, v := range row {
			aEq.Set(r, i, v)
		}
		if col := slackCol[r]; col >= 0 {
			aEq.Set(r, col, -1)
		}
	}

	lower := make([]float64, total)
	upper := make([]float64, total)
	copy(lower, p.lower)
	copy(upper, p.upper)
	copy(lower[n:], slackLower)
	copy(upper[n:], slackUpper)

	c := make([]float64, total)
	copy(c, p.objGrad)

	lpProblem := &lpsolve.Problem{C: c, AEq: aEq, BEq: rhs, Lower: lower, Upper: upper}
	res, err := p.Solver.Solve(lpProblem)
	if err != nil {
		return nil, fmt.Errorf("subproblem: lp solve: %w", err)
	}

	dir := &iterate.Direction{
		AtLowerBound: map[int]bool{},
		AtUpperBound: map[int]bool{},
	}
	switch res.Status {
	case lpsolve.StatusOptimal:
		dir.Primal = res.X[:n]
		dir.Status = iterate.Optimal
		dir.PredictedObjective = res.Optimum
	case lpsolve.StatusInfeasible:
		dir.Status = iterate.Infeasible
		dir.IsRelaxed = true
		dir.Partition = iterate.NewConstraintPartition(model.SignedViolations(problem, cVal))
	default:
		dir.Status = iterate.UnboundedProblem
	}
	if dir.Primal != nil {
		for i := 0; i < n; i++ {
			if dir.Primal[i] <= p.lower[i]+1e-10 {
				dir.AtLowerBound[i] = true
			}
			if dir.Primal[i] >= p.upper[i]-1e-10 {
				dir.AtUpperBound[i] = true
			}
		}
		dir.Norm = l2Norm(dir.Primal)
	}
	return dir, nil
}

func (p *LP) GeneratePredictedReduction(problem model.Problem, direction *iterate.Direction) *PredictedReduction {
	d := direction.Primal
	g := p.objGrad
	lin := 0.0
	for i := 0; i < len(g) && i < len(d); i++ {
		lin += g[i] * d[i]
	}
	return &PredictedReduction{
		Infeasibility: func(alpha float64) float64 { return 0 },
		Optimality: func(sigma, alpha float64) float64 {
			return -sigma * lin * alpha
		},
	}
}
