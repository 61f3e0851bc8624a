// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package subproblem

import (
	"fmt"
	"math"

	"github.com/gosolve/nlp/hessianmodel"
	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/model"
	"github.com/gosolve/nlp/qpsolve"
	"gonum.org/v1/gonum/mat"
)

// QP is the active-set QP Subproblem variant: displacement bounds
// {max(xL-x,-radius), min(xU-x,+radius)} on the original n coordinates,
// and [0, +Inf) on any elastic coordinates appended by a constraint-relaxation
// strategy (see relax.L1Relaxation), solved by qpsolve.Solve.
type QP struct {
	n, q int

	hessianKind string
	hessian     hessianmodel.Model

	// ElasticCount is the number of nonnegative elastic variables appended
	// after the original n coordinates by an l1-relaxation caller; zero
	// for a plain QP subproblem.
	ElasticCount int

	// Proximal is the proximal_coefficient option: an extra diagonal term
	// added to the Hessian's original n x n block on top of the fixed
	// regularization floor, stabilizing the subproblem when the curvature
	// model is poorly conditioned. Zero (the default) is a no-op.
	Proximal float64

	objGrad []float64
	jac     model.SparseMatrix
	lower   []float64
	upper   []float64

	// Row bookkeeping populated by assemble and consumed by toDirection to
	// reconstruct per-constraint and per-bound duals from qpsolve's flat
	// Mu/Lambda vectors: eqOwner[k] is the constraint index of the k-th
	// equality row; ineqOwner/ineqSign do the same for the general
	// (non-bound) inequality rows, sign +1 for a lower-side row and -1 for
	// a negated upper-side row; boundOwner/boundSign are the analogous
	// pair for the trailing bound rows qpsolve.Solve appends itself.
	eqOwner    []int
	ineqOwner  []int
	ineqSign   []float64
	boundOwner []int
	boundSign  []float64
}

// NewQP creates a QP subproblem for an n-variable, q-constraint problem
// using the named Hessian model ("exact", "BFGS", "SR1", or "zero").
func NewQP(n, q int, hessianKind string) *QP {
	return &QP{n: n, q: q, hessianKind: hessianKind, hessian: hessianModelFor(hessianKind, n)}
}

func (qp *QP) Initialize(problem model.Problem, it *iterate.Iterate) {
	perturbInterior(it.X, problem.VariableBounds)
}

func (qp *QP) CreateCurrentSubproblem(problem model.Problem, it *iterate.Iterate, sigma, trustRegionRadius float64) error {
	g, err := it.EvaluateObjectiveGradient(problem, nil)
	if err != nil {
		return err
	}
	jac, err := it.EvaluateConstraintsJacobian(problem, nil)
	if err != nil {
		return err
	}

	if qp.hessianKind == "exact" {
		h, err := it.EvaluateLagrangianHessian(problem)
		if err != nil {
			return err
		}
		dense := h.Dense(qp.n, qp.n)
		sym := mat.NewSymDense(qp.n, nil)
		for i := 0; i < qp.n; i++ {
			for j := i; j < qp.n; j++ {
				sym.SetSym(i, j, dense.At(j, i)) // LagrangianHessian fills the lower triangle
			}
		}
		qp.hessian = hessianmodel.NewExact(sym)
	}

	qp.objGrad = append([]float64(nil), g...)
	qp.jac = jac

	lower := make([]float64, qp.n+qp.ElasticCount)
	upper := make([]float64, qp.n+qp.ElasticCount)
	for i := 0; i < qp.n; i++ {
		b := problem.VariableBounds(i)
		lower[i] = math.Max(b.Lower-it.X[i], -trustRegionRadius)
		upper[i] = math.Min(b.Upper-it.X[i], trustRegionRadius)
	}
	for i := qp.n; i < qp.n+qp.ElasticCount; i++ {
		lower[i] = 0
		upper[i] = math.Inf(1)
	}
	qp.lower, qp.upper = lower, upper
	return nil
}

// SetObjectiveGradient overrides the linear term directly, bypassing the
// Problem's own objective gradient; used by relax.FeasibilityRestoration
// to install the l1-violation linear objective of the feasibility problem.
func (qp *QP) SetObjectiveGradient(g []float64) {
	qp.objGrad = append([]float64(nil), g...)
}

// SetElasticCoefficients installs, for each of the q constraint rows, a
// unit coefficient at column n+2*j for the upper-violation elastic p_j and
// n+2*j+1 for the lower-violation elastic n_j: the standard l1-relaxation
// augmentation relax.L1Relaxation drives. Call after
// CreateCurrentSubproblem, once ElasticCount == 2*q and the Jacobian rows
// already exist.
func (qp *QP) SetElasticCoefficients() {
	for j := 0; j < qp.q; j++ {
		qp.jac.Set(j, qp.n+2*j, -1)
		qp.jac.Set(j, qp.n+2*j+1, 1)
	}
}

// SetElasticPenalty appends the l1 penalty coefficient mu to the
// objective term at every elastic column, leaving the first n (original)
// coordinates of the gradient untouched.
func (qp *QP) SetElasticPenalty(mu float64) {
	g := append([]float64(nil), qp.objGrad[:qp.n]...)
	for i := 0; i < qp.ElasticCount; i++ {
		g = append(g, mu)
	}
	qp.objGrad = g
}

func (qp *QP) BuildObjectiveModel(problem model.Problem, it *iterate.Iterate, sigma float64) error {
	g, err := it.EvaluateObjectiveGradient(problem, nil)
	if err != nil {
		return err
	}
	scaled := make([]float64, len(g))
	for i, v := range g {
		scaled[i] = sigma * v
	}
	qp.objGrad = scaled
	return nil
}

// assemble builds the qpsolve.Problem for the current Hessian model,
// gradient and Jacobian, linearizing the constraint set about cVal (the
// constraint values to linearize from: the iterate's own c(x) for a normal
// solve, or c(x+trial) for a second-order correction).
func (qp *QP) assemble(problem model.Problem, cVal []float64) *qpsolve.Problem {
	n := qp.n + qp.ElasticCount

	hDense := qp.hessian.Current()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < qp.n; i++ {
		for j := 0; j < qp.n; j++ {
			sym.SetSym(i, j, hDense.At(i, j))
		}
	}
	// Regularize: ensure strictly positive definite before the Cholesky
	// factorization qpsolve.Solve performs, per the inertia-failure
	// recovery rule in spec.md §7 (the subproblem layer applies this fixed
	// minimal shift only; nothing escalates it when the factorization still
	// fails, and qpsolve.Solve then reports StatusSingular).
	for i := 0; i < n; i++ {
		sym.SetSym(i, i, sym.At(i, i)+1e-10)
	}
	for i := 0; i < qp.n; i++ {
		sym.SetSym(i, i, sym.At(i, i)+qp.Proximal)
	}

	g := make([]float64, n)
	copy(g, qp.objGrad)

	var aEq, aIneq *mat.Dense
	var bEq, bIneq []float64
	qp.eqOwner = qp.eqOwner[:0]
	qp.ineqOwner = qp.ineqOwner[:0]
	qp.ineqSign = qp.ineqSign[:0]
	for j := 0; j < qp.q; j++ {
		b := problem.ConstraintBounds(j)
		row := make([]float64, n)
		for i, v := range qp.jac[j] {
			if i < n {
				row[i] = v
			}
		}
		if b.Kind() == model.Equality {
			if aEq == nil {
				aEq = mat.NewDense(0, n, nil)
			}
			aEq = appendRow(aEq, row)
			bEq = append(bEq, b.Lower-cVal[j])
			qp.eqOwner = append(qp.eqOwner, j)
		} else {
			if !math.IsInf(b.Lower, -1) {
				if aIneq == nil {
					aIneq = mat.NewDense(0, n, nil)
				}
				aIneq = appendRow(aIneq, row)
				bIneq = append(bIneq, b.Lower-cVal[j])
				qp.ineqOwner = append(qp.ineqOwner, j)
				qp.ineqSign = append(qp.ineqSign, 1)
			}
			if !math.IsInf(b.Upper, 1) {
				neg := make([]float64, n)
				for i, v := range row {
					neg[i] = -v
				}
				if aIneq == nil {
					aIneq = mat.NewDense(0, n, nil)
				}
				aIneq = appendRow(aIneq, neg)
				bIneq = append(bIneq, cVal[j]-b.Upper)
				qp.ineqOwner = append(qp.ineqOwner, j)
				qp.ineqSign = append(qp.ineqSign, -1)
			}
		}
	}

	qp.boundOwner = qp.boundOwner[:0]
	qp.boundSign = qp.boundSign[:0]
	for i := 0; i < n; i++ {
		if !math.IsInf(qp.lower[i], -1) {
			qp.boundOwner = append(qp.boundOwner, i)
			qp.boundSign = append(qp.boundSign, 1)
		}
		if !math.IsInf(qp.upper[i], 1) {
			qp.boundOwner = append(qp.boundOwner, i)
			qp.boundSign = append(qp.boundSign, -1)
		}
	}

	return &qpsolve.Problem{
		H: sym, G: g,
		AEq: aEq, BEq: bEq,
		AIneq: aIneq, BIneq: bIneq,
		Lower: qp.lower, Upper: qp.upper,
	}
}

// toDirection converts a qpsolve.Result into a Direction, tagging the
// active set against qp's current displacement bounds. cVal is the
// iterate's current constraint values, used to partition constraints by
// violation side when the solve reports infeasibility.
func (qp *QP) toDirection(res *qpsolve.Result, problem model.Problem, cVal []float64) *iterate.Direction {
	dir := &iterate.Direction{
		Primal:       res.D,
		AtLowerBound: map[int]bool{},
		AtUpperBound: map[int]bool{},
	}
	for i := 0; i < qp.n; i++ {
		if res.D[i] <= qp.lower[i]+1e-10 {
			dir.AtLowerBound[i] = true
		}
		if res.D[i] >= qp.upper[i]-1e-10 {
			dir.AtUpperBound[i] = true
		}
	}
	dir.Norm = l2Norm(res.D)
	dir.Dual = append(res.Mu, res.Lambda...)
	if res.Status == qpsolve.StatusOptimal {
		dir.Lambda, dir.ZLower, dir.ZUpper = qp.reconstructDuals(res)
	}

	switch res.Status {
	case qpsolve.StatusOptimal:
		dir.Status = iterate.Optimal
	case qpsolve.StatusInfeasible:
		dir.Status = iterate.Infeasible
		dir.IsRelaxed = true
		dir.Partition = iterate.NewConstraintPartition(model.SignedViolations(problem, cVal))
	case qpsolve.StatusMaxIterations:
		dir.Status = iterate.MaxRestartsReached
	case qpsolve.StatusSingular:
		dir.Status = iterate.IncorrectParameter
	default:
		dir.Status = iterate.Undefined
	}
	return dir
}

// reconstructDuals recovers per-constraint and per-bound multipliers from
// qpsolve's flat Mu/Lambda vectors, using the row ownership assemble
// recorded. A general inequality constraint with both a lower- and an
// upper-side row nets the two (the upper row's dual entered with the
// opposite sign since its row was negated); an equality row's multiplier
// carries through unchanged. Bound rows are split the same way into
// ZLower/ZUpper, reported only for the original n coordinates.
func (qp *QP) reconstructDuals(res *qpsolve.Result) ([]float64, map[int]float64, map[int]float64) {
	lambda := make([]float64, qp.q)
	for k, j := range qp.eqOwner {
		if k < len(res.Mu) {
			lambda[j] += res.Mu[k]
		}
	}
	for k, j := range qp.ineqOwner {
		if k < len(res.Lambda) {
			lambda[j] += qp.ineqSign[k] * res.Lambda[k]
		}
	}

	zLower := map[int]float64{}
	zUpper := map[int]float64{}
	boundDuals := res.Lambda[minInt(len(qp.ineqOwner), len(res.Lambda)):]
	for k, i := range qp.boundOwner {
		if i >= qp.n || k >= len(boundDuals) {
			continue
		}
		if qp.boundSign[k] > 0 {
			zLower[i] += boundDuals[k]
		} else {
			zUpper[i] -= boundDuals[k]
		}
	}
	return lambda, zLower, zUpper
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (qp *QP) Solve(problem model.Problem, it *iterate.Iterate) (*iterate.Direction, error) {
	cVal, err := it.EvaluateConstraints(problem, nil)
	if err != nil {
		return nil, err
	}
	res, err := qpsolve.Solve(qp.assemble(problem, cVal), 0)
	if err != nil {
		return nil, fmt.Errorf("subproblem: qp solve: %w", err)
	}
	return qp.toDirection(res, problem, cVal), nil
}

// ComputeSecondOrderCorrection re-solves the current quadratic model with
// the constraint set linearized about the rejected trial point x+trial
// instead of x, the standard Maratos-effect remedy: the correction term
// c(x+trial) - c(x) - J(x)*trial is folded into the constraint right-hand
// side by linearizing directly from c(x+trial), since J(x) is held fixed.
func (qp *QP) ComputeSecondOrderCorrection(problem model.Problem, it *iterate.Iterate, trial []float64) (*iterate.Direction, error) {
	n := qp.n
	xTrial := make([]float64, n)
	for i := 0; i < n && i < len(trial); i++ {
		xTrial[i] = it.X[i] + trial[i]
	}
	cTrial, err := problem.Constraints(xTrial)
	if err != nil {
		return nil, fmt.Errorf("subproblem: second-order correction constraint evaluation: %w", err)
	}
	res, err := qpsolve.Solve(qp.assemble(problem, cTrial), 0)
	if err != nil {
		return nil, fmt.Errorf("subproblem: second-order correction qp solve: %w", err)
	}
	return qp.toDirection(res, problem, cTrial), nil
}

func (qp *QP) GeneratePredictedReduction(problem model.Problem, direction *iterate.Direction) *PredictedReduction {
	d := direction.Primal
	g := qp.objGrad
	h := qp.hessian.Current()

	quad := 0.0
	for i := 0; i < qp.n && i < len(d); i++ {
		for j := 0; j < qp.n && j < len(d); j++ {
			quad += d[i] * h.At(i, j) * d[j]
		}
	}
	lin := 0.0
	for i := 0; i < len(g) && i < len(d); i++ {
		lin += g[i] * d[i]
	}

	return &PredictedReduction{
		Infeasibility: func(alpha float64) float64 {
			return alpha * elasticSum(d, qp.n)
		},
		Optimality: func(sigma, alpha float64) float64 {
			return -(sigma*lin*alpha + 0.5*sigma*quad*alpha*alpha)
		},
	}
}

func elasticSum(d []float64, n int) float64 {
	s := 0.0
	for i := n; i < len(d); i++ {
		s += math.Abs(d[i])
	}
	return s
}

func l2Norm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func appendRow(m *mat.Dense, row []float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r+1, c, nil)
	out.Copy(m)
	for j, v := range row {
		out.Set(r, j, v)
	}
	return out
}
