// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package subproblem

import (
	"fmt"
	"math"

	"github.com/gosolve/nlp/hessianmodel"
	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/linsolve"
	"github.com/gosolve/nlp/model"
)

// barrier holds the Fiacco-McCormick update constants for the primal-dual
// interior-point subproblem's barrier parameter schedule.
const (
	barrierKappaMu = 0.2
	barrierThetaMu = 1.5
	fractionCap    = 0.99
)

// InteriorPoint is the primal-dual interior-point Subproblem variant:
// inequality constraints get a slack variable and a log-barrier term,
// and the KKT system for the resulting barrier problem is solved directly
// by a symmetric-indefinite factorization rather than reduced to a QP.
type InteriorPoint struct {
	n, q int

	hessian hessianmodel.Model
	Solver  linsolve.Solver

	// Proximal is the proximal_coefficient option: an extra diagonal term
	// added to the KKT system's (1,1) block on top of the Hessian model's
	// curvature. Zero (the default) is a no-op.
	Proximal float64

	mu      float64
	tol     float64
	slack   []float64 // length q, one per general constraint
	lambda  []float64 // constraint multipliers, length q

	objGrad []float64
	jac     model.SparseMatrix
}

// NewInteriorPoint creates an interior-point subproblem for an n-variable,
// q-constraint problem, starting the barrier parameter at mu0 and the
// per-barrier-subproblem tolerance at tol0.
func NewInteriorPoint(n, q int, hessianKind string, mu0, tol0 float64) *InteriorPoint {
	return &InteriorPoint{
		n: n, q: q,
		hessian: hessianModelFor(hessianKind, n),
		Solver:  &linsolve.BunchKaufman{},
		mu:      mu0,
		tol:     tol0,
		slack:   make([]float64, q),
		lambda:  make([]float64, q),
	}
}

func (ip *InteriorPoint) Initialize(problem model.Problem, it *iterate.Iterate) {
	perturbInterior(it.X, problem.VariableBounds)
	for j := 0; j < ip.q; j++ {
		b := problem.ConstraintBounds(j)
		if b.Kind() == model.Equality {
			continue
		}
		// initialize slack to the midpoint of any finite range, or a unit
		// offset from whichever bound is finite, keeping it strictly
		// positive so the barrier term is defined at the first iterate.
		switch {
		case !math.IsInf(b.Lower, -1) && !math.IsInf(b.Upper, 1):
			ip.slack[j] = math.Max(1, (b.Upper-b.Lower)/2)
		default:
			ip.slack[j] = 1
		}
	}
}

func (ip *InteriorPoint) CreateCurrentSubproblem(problem model.Problem, it *iterate.Iterate, sigma, trustRegionRadius float64) error {
	g, err := it.EvaluateObjectiveGradient(problem, nil)
	if err != nil {
		return err
	}
	jac, err := it.EvaluateConstraintsJacobian(problem, nil)
	if err != nil {
		return err
	}
	ip.objGrad = append([]float64(nil), g...)
	ip.jac = jac
	return nil
}

func (ip *InteriorPoint) BuildObjectiveModel(problem model.Problem, it *iterate.Iterate, sigma float64) error {
	g, err := it.EvaluateObjectiveGradient(problem, nil)
	if err != nil {
		return err
	}
	scaled := make([]float64, len(g))
	for i, v := range g {
		scaled[i] = sigma * v
	}
	ip.objGrad = scaled
	return nil
}

// Solve assembles and factors the symmetric KKT system
//
//	[ H + Sigma_x   J^T ] [ d_x ]   [ -(grad L) ]
//	[ J             -D  ] [ d_y ] = [ -r_c      ]
//
// where H is the subproblem's Hessian model (see hessianModelFor), Sigma_x
// is the Proximal diagonal, J is the constraint Jacobian, and
// D = diag(slack/lambda) is the inequality-slack complementarity block; D
// is zero-width when every constraint is an equality. No barrier term for
// variable bounds enters the (1,1) block. The factorization is a direct
// Bunch-Kaufman symmetric-indefinite solve rather than a reduction to lsei,
// since the interior-point KKT matrix is indefinite (-D negative).
func (ip *InteriorPoint) Solve(problem model.Problem, it *iterate.Iterate) (*iterate.Direction, error) {
	n := ip.n
	q := ip.q
	dim := n + q

	cVal, err := it.EvaluateConstraints(problem, nil)
	if err != nil {
		return nil, err
	}

	h := ip.hessian.Current()
	a := make([]float64, dim*dim) // row-major, lower triangle read by BunchKaufman
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			a[i*dim+j] = h.At(i, j)
		}
		a[i*dim+i] += ip.Proximal
	}

	rhs := make([]float64, dim)
	for i := 0; i < n; i++ {
		rhs[i] = -ip.objGrad[i]
	}

	for j := 0; j < q; j++ {
		row := ip.jac[j]
		for i, v := range row {
			if i < n {
				a[(n+j)*dim+i] += v
			}
		}
		b := problem.ConstraintBounds(j)
		if b.Kind() == model.Equality {
			rhs[n+j] = -(cVal[j] - b.Lower)
			continue
		}
		s := ip.slack[j]
		if s <= 0 {
			s = 1e-8
		}
		lam := ip.lambda[j]
		if lam <= 0 {
			lam = ip.mu / s
		}
		a[(n+j)*dim+(n+j)] = -s / lam
		rhs[n+j] = -(cVal[j] - b.Lower - s) - ip.mu/lam + s
	}

	if err := ip.Solver.Factorize(dim, a); err != nil {
		return nil, fmt.Errorf("subproblem: interior-point kkt factorize: %w", err)
	}
	step, err := ip.Solver.Solve(rhs)
	if err != nil {
		return nil, fmt.Errorf("subproblem: interior-point kkt solve: %w", err)
	}

	dx := step[:n]
	dy := step[n:]

	// fraction-to-the-boundary: tau = max(0.99, 1 - mu).
	tau := math.Max(fractionCap, 1-ip.mu)
	alpha := 1.0
	for j := 0; j < q; j++ {
		b := problem.ConstraintBounds(j)
		if b.Kind() == model.Equality {
			continue
		}
		ds := -dy[j] // slack step implied by the complementarity block
		if ds < 0 {
			alpha = math.Min(alpha, -tau*ip.slack[j]/ds)
		}
	}
	if alpha > 1 {
		alpha = 1
	}

	dir := &iterate.Direction{
		Primal:       dx,
		Dual:         dy,
		AtLowerBound: map[int]bool{},
		AtUpperBound: map[int]bool{},
		Status:       iterate.Optimal,
	}
	if ip.Solver.Singular() {
		dir.Status = iterate.IncorrectParameter
	}
	dir.Norm = l2Norm(dx)

	for j := 0; j < q; j++ {
		if alpha < 1 {
			ip.slack[j] += alpha * (-dy[j])
		}
		ip.lambda[j] += alpha * dy[j]
	}
	dir.Lambda = append([]float64(nil), ip.lambda...)
	ip.updateBarrier()
	return dir, nil
}

// updateBarrier applies the Fiacco-McCormick schedule mu' = max(tol/10,
// min(kappa_mu*mu, mu^theta_mu)).
func (ip *InteriorPoint) updateBarrier() {
	candidate := math.Min(barrierKappaMu*ip.mu, math.Pow(ip.mu, barrierThetaMu))
	ip.mu = math.Max(ip.tol/10, candidate)
}

func (ip *InteriorPoint) GeneratePredictedReduction(problem model.Problem, direction *iterate.Direction) *PredictedReduction {
	d := direction.Primal
	g := ip.objGrad
	h := ip.hessian.Current()

	quad := 0.0
	for i := 0; i < ip.n && i < len(d); i++ {
		for j := 0; j < ip.n && j < len(d); j++ {
			quad += d[i] * h.At(i, j) * d[j]
		}
	}
	lin := 0.0
	for i := 0; i < len(g) && i < len(d); i++ {
		lin += g[i] * d[i]
	}
	return &PredictedReduction{
		Infeasibility: func(alpha float64) float64 { return 0 },
		Optimality: func(sigma, alpha float64) float64 {
			return -(sigma*lin*alpha + 0.5*sigma*quad*alpha*alpha)
		},
	}
}
