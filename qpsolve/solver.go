// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qpsolve

import (
	"fmt"
	"math"

	"github.com/gosolve/nlp/internal/veclib"
	"gonum.org/v1/gonum/mat"
)

// Status is the outcome of a Solve call, independent of the iterate
// package's SolverStatus so that qpsolve has no import-time dependency on
// the iteration engine; subproblem translates between the two.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusMaxIterations
	StatusSingular
	StatusBadArgument
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusMaxIterations:
		return "max_iterations"
	case StatusSingular:
		return "singular"
	default:
		return "bad_argument"
	}
}

// Problem is a dense convex QP: min 1/2 d^T H d + g^T d subject to
// AEq*d = bEq, AIneq*d >= bIneq, Lower <= d <= Upper. H must be symmetric
// positive definite; Solve reports StatusSingular when its Cholesky
// factorization fails (subproblem.QP adds a small diagonal shift to H
// before handing a Problem to Solve).
type Problem struct {
	H     *mat.SymDense
	G     []float64
	AEq   *mat.Dense // meq x n, may be nil
	BEq   []float64
	AIneq *mat.Dense // mineq x n, may be nil
	BIneq []float64
	Lower []float64 // length n, -Inf for unbounded below
	Upper []float64 // length n, +Inf for unbounded above
}

// Result is the solution of a Problem: the primal step D, the multipliers
// of the equality then inequality constraints (Mu, Lambda), with the
// bound-row multipliers appended to Lambda after the general inequality
// rows.
type Result struct {
	D       []float64
	Mu      []float64 // equality multipliers, length meq
	Lambda  []float64 // inequality multipliers, length mineq + bound rows
	Status  Status
	ResNorm float64
}

// Solve assembles Problem into a least-squares-with-constraints problem by
// Cholesky-factoring H and reduces it to an lsei call, the same way the
// teacher's LSQ reduces an SQP subproblem to an LSEI call from the
// modified-Cholesky factor of the quasi-Newton Hessian. Bound constraints
// are folded into the inequality block as +-unit rows, matching the
// teacher's LSQ bound-augmentation of G/h.
func Solve(p *Problem, maxIter int) (*Result, error) {
	n := len(p.G)
	if n == 0 {
		return nil, fmt.Errorf("qpsolve: empty problem")
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(p.H); !ok {
		return &Result{Status: StatusSingular}, nil
	}
	var lMat mat.TriDense
	chol.LTo(&lMat)

	// f = -L^-1 g, solved by forward substitution since L is lower
	// triangular.
	f := make([]float64, n)
	copy(f, p.G)
	for i := range f {
		f[i] = -f[i]
	}
	var fVec mat.VecDense
	fVec.SolveVec(&lMat, mat.NewVecDense(n, f))
	for i := 0; i < n; i++ {
		f[i] = fVec.AtVec(i)
	}

	// E = L^T, column-major with leading dimension n.
	e := make([]float64, n*n)
	for col := 0; col < n; col++ {
		for row := 0; row < n; row++ {
			e[row+n*col] = lMat.At(col, row)
		}
	}

	meq := 0
	if p.AEq != nil {
		meq, _ = p.AEq.Dims()
	}
	cMat := make([]float64, max(meq, 1)*n)
	d := make([]float64, max(meq, 1))
	for i := 0; i < meq; i++ {
		for j := 0; j < n; j++ {
			cMat[i+meq*j] = p.AEq.At(i, j)
		}
		d[i] = p.BEq[i]
	}

	mineq := 0
	if p.AIneq != nil {
		mineq, _ = p.AIneq.Dims()
	}
	nBounds := 0
	for i := 0; i < n; i++ {
		if !math.IsInf(p.Lower[i], -1) {
			nBounds++
		}
		if !math.IsInf(p.Upper[i], 1) {
			nBounds++
		}
	}
	m1 := mineq + nBounds
	gMat := make([]float64, max(m1, 1)*n)
	h := make([]float64, max(m1, 1))
	for i := 0; i < mineq; i++ {
		for j := 0; j < n; j++ {
			gMat[i+m1*j] = p.AIneq.At(i, j)
		}
		h[i] = p.BIneq[i]
	}
	row := mineq
	for i := 0; i < n; i++ {
		if lo := p.Lower[i]; !math.IsInf(lo, -1) {
			gMat[row+m1*i] = 1
			h[row] = lo
			row++
		}
		if up := p.Upper[i]; !math.IsInf(up, 1) {
			gMat[row+m1*i] = -1
			h[row] = -up
			row++
		}
	}

	x := make([]float64, n)
	w := make([]float64, 2*meq+n+(n+m1)*(n-meq+1)+m1*(m1+2)+2*m1+64)
	jw := make([]int, max(m1, min(meq, n-meq))+8)

	norm, md := lsei(cMat, d, e, f, gMat, h, meq, meq, n, n, m1, m1, n, x, w, jw, maxIter)

	res := &Result{D: x, ResNorm: norm}
	switch md {
	case hasSolution:
		res.Status = StatusOptimal
		res.Mu = append([]float64(nil), w[:meq]...)
		res.Lambda = append([]float64(nil), w[meq:meq+m1]...)
	case consIncompatible:
		res.Status = StatusInfeasible
	case nnlsExceedMaxIter:
		res.Status = StatusMaxIterations
	case lsiSingularE, lseiSingularC, hftiRankDefect:
		res.Status = StatusSingular
	default:
		res.Status = StatusBadArgument
	}
	return res, nil
}

// Residual computes ||Hd + g||, used by callers that want a cheap
// post-solve sanity check without re-deriving KKT stationarity.
func Residual(p *Problem, d []float64) float64 {
	n := len(d)
	r := make([]float64, n)
	for i := 0; i < n; i++ {
		r[i] = p.G[i]
		for j := 0; j < n; j++ {
			r[i] += p.H.At(i, j) * d[j]
		}
	}
	return veclib.Dnrm2(n, r, 1)
}
