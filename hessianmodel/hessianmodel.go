// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hessianmodel supplies the Hessian-of-Lagrangian models a
// subproblem can build its quadratic term from when the Problem does not
// (or cannot, per an option) supply exact second derivatives: a dense
// damped-BFGS update, an SR1 update, a pass-through of the Problem's exact
// Hessian, and a zero model for first-order methods.
package hessianmodel

import (
	"math"

	"github.com/gosolve/nlp/internal/veclib"
	"gonum.org/v1/gonum/mat"
)

// Model produces (and maintains, across calls to Update) an n x n
// symmetric approximation to the Hessian of the Lagrangian. Zero and BFGS
// are positive (semi-)definite; SR1 and Exact may be indefinite.
type Model interface {
	// Current returns the current approximation.
	Current() *mat.SymDense
	// Update refines the approximation given the step s = x_new - x_old
	// and the corresponding Lagrangian-gradient difference y = g_new -
	// g_old.
	Update(s, y []float64)
}

// Zero is the trivial model used by first-order methods: it never updates
// and always reports the zero matrix, so the subproblem's quadratic term
// degenerates to a pure linearization.
type Zero struct{ n int }

func NewZero(n int) *Zero { return &Zero{n: n} }

func (z *Zero) Current() *mat.SymDense  { return mat.NewSymDense(z.n, nil) }
func (z *Zero) Update(s, y []float64)   {}

// Exact wraps a Problem-supplied Hessian directly; Update is a no-op since
// the exact Hessian is recomputed by the caller from model.Problem at each
// iterate rather than maintained incrementally.
type Exact struct {
	current *mat.SymDense
}

func NewExact(h *mat.SymDense) *Exact { return &Exact{current: h} }

func (e *Exact) Current() *mat.SymDense { return e.current }
func (e *Exact) Update(s, y []float64)  {}
func (e *Exact) Set(h *mat.SymDense)    { e.current = h }

// BFGS is a dense, Powell-damped BFGS model. Its curvature update is
// grounded on the teacher's modified-BFGS rank-one LDL^t update
// (qpsolve.rankOneLDLUpdate, itself Kraft's 1988 SQP package algorithm):
// that update factors the Hessian as L*D*L^T and applies the BFGS
// correction as two successive rank-one LDL^t modifications, which is
// exactly the classical dense-BFGS-on-a-Cholesky-factor scheme. Rather
// than duplicate that factor-update machinery here (it is package-private
// to qpsolve, close to its Householder/Givens neighbors), BFGS maintains
// the dense Hessian directly via the textbook damped update and lets
// qpsolve.Solve re-factor it through gonum's Cholesky at subproblem-solve
// time; this trades one extra O(n^3) factorization per subproblem for
// keeping the curvature update and the KKT solve decoupled.
type BFGS struct {
	n   int
	h   *mat.SymDense
	tol float64
}

// NewBFGS creates a BFGS model initialized to the identity, the standard
// starting approximation absent better curvature information.
func NewBFGS(n int) *BFGS {
	h := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		h.SetSym(i, i, 1)
	}
	return &BFGS{n: n, h: h, tol: 0.2}
}

func (b *BFGS) Current() *mat.SymDense { return b.h }

// Update applies the Powell-damped BFGS correction: when s^T y is too
// small relative to s^T H s, y is replaced by a convex combination of
// itself and H*s so the update remains positive definite, following
// Nocedal & Wright, "Numerical Optimization", procedure 18.2.
func (b *BFGS) Update(s, y []float64) {
	n := b.n
	hs := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += b.h.At(i, j) * s[j]
		}
		hs[i] = sum
	}
	sHs := veclib.Ddot(n, s, 1, hs, 1)
	sy := veclib.Ddot(n, s, 1, y, 1)

	theta := 1.0
	if sy < b.tol*sHs {
		theta = (1 - b.tol) * sHs / (sHs - sy)
	}
	yBar := make([]float64, n)
	for i := range yBar {
		yBar[i] = theta*y[i] + (1-theta)*hs[i]
	}
	sYBar := veclib.Ddot(n, s, 1, yBar, 1)
	if sYBar <= 0 {
		return // skip: even the damped update lost positive definiteness
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := b.h.At(i, j) - hs[i]*hs[j]/sHs + yBar[i]*yBar[j]/sYBar
			b.h.SetSym(i, j, v)
		}
	}
}

// SR1 is the symmetric-rank-1 update, which (unlike BFGS) can represent
// indefinite curvature and is skipped rather than damped when the update
// denominator is too small, following Nocedal & Wright ch. 6.2.
type SR1 struct {
	n   int
	h   *mat.SymDense
	eta float64
}

// NewSR1 creates an SR1 model initialized to the identity.
func NewSR1(n int) *SR1 {
	h := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		h.SetSym(i, i, 1)
	}
	return &SR1{n: n, h: h, eta: 1e-8}
}

func (s *SR1) Current() *mat.SymDense { return s.h }

func (s *SR1) Update(step, y []float64) {
	n := s.n
	hs := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += s.h.At(i, j) * step[j]
		}
		hs[i] = sum
	}
	diff := make([]float64, n)
	for i := range diff {
		diff[i] = y[i] - hs[i]
	}
	denom := veclib.Ddot(n, diff, 1, step, 1)

	// skip if the denominator is too small relative to the vector norms,
	// the standard SR1 safeguard against numerical blow-up.
	if math.Abs(denom) < s.eta*veclib.Dnrm2(n, step, 1)*veclib.Dnrm2(n, diff, 1) {
		return
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.h.SetSym(i, j, s.h.At(i, j)+diff[i]*diff[j]/denom)
		}
	}
}
