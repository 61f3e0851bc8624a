// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linsolve defines the symmetric-indefinite linear solver contract
// the primal-dual interior-point subproblem relies on, plus a gonum-backed
// default implementation using Bunch-Kaufman factorization.
package linsolve

// Solver factors a symmetric matrix A and solves Ax = b against the
// factorization, exposing the inertia needed to detect a Hessian that is
// not positive definite on the tangent space (triggering regularization in
// the subproblem layer).
type Solver interface {
	// Factorize computes a factorization of the dense symmetric matrix
	// whose lower triangle is given row-major in a, order n. It must be
	// safe to call repeatedly on the same Solver with differently sized
	// matrices: no state may be assumed stable across calls.
	Factorize(n int, a []float64) error

	// Solve returns x solving Ax = b against the most recent
	// factorization.
	Solve(b []float64) ([]float64, error)

	// Inertia reports (positive, negative, zero) eigenvalue counts of the
	// most recently factorized matrix.
	Inertia() (pos, neg, zero int)

	// Singular reports whether the most recent factorization detected an
	// exactly singular matrix.
	Singular() bool
}
