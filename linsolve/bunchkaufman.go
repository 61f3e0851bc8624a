// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsolve

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// BunchKaufman is the default Solver, backed by LAPACK's symmetric
// indefinite factorization (Dsytrf/Dsytrs via gonum's lapack64 binding).
// Per the "no lazy global init" resource-model rule, every Factorize call
// allocates its own scratch rather than reusing a buffer across instances
// or across calls on the same instance.
type BunchKaufman struct {
	n        int
	a        []float64
	ipiv     []int
	singular bool
}

// Factorize computes the Bunch-Kaufman factorization of the n x n
// symmetric matrix whose lower triangle is stored row-major in a
// (len(a) == n*n, only the lower triangle is read).
func (bk *BunchKaufman) Factorize(n int, a []float64) error {
	if len(a) != n*n {
		return fmt.Errorf("linsolve: matrix data has length %d, want %d for n=%d", len(a), n*n, n)
	}

	data := make([]float64, n*n)
	copy(data, a)
	sym := blas64.Symmetric{N: n, Stride: n, Data: data, Uplo: blas.Lower}
	ipiv := make([]int, n)

	work := make([]float64, lapack64.Sytrf(sym, ipiv, nil, -1))
	ok := lapack64.Sytrf(sym, ipiv, work, len(work))

	bk.n = n
	bk.a = data
	bk.ipiv = ipiv
	bk.singular = !ok
	return nil
}

// Solve solves Ax = b against the most recent factorization.
func (bk *BunchKaufman) Solve(b []float64) ([]float64, error) {
	if bk.a == nil {
		return nil, fmt.Errorf("linsolve: Solve called before Factorize")
	}
	if len(b) != bk.n {
		return nil, fmt.Errorf("linsolve: rhs has length %d, want %d", len(b), bk.n)
	}
	sym := blas64.Symmetric{N: bk.n, Stride: bk.n, Data: bk.a, Uplo: blas.Lower}
	x := make([]float64, bk.n)
	copy(x, b)
	rhs := blas64.General{Rows: bk.n, Cols: 1, Stride: 1, Data: x}
	lapack64.Sytrs(sym, rhs, bk.ipiv, nil)
	return x, nil
}

// Inertia reports the (positive, negative, zero) eigenvalue counts implied
// by the block-diagonal factor D produced by Bunch-Kaufman: each 1x1 block
// contributes one eigenvalue of its own sign, and each 2x2 block (which
// LAPACK only forms when its determinant is negative) contributes exactly
// one positive and one negative eigenvalue.
func (bk *BunchKaufman) Inertia() (pos, neg, zero int) {
	i := 0
	for i < bk.n {
		p := bk.ipiv[i]
		if p >= 0 {
			d := bk.a[i+bk.n*i]
			switch {
			case d > 0:
				pos++
			case d < 0:
				neg++
			default:
				zero++
			}
			i++
			continue
		}
		// 2x2 block spanning rows i, i+1.
		d11 := bk.a[i+bk.n*i]
		d22 := bk.a[(i+1)+bk.n*(i+1)]
		d21 := bk.a[(i+1)*bk.n+i]
		det := d11*d22 - d21*d21
		if det < 0 {
			pos++
			neg++
		} else if det == 0 {
			zero += 2
		} else if d11+d22 > 0 {
			pos += 2
		} else {
			neg += 2
		}
		i += 2
	}
	return
}

// Singular reports whether Factorize detected an exactly singular matrix.
func (bk *BunchKaufman) Singular() bool { return bk.singular }
