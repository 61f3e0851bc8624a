// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qpsolve

import (
	"math"

	"github.com/gosolve/nlp/internal/veclib"
)

// ldp (Least Distance Programming) solves min ||x||_2 subject to Gx >= h by
// reduction to nnls on the augmented system A = [G:h]^T, b = [0...0:1]; see
// Lawson & Hanson, "Solving Least Squares Problems", ch. 23, algorithm LDP
// (23.27). w receives the Lagrange multipliers of the inequality constraints
// in w[:m]; jw is NNLS index scratch of length >= m.
func ldp(m, n int, g []float64, mdg int, h, x, w []float64, jw []int, maxIter int) (xnorm float64, md mode) {
	if n <= 0 {
		return math.NaN(), badArgument
	}
	if m <= 0 {
		return 0, ok
	}

	if m > mdg || mdg*n > len(g) || m > len(h) || n > len(x) || (n+1)*(m+2)+2*m > len(w) || m > len(jw) {
		panic("bound check error")
	}

	iw := 0
	a := w[iw : iw+m*(n+1)]
	iw += len(a)
	b := w[iw : iw+(n+1)]
	iw += len(b)
	z := w[iw : iw+(n+1)]
	iw += len(z)
	u := w[iw : iw+m]
	iw += len(u)
	dv := w[iw : iw+m]

	for j := 0; j < m; j++ {
		veclib.Dcopy(n, g[j:], mdg, a[j*(n+1):], 1)
		a[j*(n+1)+n] = h[j]
	}

	veclib.Dzero(b[:n])
	b[n] = one

	var rnorm float64
	rnorm, md = nnls(n+1, m, a, n+1, b, u, dv, z, jw, maxIter)

	var fac float64
	if md == hasSolution {
		if rnorm <= zero {
			md = consIncompatible
		} else {
			fac = one - veclib.Ddot(m, h, 1, u, 1)
			if math.IsNaN(fac) || fac < eps {
				md = consIncompatible
			}
		}
	}
	if md != hasSolution {
		return math.NaN(), md
	}

	fac = one / fac
	for j := 0; j < n; j++ {
		x[j] = veclib.Ddot(m, g[mdg*j:], 1, u, 1) * fac
	}

	for j := 0; j < m; j++ {
		w[j] = u[j] * fac
	}

	xnorm = veclib.Dnrm2(n, x, 1)
	return
}
