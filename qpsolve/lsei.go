// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qpsolve

import (
	"math"

	"github.com/gosolve/nlp/internal/veclib"
)

// lsei (Least Squares with linear Equality and Inequality constraints)
// solves min ||Ex - f||_2 subject to Cx = d and Gx >= h. E is m x n with no
// rank assumption; C is m1 x n with rank(C) == m1 < n; G is m2 x n.
//
// The equality constraints are eliminated by a Householder triangularization
// of C, reducing the problem to a triangular solve for the constrained
// component of x plus an lsi (or, when there are no inequality constraints,
// an hfti least-squares) solve for the remainder. On return, w[0:mc] holds
// the equality multipliers and w[mc:mc+mg] the inequality multipliers.
//
// Lawson & Hanson, "Solving Least Squares Problems", ch. 20 algorithm
// 20.24 and ch. 23 section 6.
func lsei(c, d, e, f, g, h []float64, lc, mc, le, me, lg, mg, n int, x, w []float64, jw []int, maxIterLs int) (norm float64, md mode) {
	if n < 1 || mc > n {
		return math.NaN(), badArgument
	}

	if n > len(x) || mc > len(x) ||
		mc < 0 || mc > len(c) || mc > len(d) ||
		me < 0 || me > len(e) || me > len(f) ||
		mg < 0 || mg > len(g) || mg > len(h) {
		panic("bound check error")
	}

	l := n - mc
	iw := mc
	ws := w[iw : iw+(l+1)*(mg+2)+2*mg]
	iw += len(ws)
	wp := w[iw : iw+mc]
	iw += len(wp)
	we := w[iw : iw+me*l]
	iw += len(we)
	wf := w[iw : iw+me]
	iw += len(wf)
	wg := w[iw : iw+mg*l]

	if mc > len(wp) || me > len(wf) {
		panic("bound check error")
	}

	// Triangularize C and apply the same Householder factors to E and G.
	for i := 0; i < mc; i++ {
		j := min(i+1, lc-1)
		wp[i] = householderGen(i, i+1, n, c[i:], lc)
		householderApply(i, i+1, n, c[i:], lc, wp[i], c[j:], lc, 1, mc-i-1)
		householderApply(i, i+1, n, c[i:], lc, wp[i], e, le, 1, me)
		householderApply(i, i+1, n, c[i:], lc, wp[i], g, lg, 1, mg)
	}

	// Solve the triangular system for the constrained component of x.
	for i := 0; i < mc; i++ {
		diag := c[i+lc*i]
		if math.Abs(diag) < eps {
			return math.NaN(), lseiSingularC
		}
		x[i] = (d[i] - veclib.Ddot(i, c[i:], lc, x, 1)) / diag
	}

	veclib.Dzero(ws[:mg])

	if mc < n {
		for i := 0; i < me; i++ {
			wf[i] = f[i] - veclib.Ddot(mc, e[i:], le, x, 1)
		}

		if l > 0 {
			if me > len(we) || mg > len(wg) {
				panic("bound check error")
			}
			for i := 0; i < me; i++ {
				veclib.Dcopy(l, e[i+le*mc:], le, we[i:], me)
			}
			for i := 0; i < mg; i++ {
				veclib.Dcopy(l, g[i+lg*mc:], lg, wg[i:], mg)
			}
		}

		if mg > 0 {
			for i := 0; i < mg; i++ {
				h[i] -= veclib.Ddot(mc, g[i:], lg, x, 1)
			}
			norm, md = lsi(we, wf, wg, h, me, me, mg, mg, l, x[mc:n], ws, jw, maxIterLs)
			if mc == 0 {
				return
			}
			if md != hasSolution {
				return math.NaN(), md
			}
			t := veclib.Dnrm2(mc, x, 1)
			norm = math.Sqrt(norm*norm + t*t)
		} else {
			k, t := max(le, n), sqrtEps
			var nrm [1]float64
			rank := hfti(we, me, me, l, wf, k, 1, t, nrm[:], w, w[l:], jw)
			norm = nrm[0]
			veclib.Dcopy(l, wf, 1, x[mc:n], 1)
			if rank != l {
				return norm, hftiRankDefect
			}
		}
	}
	for i := 0; i < me; i++ {
		f[i] = veclib.Ddot(n, e[i:], le, x, 1) - f[i]
	}
	for i := 0; i < mc; i++ {
		d[i] = veclib.Ddot(me, e[i*le:], 1, f, 1) -
			veclib.Ddot(mg, g[i*lg:], 1, ws[:mg], 1)
	}
	for i := mc - 1; i >= 0; i-- {
		householderApply(i, i+1, n, c[i:], lc, wp[i], x, 1, 1, 1)
	}
	for i := mc - 1; i >= 0; i-- {
		j := min(i+1, lc-1)
		w[i] = (d[i] - veclib.Ddot(mc-i-1, c[j+lc*i:], 1, w[j:], 1)) / c[i+lc*i]
	}
	md = hasSolution
	return
}

// lsi (Least Squares with linear Inequality constraints) solves
// min ||Ex - f||_2 subject to Gx >= h, where E is m x n with rank(E) == n,
// by QR-factorizing E and reducing to an ldp problem on the transformed
// variable.
//
// Lawson & Hanson, "Solving Least Squares Problems", ch. 23 section 5.
func lsi(e, f, g, h []float64, le, me, lg, mg, n int, x, w []float64, jw []int, maxIterLs int) (xnorm float64, md mode) {
	if n < 1 {
		return 0, badArgument
	}

	for i := 0; i < n; i++ {
		j := min(i+1, n-1)
		t := householderGen(i, i+1, me, e[i*le:], 1)
		householderApply(i, i+1, me, e[i*le:], 1, t, e[j*le:], 1, le, n-i-1)
		householderApply(i, i+1, me, e[i*le:], 1, t, f, 1, 1, 1)
	}

	for i := 0; i < mg; i++ {
		for j := 0; j < n; j++ {
			diag := e[j+le*j]
			if math.Abs(diag) < eps || math.IsNaN(diag) {
				return math.NaN(), lsiSingularE
			}
			g[i+lg*j] = (g[i+lg*j] - veclib.Ddot(j, g[i:], lg, e[j*le:], 1)) / diag
		}
		h[i] -= veclib.Ddot(n, g[i:], lg, f, 1)
	}

	if xnorm, md = ldp(mg, n, g, lg, h, x, w, jw, maxIterLs); md == hasSolution {
		veclib.Daxpy(n, one, f, 1, x, 1)
		for i := n - 1; i >= 0; i-- {
			j := min(i+1, n-1)
			x[i] = (x[i] - veclib.Ddot(n-i-1, e[i+le*j:], le, x[j:], 1)) / e[i+le*i]
		}
		j := min(n, me-1)
		t := veclib.Dnrm2(me-n, f[j:], 1)
		xnorm = math.Sqrt(xnorm*xnorm + t*t)
	}
	return
}
