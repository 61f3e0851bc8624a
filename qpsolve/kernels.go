// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qpsolve

import "math"

const (
	zero = 0.0
	one  = 1.0
	two  = 2.0
	four = 4.0
	hun  = 100.0
	eps  = float64(7)/3 - float64(4)/3 - 1.0
)

// sqrtEps is the square root of machine epsilon, used as a relative
// tolerance when the rank-deficient branch of lsei falls back to hfti.
var sqrtEps = math.Sqrt(eps)

// mode reports the outcome of one of the least-squares kernels below.
type mode int

const (
	ok mode = iota
	hasSolution
	badArgument
	nnlsExceedMaxIter
	consIncompatible
	lsiSingularE
	lseiSingularC
	hftiRankDefect
)

// householderGen builds the Householder vector that zeros v[l:m] using
// pivot p, and returns the scalar up needed by householderApply.
//
// Lawson & Hanson, "Solving Least Squares Problems", ch. 10, algorithm H1.
func householderGen(p, l, m int, v []float64, ive int) (up float64) {
	if p < 0 || p >= l || l >= m {
		return 0
	}
	lp, l1, lm := p*ive, l*ive, (m-1)*ive

	maxV := math.Abs(v[lp])
	for j := l1; j <= lm; j += ive {
		maxV = math.Max(math.Abs(v[j]), maxV)
	}
	if maxV <= zero {
		return 0
	}

	invV := one / maxV
	sumV := (v[lp] * invV) * (v[lp] * invV)
	for j := l1; j <= lm; j += ive {
		sumV += (v[j] * invV) * (v[j] * invV)
	}

	s := maxV * math.Sqrt(sumV)
	if v[lp] > zero {
		s = -s
	}
	up = v[lp] - s
	v[lp] = s
	return up
}

// householderApply applies the Householder transform built by
// householderGen to ncv column vectors packed in c.
func householderApply(p, l, m int, u []float64, iue int, up float64, c []float64, ice, icv, ncv int) {
	if p < 0 || p >= l || l >= m || ncv <= 0 {
		return
	}
	b := u[p*iue] * up
	if b >= zero {
		return
	}
	b = one / b

	l1, lm := l*iue, (m-1)*iue
	base := ice * p
	incr := ice * (l - p)

	for j := base; j < base+icv*ncv; j += icv {
		c1 := j + incr
		sm := c[j] * up
		for iu, ic := l1, c1; iu <= lm; iu, ic = iu+iue, ic+ice {
			sm += c[ic] * u[iu]
		}
		if sm != zero {
			sm *= b
			c[j] += sm * up
			for iu, ic := l1, c1; iu <= lm; iu, ic = iu+iue, ic+ice {
				c[ic] += sm * u[iu]
			}
		}
	}
}

// givensGen computes a 2x2 Givens rotation (c,s) and the resulting norm
// sig such that [c s; -s c] [a;b] = [sig; 0].
func givensGen(a, b float64) (c, s, sig float64) {
	switch {
	case math.Abs(a) > math.Abs(b):
		xr := b / a
		yr := math.Sqrt(1 + xr*xr)
		c = math.Copysign(1/yr, a)
		s = c * xr
		sig = math.Abs(a) * yr
	case b != 0:
		xr := a / b
		yr := math.Sqrt(1 + xr*xr)
		s = math.Copysign(1/yr, b)
		c = s * xr
		sig = math.Abs(b) * yr
	default:
		s = 1
	}
	return
}

// givensApply applies the rotation from givensGen to (x,y).
func givensApply(c, s, x, y float64) (xr, yr float64) {
	return c*x + s*y, -s*x + c*y
}

// rankOneLDLUpdate updates the Cholesky factors (L,D) of a symmetric
// positive-definite matrix A under the rank-one modification A + sigma*z*z^T,
// storing L row-wise with D on its diagonal.
//
// Dieter Kraft, "A Software Package for Sequential Quadratic Programming",
// 1988, section 2.32 (the modified-BFGS update used to keep the SQP
// Hessian approximation positive definite).
func rankOneLDLUpdate(n int, a, z []float64, sigma float64, w []float64) {
	if sigma == zero {
		return
	}
	t := one / sigma
	ij := 0

	if sigma <= zero {
		copy(w, z[:n])
		for i := 0; i < n; i++ {
			v := w[i]
			t += v * v / a[ij]
			for j := i + 1; j < n; j++ {
				ij++
				w[j] -= v * a[ij]
			}
			ij++
		}
		if t >= zero {
			t = eps / sigma
		}
		for j := n - 1; j >= 0; j-- {
			u := w[j]
			w[j] = t
			ij -= n - j
			t -= u * u / a[ij]
		}
	}

	ij = 0
	for i := 0; i < n; i++ {
		v := z[i]
		delta := v / a[ij]

		var tp float64
		if sigma < zero {
			tp = w[i]
		} else {
			tp = t + delta*v
		}

		alpha := tp / t
		a[ij] *= alpha

		if i == n-1 {
			break
		}

		beta := delta / tp
		if alpha > four {
			gamma := t / tp
			for j := i + 1; j < n; j++ {
				ij++
				u := a[ij]
				a[ij] = gamma*u + beta*z[j]
				z[j] -= v * u
			}
		} else {
			for j := i + 1; j < n; j++ {
				ij++
				z[j] -= v * a[ij]
				a[ij] += beta * z[j]
			}
		}
		ij++
		t = tp
	}
}
