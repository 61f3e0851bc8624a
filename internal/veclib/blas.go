// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package veclib provides the small set of BLAS-level vector kernels the
// solver's active-set QP code is built on. It exists so that qpsolve,
// hessianmodel, model and iterate share one strided-vector implementation
// instead of each rolling their own loops.
package veclib

import "math"

// Daxpy computes dy += da*dx over n elements with strides incx/incy.
func Daxpy(n int, da float64, dx []float64, incx int, dy []float64, incy int) {
	if n <= 0 || da == 0 {
		return
	}
	if incx == 1 && incy == 1 {
		for i := 0; i < n; i++ {
			dy[i] += da * dx[i]
		}
		return
	}
	ix, iy := 0, 0
	for i := 0; i < n; i++ {
		dy[iy] += da * dx[ix]
		ix += incx
		iy += incy
	}
}

// Ddot computes the dot product of dx and dy over n elements.
func Ddot(n int, dx []float64, incx int, dy []float64, incy int) float64 {
	if n <= 0 {
		return 0
	}
	var dot float64
	if incx == 1 && incy == 1 {
		for i := 0; i < n; i++ {
			dot += dx[i] * dy[i]
		}
		return dot
	}
	ix, iy := 0, 0
	for i := 0; i < n; i++ {
		dot += dx[ix] * dy[iy]
		ix += incx
		iy += incy
	}
	return dot
}

// Dcopy copies n elements of dx into dy.
func Dcopy(n int, dx []float64, incx int, dy []float64, incy int) {
	if n <= 0 {
		return
	}
	if incx == 1 && incy == 1 {
		copy(dy[:n], dx[:n])
		return
	}
	ix, iy := 0, 0
	for i := 0; i < n; i++ {
		dy[iy] = dx[ix]
		ix += incx
		iy += incy
	}
}

// Dscal scales n elements of dx by da in place.
func Dscal(n int, da float64, dx []float64, incx int) {
	if n <= 0 || incx <= 0 {
		return
	}
	ix := 0
	for i := 0; i < n; i++ {
		dx[ix] *= da
		ix += incx
	}
}

// Dzero fills dx with zero.
func Dzero(dx []float64) {
	for i := range dx {
		dx[i] = 0
	}
}

// Dnrm2 computes the Euclidean (L2) norm of x, scaled to avoid overflow.
func Dnrm2(n int, x []float64, incx int) float64 {
	if n < 1 || incx < 1 {
		return 0
	}
	if n == 1 {
		return math.Abs(x[0])
	}
	scale, ssq := 0.0, 1.0
	ix := 0
	for i := 0; i < n; i++ {
		if axi := math.Abs(x[ix]); axi > 0 {
			if scale < axi {
				r := scale / axi
				ssq = 1 + ssq*r*r
				scale = axi
			} else {
				r := axi / scale
				ssq += r * r
			}
		}
		ix += incx
	}
	return scale * math.Sqrt(ssq)
}

// Dasum computes the L1 norm (sum of absolute values) of x.
// Added relative to the teacher's kernel set to support the
// residual_norm=L1 option used for infeasibility measures.
func Dasum(n int, x []float64, incx int) float64 {
	if n < 1 || incx < 1 {
		return 0
	}
	var sum float64
	ix := 0
	for i := 0; i < n; i++ {
		sum += math.Abs(x[ix])
		ix += incx
	}
	return sum
}

// Damax computes the L-infinity norm (max absolute value) of x.
// Added alongside Dasum for the residual_norm=L_INF option.
func Damax(n int, x []float64, incx int) float64 {
	if n < 1 || incx < 1 {
		return 0
	}
	var m float64
	ix := 0
	for i := 0; i < n; i++ {
		if a := math.Abs(x[ix]); a > m {
			m = a
		}
		ix += incx
	}
	return m
}
