// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qpsolve

import (
	"math"

	"github.com/gosolve/nlp/internal/veclib"
)

// nnls (Non-Negative Least Squares) solves min ||Ax - b||_2 subject to x >= 0
// with the active-set method. A is the m x n column-major matrix (no rank
// assumption on A); on return a and b hold the implicit QA and Qb products
// generated by the Householder triangularization. x receives the primal
// solution, w the dual vector (w[j] == 0 for j in the passive set, w[j] <= 0
// for j in the active set at a Kuhn-Tucker point). z and index are scratch
// of length >= m and >= n respectively.
//
// Lawson & Hanson, "Solving Least Squares Problems", ch. 23, algorithm
// NNLS (23.10).
func nnls(m, n int, a []float64, mda int, b, x, w, z []float64, index []int, maxIter int) (float64, mode) {
	const factor = 0.01

	if m <= 0 || n <= 0 || mda < m ||
		len(a) < mda*n || len(b) < m || len(x) < n || len(w) < n || len(z) < m || len(index) < n {
		return math.NaN(), badArgument
	}

	if maxIter <= 0 {
		maxIter = 3 * n
	}

	np := 0 // size of the passive set P
	z1 := 0 // start index of the zero set Z

	index = index[:n]
	for i := range index {
		index[i] = i
	}

	veclib.Dzero(x[:n])

	iter := 0
	term := func() (float64, mode) {
		var rnorm float64
		if np < m {
			rnorm = veclib.Dnrm2(m-np, b[np:], 1)
		} else {
			veclib.Dzero(w[:n])
		}
		if iter > maxIter {
			return rnorm, nnlsExceedMaxIter
		}
		return rnorm, hasSolution
	}

	for {
		if z1 >= n || np >= m {
			return term()
		}

		for _, j := range index[z1:] {
			w[j] = veclib.Ddot(m-np, a[np+mda*j:], 1, b[np:], 1)
		}

		for {
			wmax, izmax := zero, 0
			for i, j := range index[z1:] {
				if w[j] > wmax {
					wmax, izmax = w[j], z1+i
				}
			}

			if wmax <= zero {
				return term()
			}

			iz := izmax
			j := index[iz]
			aj := a[mda*j : mda*j+m : mda*j+m]

			asave := aj[np]
			up := householderGen(np, np+1, m, aj, 1)

			accept := false
			unorm := veclib.Dnrm2(np, aj, 1)
			if math.Abs(aj[np])*factor >= unorm*eps {
				copy(z[:m], b[:m])
				householderApply(np, np+1, m, aj, 1, up, z, 1, 1, 1)
				ztest := z[np] / aj[np]
				accept = ztest > zero
			}

			if !accept {
				aj[np] = asave
				w[j] = zero
				continue
			}

			copy(b[:m], z[:m])

			index[iz] = index[z1]
			index[z1] = j
			z1++
			np++

			if z1 < n {
				for _, jj := range index[z1:] {
					householderApply(np-1, np, m, aj, 1, up, a[jj*mda:], 1, mda, 1)
				}
			}
			if np < m {
				veclib.Dzero(aj[np:m])
			}
			w[j] = zero
			break
		}

		for {
			for ip, jj := np-1, -1; ip >= 0; ip-- {
				if jj >= 0 {
					veclib.Daxpy(ip+1, -z[ip+1], a[jj*mda:], 1, z, 1)
				}
				jj = index[ip]
				z[ip] /= a[ip+jj*mda]
			}

			if iter++; iter > maxIter {
				return term()
			}

			alpha, jj := two, -1
			for ip, l := range index[:np] {
				if z[ip] <= zero {
					t := -x[l] / (z[ip] - x[l])
					if alpha > t {
						alpha, jj = t, ip
					}
				}
			}

			if jj < 0 {
				for ip, idx := range index[:np] {
					x[idx] = z[ip]
				}
				break
			}

			for ip, l := range index[:np] {
				x[l] += alpha * (z[ip] - x[l])
			}

			i := index[jj]
			for {
				x[i] = zero
				if jj++; jj < np {
					for j := jj; j < np; j++ {
						ii := index[j]
						ci := a[ii*mda:]
						index[j-1] = ii
						var cc, ss float64
						cc, ss, ci[j-1] = givensGen(ci[j-1], ci[j])
						ci[j] = zero
						for l := 0; l < n; l++ {
							if l != ii {
								cl := a[l*mda : l*mda+j+1 : l*mda+j+1]
								cl[j-1], cl[j] = givensApply(cc, ss, cl[j-1], cl[j])
							}
						}
						b[j-1], b[j] = givensApply(cc, ss, b[j-1], b[j])
					}
				}

				np--
				z1--
				index[z1] = i
				break
			}

			copy(z[:m], b[:m])
		}
	}
}
