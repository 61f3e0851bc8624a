// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qpsolve

import (
	"math"

	"github.com/gosolve/nlp/internal/veclib"
)

// hfti (Householder Forward Triangulation with column Interchanges) solves
// the possibly rank-deficient linear least squares problem A X ~ B by
// Householder triangulation with column pivoting followed by a forward
// triangulation of the rank-k leading block.
//
// Lawson & Hanson, "Solving Least Squares Problems", ch. 14, algorithm
// HFTI. tau is the absolute pivoting tolerance used to decide the
// pseudo-rank; norm receives the residual norm of each right-hand-side
// column; h, g, ip are caller-supplied scratch, h of length >= n and g, ip
// of length >= min(m,n).
func hfti(a []float64, mda, m, n int, b []float64, mdb, nb int, tau float64, norm, h, g []float64, ip []int) int {
	diag := min(m, n)
	if diag <= 0 {
		return 0
	}

	hmax := zero
	for j := 0; j < diag; j++ {
		lmax := j
		if j > 0 {
			v := math.Inf(-1)
			for l := j; l < n; l++ {
				t := a[(j-1)+mda*l]
				h[l] -= t * t
				if h[l] > v {
					lmax, v = l, h[l]
				}
			}
		}
		if j == 0 || factorHFTI*h[lmax] < hmax*eps {
			v := math.Inf(-1)
			for l := j; l < n; l++ {
				sm := zero
				for _, t := range a[j+mda*l : m+mda*l] {
					sm += t * t
				}
				h[l] = sm
				if h[l] > v {
					lmax, v = l, h[l]
				}
			}
			hmax = h[lmax]
		}

		ip[j] = lmax
		if ip[j] != j {
			c1, c2 := a[mda*j:mda*j+m], a[mda*lmax:mda*lmax+m]
			for i := 0; i < m; i++ {
				c1[i], c2[i] = c2[i], c1[i]
			}
			h[lmax] = h[j]
		}

		i := min(j+1, n-1)
		h[j] = householderGen(j, j+1, m, a[mda*j:], 1)
		householderApply(j, j+1, m, a[mda*j:], 1, h[j], a[mda*i:], 1, mda, n-j-1)
		householderApply(j, j+1, m, a[mda*j:], 1, h[j], b, 1, mdb, nb)
	}

	k := diag
	for j := 0; j < diag; j++ {
		if math.Abs(a[j+mda*j]) <= tau {
			k = j
			break
		}
	}

	for jb := 0; jb < nb; jb++ {
		sm := zero
		if k < m {
			for _, t := range b[mdb*jb+k : mdb*jb+m] {
				sm += t * t
			}
		}
		norm[jb] = math.Sqrt(sm)
	}

	if k > 0 {
		if k < n {
			for i := k - 1; i >= 0; i-- {
				g[i] = householderGen(i, k, n, a[i:], mda)
				householderApply(i, k, n, a[i:], mda, g[i], a, mda, 1, i)
			}
		}

		for jb := 0; jb < nb; jb++ {
			cb := b[mdb*jb:]

			for i := k - 1; i >= 0; i-- {
				sm := zero
				for j := i + 1; j < k; j++ {
					sm += a[i+mda*j] * cb[j]
				}
				cb[i] = (cb[i] - sm) / a[i+mda*i]
			}

			if k < n {
				veclib.Dzero(cb[k:n])
				for i := 0; i < k; i++ {
					householderApply(i, k, n, a[i:], mda, g[i], cb, 1, mdb, 1)
				}
			}

			for j := diag - 1; j >= 0; j-- {
				if l := ip[j]; l != j {
					cb[l], cb[j] = cb[j], cb[l]
				}
			}
		}
	} else if nb > 0 {
		for jb := 0; jb < nb; jb++ {
			veclib.Dzero(b[mdb*jb : mdb*jb+n])
		}
	}

	return k
}

const factorHFTI = 0.001
