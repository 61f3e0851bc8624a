// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "github.com/gosolve/nlp/internal/veclib"

// ResidualNorm selects which norm a caller wants from ConstraintViolation,
// per the residual_norm option documented in spec.md §6.
type ResidualNorm int

const (
	L1 ResidualNorm = iota
	L2
	LInf
)

// ParseResidualNorm maps the residual_norm option's string values
// ("L1", "L2", "LInf") to a ResidualNorm, defaulting to L1 on any other
// value.
func ParseResidualNorm(s string) ResidualNorm {
	switch s {
	case "L2":
		return L2
	case "LInf":
		return LInf
	default:
		return L1
	}
}

// SignedViolations returns, for each constraint, the signed bound
// violation of c: negative when c is below its lower bound, positive when
// c is above its upper bound, zero when c is within bounds. Callers use
// the sign to partition constraints by which side was violated (see
// iterate.NewConstraintPartition).
func SignedViolations(p Problem, c []float64) []float64 {
	out := make([]float64, len(c))
	for j, v := range c {
		b := p.ConstraintBounds(j)
		switch {
		case v < b.Lower:
			out[j] = v - b.Lower
		case v > b.Upper:
			out[j] = v - b.Upper
		}
	}
	return out
}

// ConstraintViolation computes the requested norm of the bound violation
// of c against p's constraint bounds, optionally restricted to subset (nil
// means every constraint). A component within its bounds contributes zero.
func ConstraintViolation(p Problem, c []float64, norm ResidualNorm, subset []int) float64 {
	indices := subset
	if indices == nil {
		indices = make([]int, len(c))
		for j := range c {
			indices[j] = j
		}
	}
	v := make([]float64, len(indices))
	for k, j := range indices {
		b := p.ConstraintBounds(j)
		switch {
		case c[j] < b.Lower:
			v[k] = b.Lower - c[j]
		case c[j] > b.Upper:
			v[k] = c[j] - b.Upper
		}
	}
	switch norm {
	case L2:
		return veclib.Dnrm2(len(v), v, 1)
	case LInf:
		return veclib.Damax(len(v), v, 1)
	default:
		return veclib.Dasum(len(v), v, 1)
	}
}
