// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "math"

// Scaling holds the per-objective and per-constraint scale factors computed
// once during preprocessing and then frozen for the remainder of the solve:
// the driver never re-scales across major iterations (see DESIGN.md, Open
// Question (c)).
type Scaling struct {
	Objective   float64
	Constraints []float64
}

// NewScaling computes gradient-based scale factors from the Jacobian rows
// and the objective gradient evaluated at the starting point, following the
// common "divide by the largest gradient row entry, capped at 1" rule: a
// constraint or the objective whose gradient is already small in magnitude
// is left unscaled (factor 1), while one with a very large gradient is
// scaled down so that its row has unit-ish sensitivity.
func NewScaling(objGrad []float64, jac SparseMatrix, numConstraints int) *Scaling {
	s := &Scaling{Objective: 1, Constraints: make([]float64, numConstraints)}
	for i := range s.Constraints {
		s.Constraints[i] = 1
	}

	if maxAbs := maxAbsEntry(objGrad); maxAbs > 1 {
		s.Objective = 1 / maxAbs
	}
	for j, row := range jac {
		if j < 0 || j >= numConstraints {
			continue
		}
		maxAbs := 0.0
		for _, v := range row {
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
		if maxAbs > 1 {
			s.Constraints[j] = 1 / maxAbs
		}
	}
	return s
}

func maxAbsEntry(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// ScaleObjective applies the frozen objective scale factor to f.
func (s *Scaling) ScaleObjective(f float64) float64 {
	if s == nil {
		return f
	}
	return s.Objective * f
}

// ScaleConstraint applies the frozen scale factor for constraint j to
// value.
func (s *Scaling) ScaleConstraint(j int, value float64) float64 {
	if s == nil || j >= len(s.Constraints) {
		return value
	}
	return s.Constraints[j] * value
}
