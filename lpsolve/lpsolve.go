// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lpsolve defines the external LP solver contract used by the LP
// subproblem variant, plus a default implementation backed by gonum's
// simplex solver.
package lpsolve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Status mirrors qpsolve.Status for the LP case, kept as its own type so
// lpsolve has no dependency on qpsolve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
)

// Problem is a standard-form-free LP: min c^T x subject to AEq*x = bEq,
// Lower <= x <= Upper. Inequality rows are expressed by the caller as
// AEq/bEq after slack-variable introduction, matching how subproblem
// assembles the linearized constraint system.
type Problem struct {
	C     []float64
	AEq   *mat.Dense
	BEq   []float64
	Lower []float64
	Upper []float64
}

// Result is the solution of a Problem.
type Result struct {
	X       []float64
	Optimum float64
	Status  Status
}

// Solver solves a Problem.
type Solver interface {
	Solve(p *Problem) (*Result, error)
}

// SimplexSolver is the default Solver, backed by
// gonum.org/v1/gonum/optimize/convex/lp.Simplex. Each variable is shifted
// by its (finite) lower bound, and each finite upper bound adds one extra
// row x_i + s_i = upper - lower with slack s_i >= 0, since lp.Simplex only
// accepts the standard form min c^T x s.t. Ax = b, x >= 0.
type SimplexSolver struct{}

func (SimplexSolver) Solve(p *Problem) (*Result, error) {
	n := len(p.C)
	rowsEq := 0
	if p.AEq != nil {
		rowsEq, _ = p.AEq.Dims()
	}

	// Shift each variable by its lower bound (assumed finite; unbounded
	// lower bounds are rejected here rather than silently mishandled,
	// since lp.Simplex has no native support for x >= -Inf).
	shift := make([]float64, n)
	width := make([]float64, n)
	for i := 0; i < n; i++ {
		if p.Lower[i] == negInf {
			return nil, fmt.Errorf("lpsolve: variable %d has no finite lower bound, required by the simplex standard form", i)
		}
		shift[i] = p.Lower[i]
		width[i] = p.Upper[i] - p.Lower[i]
	}

	// Extra rows: x_i + s_i = width_i, s_i >= 0, for every variable with a
	// finite upper bound.
	extra := 0
	for _, w := range width {
		if w != posInf {
			extra++
		}
	}

	totalCols := n + extra
	totalRows := rowsEq + extra
	a := mat.NewDense(totalRows, totalCols, nil)
	b := make([]float64, totalRows)
	c := make([]float64, totalCols)
	copy(c, p.C)

	for i := 0; i < rowsEq; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, p.AEq.At(i, j))
		}
		rhs := p.BEq[i]
		for j := 0; j < n; j++ {
			rhs -= p.AEq.At(i, j) * shift[j]
		}
		b[i] = rhs
	}

	slackCol := n
	for j, w := range width {
		if w == posInf {
			continue
		}
		row := rowsEq + (slackCol - n)
		a.Set(row, j, 1)
		a.Set(row, slackCol, 1)
		b[row] = w
		slackCol++
	}

	_, xOpt, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		return &Result{Status: StatusInfeasible}, nil
	}

	x := make([]float64, n)
	optimum := 0.0
	for i := 0; i < n; i++ {
		x[i] = xOpt[i] + shift[i]
		optimum += p.C[i] * x[i]
	}
	return &Result{X: x, Optimum: optimum, Status: StatusOptimal}, nil
}

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
)
