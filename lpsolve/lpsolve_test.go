// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpsolve

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSimplexSolverBoundsOnly(t *testing.T) {
	p := &Problem{
		C:     []float64{1, 1},
		Lower: []float64{0, 0},
		Upper: []float64{5, 5},
	}
	r, err := SimplexSolver{}.Solve(p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if r.Status != StatusOptimal {
		t.Fatalf("status = %v, want StatusOptimal", r.Status)
	}
	if math.Abs(r.Optimum) > 1e-9 {
		t.Fatalf("optimum = %v, want 0", r.Optimum)
	}
}

func TestSimplexSolverWithEqualityConstraint(t *testing.T) {
	// minimize x1 subject to x1+x2 = 4, 0 <= x1,x2 <= 10.
	a := mat.NewDense(1, 2, []float64{1, 1})
	p := &Problem{
		C:     []float64{1, 0},
		AEq:   a,
		BEq:   []float64{4},
		Lower: []float64{0, 0},
		Upper: []float64{10, 10},
	}
	r, err := SimplexSolver{}.Solve(p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if r.Status != StatusOptimal {
		t.Fatalf("status = %v, want StatusOptimal", r.Status)
	}
	if math.Abs(r.X[0]) > 1e-6 {
		t.Fatalf("x1 = %v, want 0", r.X[0])
	}
	if math.Abs(r.X[1]-4) > 1e-6 {
		t.Fatalf("x2 = %v, want 4", r.X[1])
	}
}

func TestSimplexSolverRejectsUnboundedBelowVariable(t *testing.T) {
	p := &Problem{
		C:     []float64{1, 1},
		Lower: []float64{math.Inf(-1), 0},
		Upper: []float64{5, 5},
	}
	if _, err := (SimplexSolver{}).Solve(p); err == nil {
		t.Fatalf("expected an error for a variable with no finite lower bound")
	}
}
