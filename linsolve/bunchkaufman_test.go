// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsolve

import "testing"

func TestBunchKaufmanSolvesDiagonalSystem(t *testing.T) {
	var bk BunchKaufman
	a := []float64{2, 0, 0, 3}
	if err := bk.Factorize(2, a); err != nil {
		t.Fatalf("Factorize: %v", err)
	}
	x, err := bk.Solve([]float64{4, 9})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if want := []float64{2, 3}; !almostEqual(x, want, 1e-9) {
		t.Fatalf("x = %v, want %v", x, want)
	}
	if bk.Singular() {
		t.Fatalf("positive definite diagonal matrix should not be reported singular")
	}
}

func TestBunchKaufmanInertiaPositiveDefinite(t *testing.T) {
	var bk BunchKaufman
	a := []float64{2, 0, 0, 3}
	if err := bk.Factorize(2, a); err != nil {
		t.Fatalf("Factorize: %v", err)
	}
	pos, neg, zero := bk.Inertia()
	if pos != 2 || neg != 0 || zero != 0 {
		t.Fatalf("Inertia = (%d,%d,%d), want (2,0,0)", pos, neg, zero)
	}
}

func TestBunchKaufmanInertiaIndefinite(t *testing.T) {
	var bk BunchKaufman
	a := []float64{1, 0, 0, -1}
	if err := bk.Factorize(2, a); err != nil {
		t.Fatalf("Factorize: %v", err)
	}
	pos, neg, zero := bk.Inertia()
	if pos != 1 || neg != 1 || zero != 0 {
		t.Fatalf("Inertia = (%d,%d,%d), want (1,1,0)", pos, neg, zero)
	}
}

func TestBunchKaufmanSolveBeforeFactorizeErrors(t *testing.T) {
	var bk BunchKaufman
	if _, err := bk.Solve([]float64{1}); err == nil {
		t.Fatalf("expected an error calling Solve before Factorize")
	}
}

func TestBunchKaufmanFactorizeRejectsWrongLength(t *testing.T) {
	var bk BunchKaufman
	if err := bk.Factorize(2, []float64{1, 2, 3}); err == nil {
		t.Fatalf("expected an error for mismatched matrix data length")
	}
}

func almostEqual(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		d := a[i] - b[i]
		if d < -tol || d > tol {
			return false
		}
	}
	return true
}
