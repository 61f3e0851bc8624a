// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "testing"

func rosenbrockValue(x []float64) (float64, error) {
	a, b := x[0], x[1]
	return 100*(b-a*a)*(b-a*a) + (1-a)*(1-a), nil
}

func TestNumericEvaluatorGradientMatchesAnalytic(t *testing.T) {
	e := NewNumericEvaluator(rosenbrockValue, nil)
	x := []float64{-1.2, 1.0}
	got, err := e.Gradient(x)
	if err != nil {
		t.Fatalf("Gradient: %v", err)
	}
	a, b := x[0], x[1]
	want := []float64{-400*a*(b-a*a) - 2*(1-a), 200 * (b - a*a)}
	for i := range want {
		if diff := got[i] - want[i]; diff < -1e-4 || diff > 1e-4 {
			t.Fatalf("Gradient()[%d] = %v, want ~%v", i, got[i], want[i])
		}
	}
}

func TestNumericEvaluatorHessianMatchesAnalytic(t *testing.T) {
	e := NewNumericEvaluator(rosenbrockValue, nil)
	x := []float64{-1.2, 1.0}
	got, err := e.Hessian(x)
	if err != nil {
		t.Fatalf("Hessian: %v", err)
	}
	a, b := x[0], x[1]
	want := map[[2]int]float64{
		{0, 0}: 1200*a*a - 400*b + 2,
		{0, 1}: -400 * a,
		{1, 0}: -400 * a,
		{1, 1}: 200,
	}
	for k, w := range want {
		if diff := got[k[0]][k[1]] - w; diff < -1e-2 || diff > 1e-2 {
			t.Fatalf("Hessian()[%d][%d] = %v, want ~%v", k[0], k[1], got[k[0]][k[1]], w)
		}
	}
}

func TestNumericEvaluatorValuePassesThrough(t *testing.T) {
	e := NewNumericEvaluator(rosenbrockValue, nil)
	v, err := e.Value([]float64{1, 1})
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != 0 {
		t.Fatalf("Value(1,1) = %v, want 0", v)
	}
}
