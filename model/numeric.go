// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "github.com/gosolve/nlp/numdiff"

// NumericEvaluator adapts a value-only function into a full Evaluator by
// estimating its gradient and Hessian with numdiff's finite-difference
// approximations. Use it for a Model that cannot supply analytic
// derivatives; every other Evaluator in this package computes its
// derivatives directly instead.
type NumericEvaluator struct {
	Fn     func(x []float64) (float64, error)
	Bounds []Bound // optional; limits the finite-difference stencil
}

// NewNumericEvaluator wraps fn as an Evaluator whose Gradient and Hessian
// are estimated by central differences.
func NewNumericEvaluator(fn func(x []float64) (float64, error), bounds []Bound) *NumericEvaluator {
	return &NumericEvaluator{Fn: fn, Bounds: bounds}
}

func (e *NumericEvaluator) Value(x []float64) (float64, error) { return e.Fn(x) }

func (e *NumericEvaluator) numdiffBounds(n int) []numdiff.Bound {
	if e.Bounds == nil {
		return nil
	}
	b := make([]numdiff.Bound, n)
	for i, bd := range e.Bounds {
		b[i] = numdiff.Bound{bd.Lower, bd.Upper}
	}
	return b
}

func (e *NumericEvaluator) Gradient(x []float64) ([]float64, error) {
	n := len(x)
	var evalErr error
	obj := func(xi, y []float64) {
		v, err := e.Fn(xi)
		if err != nil {
			evalErr = err
			return
		}
		y[0] = v
	}
	spec := &numdiff.ApproxSpec{N: n, M: 1, Object: obj, Method: numdiff.Central, Bounds: e.numdiffBounds(n)}
	grad := make([]float64, n)
	x0 := append([]float64(nil), x...)
	if err := spec.Diff(x0, grad); err != nil {
		return nil, err
	}
	if evalErr != nil {
		return nil, evalErr
	}
	return grad, nil
}

// Hessian estimates the Hessian by differencing the (itself numerically
// estimated) gradient, symmetrizing the result since two independent
// finite-difference passes need not agree to machine precision.
func (e *NumericEvaluator) Hessian(x []float64) (SparseMatrix, error) {
	n := len(x)
	var evalErr error
	obj := func(xi, y []float64) {
		g, err := e.Gradient(xi)
		if err != nil {
			evalErr = err
			return
		}
		copy(y, g)
	}
	spec := &numdiff.ApproxSpec{N: n, M: n, Object: obj, Method: numdiff.Central, Bounds: e.numdiffBounds(n)}
	diff := make([]float64, n*n)
	x0 := append([]float64(nil), x...)
	if err := spec.Diff(x0, diff); err != nil {
		return nil, err
	}
	if evalErr != nil {
		return nil, evalErr
	}
	h := make(SparseMatrix)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			// diff[i+j*n] = d(grad_j)/d(x_i); average the two
			// finite-difference estimates of the (i,j) mixed partial.
			h.Set(i, j, 0.5*(diff[i+j*n]+diff[j+i*n]))
		}
	}
	return h, nil
}
