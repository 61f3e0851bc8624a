// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "gonum.org/v1/gonum/mat"

// SparseVector is a sparse vector keyed by variable/constraint index;
// absent keys are implicitly zero.
type SparseVector map[int]float64

// SparseMatrix is a sparse matrix keyed by row then column index; absent
// entries are implicitly zero. Used for constraint Jacobians (general,
// rectangular) and, via SymmetricCOOBuilder, for the Lagrangian Hessian.
type SparseMatrix map[int]map[int]float64

// Set stores value at (row, col), creating the row map if necessary. A
// zero value still occupies an explicit entry, matching the COO builder's
// "insert is never a no-op" semantics below.
func (m SparseMatrix) Set(row, col int, value float64) {
	r := m[row]
	if r == nil {
		r = make(map[int]float64)
		m[row] = r
	}
	r[col] = value
}

// Dense expands m into a dense rows x cols gonum matrix.
func (m SparseMatrix) Dense(rows, cols int) *mat.Dense {
	d := mat.NewDense(rows, cols, nil)
	for i, row := range m {
		for j, v := range row {
			d.Set(i, j, v)
		}
	}
	return d
}

// SymmetricCOOBuilder accumulates (row, col, value) triples for the lower
// triangle of a symmetric matrix the way the original solver's
// COOSymmetricMatrix accumulates Hessian contributions during assembly,
// coalescing duplicate (row, col) pairs by summation in a map instead of
// keeping a growing coordinate list.
type SymmetricCOOBuilder struct {
	dimension int
	entries   map[[2]int]float64
}

// NewSymmetricCOOBuilder creates a builder for a dimension x dimension
// symmetric matrix with no entries yet.
func NewSymmetricCOOBuilder(dimension int) *SymmetricCOOBuilder {
	return &SymmetricCOOBuilder{dimension: dimension, entries: make(map[[2]int]float64)}
}

// Insert adds element to the (row, col) entry, coalescing with any prior
// contribution at the same coordinate. Only the lower triangle (row >= col)
// is meaningful; callers reflecting symmetric contributions should insert
// once per coordinate pair.
func (b *SymmetricCOOBuilder) Insert(element float64, row, col int) {
	if row < col {
		row, col = col, row
	}
	b.entries[[2]int{row, col}] += element
}

// Reset empties the builder, keeping its dimension, for reuse across
// subproblem assemblies without reallocating the backing map.
func (b *SymmetricCOOBuilder) Reset() {
	for k := range b.entries {
		delete(b.entries, k)
	}
}

// SmallestDiagonalEntry returns the smallest value found on the diagonal,
// or 0 if no diagonal entry has been inserted.
func (b *SymmetricCOOBuilder) SmallestDiagonalEntry() float64 {
	smallest, found := 0.0, false
	for k, v := range b.entries {
		if k[0] == k[1] && (!found || v < smallest) {
			smallest, found = v, true
		}
	}
	return smallest
}

// Finalize produces the SparseMatrix (lower triangle only) of the
// accumulated entries.
func (b *SymmetricCOOBuilder) Finalize() SparseMatrix {
	m := make(SparseMatrix)
	for k, v := range b.entries {
		m.Set(k[0], k[1], v)
	}
	return m
}

// Dimension reports the matrix order this builder was created for.
func (b *SymmetricCOOBuilder) Dimension() int { return b.dimension }
