// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "testing"

func TestSymmetricCOOBuilderCoalesces(t *testing.T) {
	b := NewSymmetricCOOBuilder(3)
	b.Insert(2.0, 0, 0)
	b.Insert(3.0, 0, 0)
	b.Insert(1.0, 2, 0)
	b.Insert(4.0, 0, 2) // same coordinate as above, reflected

	m := b.Finalize()
	if got := m[0][0]; got != 5.0 {
		t.Fatalf("diagonal (0,0) = %v, want 5", got)
	}
	if got := m[2][0]; got != 5.0 {
		t.Fatalf("lower-triangle (2,0) = %v, want 5", got)
	}
	if _, ok := m[0][2]; ok {
		t.Fatalf("Finalize should only populate the lower triangle, found (0,2)")
	}
}

func TestSymmetricCOOBuilderReset(t *testing.T) {
	b := NewSymmetricCOOBuilder(2)
	b.Insert(1.0, 0, 0)
	b.Reset()
	b.Insert(7.0, 1, 1)

	m := b.Finalize()
	if _, ok := m[0]; ok {
		t.Fatalf("Reset should have cleared the (0,0) entry")
	}
	if got := m[1][1]; got != 7.0 {
		t.Fatalf("(1,1) = %v, want 7 after Reset+Insert", got)
	}
}

func TestSymmetricCOOBuilderSmallestDiagonalEntry(t *testing.T) {
	b := NewSymmetricCOOBuilder(3)
	b.Insert(5.0, 0, 0)
	b.Insert(-2.0, 1, 1)
	b.Insert(9.0, 1, 0) // off-diagonal, must not count

	if got := b.SmallestDiagonalEntry(); got != -2.0 {
		t.Fatalf("SmallestDiagonalEntry = %v, want -2", got)
	}
}

func TestSparseMatrixSetAndDense(t *testing.T) {
	m := make(SparseMatrix)
	m.Set(0, 1, 4.5)
	d := m.Dense(2, 2)
	if got := d.At(0, 1); got != 4.5 {
		t.Fatalf("Dense()[0][1] = %v, want 4.5", got)
	}
	if got := d.At(1, 0); got != 0 {
		t.Fatalf("Dense()[1][0] = %v, want 0 (absent entry)", got)
	}
}
