// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strategy

import "testing"

func TestFilterInsertDominates(t *testing.T) {
	fl := NewFilter(1.0)
	fl.Insert(0.5, 2.0, 0)

	if !fl.Dominates(0.6, 2.5, 0) {
		t.Fatalf("expected (0.6, 2.5) to be dominated by stored (0.5, 2.0)")
	}
	if fl.Dominates(0.3, 1.0, 0) {
		t.Fatalf("did not expect (0.3, 1.0) to be dominated")
	}
}

func TestFilterInsertPrunesDominated(t *testing.T) {
	fl := NewFilter(1.0)
	fl.Insert(1.0, 5.0, 0)
	fl.Insert(0.2, 1.0, 0) // dominates the first entry outright

	if len(fl.entries) != 1 || fl.entries[0] != (pair{H: 0.2, F: 1.0}) {
		t.Fatalf("stale dominated entry (1.0, 5.0) should have been pruned, entries = %v", fl.entries)
	}
	if !fl.Dominates(0.3, 2.0, 0) {
		t.Fatalf("expected (0.3, 2.0) to be dominated by (0.2, 1.0)")
	}
}

func TestFilterResetClearsEntries(t *testing.T) {
	fl := NewFilter(1.0)
	fl.Insert(0.5, 2.0, 0)
	fl.Reset()

	if fl.Dominates(0.5, 2.0, 0) {
		t.Fatalf("expected Reset to clear stored entries")
	}
	if fl.HMax != filterUpperBoundFloor {
		t.Fatalf("HMax = %v, want floor %v after Reset", fl.HMax, filterUpperBoundFloor)
	}
}

func TestFilterMinH(t *testing.T) {
	fl := NewFilter(1.0)
	if got := fl.MinH(); got < 1e300 {
		t.Fatalf("MinH on empty filter = %v, want +Inf", got)
	}
	fl.Insert(0.4, 1.0, 0)
	fl.Insert(0.1, 3.0, 0)
	if got := fl.MinH(); got != 0.1 {
		t.Fatalf("MinH = %v, want 0.1", got)
	}
}
