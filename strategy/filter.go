// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strategy

import "math"

// filterUpperBoundFloor bounds h_max away from zero at initialization, the
// same floor Fletcher & Leyffer's filterSQP uses so a nearly feasible
// starting point does not leave the filter with no room to accept any
// infeasible trial.
const filterUpperBoundFloor = 1e4

// pair is one (infeasibility, objective) entry in a Filter.
type pair struct{ H, F float64 }

// Filter is the Pareto-dominance memory over (h,f) pairs described in
// spec.md §3/§4.4.a: no stored pair dominates another, and h_max is a
// non-decreasing envelope on acceptable infeasibility.
type Filter struct {
	entries []pair
	HMax    float64
}

// NewFilter creates an empty filter with h_max seeded from the starting
// infeasibility.
func NewFilter(initialInfeasibility float64) *Filter {
	return &Filter{HMax: math.Max(filterUpperBoundFloor, 10*initialInfeasibility)}
}

// Dominates reports whether the filter already holds a pair (h_i,f_i) with
// h_i <= h and f_i <= f+margin*h_i, the rejection test of spec.md §4.4.a.
func (fl *Filter) Dominates(h, f, margin float64) bool {
	for _, e := range fl.entries {
		if e.H <= h && e.F <= f+margin*e.H {
			return true
		}
	}
	return false
}

// Insert augments (h,f) by margin and adds it to the filter, removing every
// pair the augmented entry dominates, and grows h_max to at least h.
func (fl *Filter) Insert(h, f, margin float64) {
	ah, af := h-margin*h, f-margin*h
	kept := fl.entries[:0]
	for _, e := range fl.entries {
		if ah <= e.H && af <= e.F {
			continue // dominated by the new entry, drop it
		}
		kept = append(kept, e)
	}
	fl.entries = append(kept, pair{H: ah, F: af})
	if h > fl.HMax {
		fl.HMax = h
	}
}

// Reset empties the filter's contents and collapses h_max back to its
// floor, matching Strategy.Reset's "clear all acceptance history"
// contract.
func (fl *Filter) Reset() {
	fl.entries = fl.entries[:0]
	fl.HMax = filterUpperBoundFloor
}

// MinH returns the smallest infeasibility currently stored, or +Inf for an
// empty filter, used by the restoration-termination testable property.
func (fl *Filter) MinH() float64 {
	m := math.Inf(1)
	for _, e := range fl.entries {
		if e.H < m {
			m = e.H
		}
	}
	return m
}
