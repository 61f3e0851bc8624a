// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strategy

import "math"

// Tuning constants for the switching condition and the Armijo-type
// sufficient-decrease test, per spec.md §4.4.a. Sigma and Delta are fixed
// algorithmic constants (not exposed in the option map); Beta and Gamma
// are overridable via solver.Options' filter_Beta/filter_Gamma keys.
const (
	defaultSwitchingSigma = 1e-4
	defaultSwitchingDelta = 1.0
	defaultBeta           = 0.99999
	defaultGamma          = 1e-5
)

// FilterStrategy is the filter globalization strategy: Pareto dominance in
// (infeasibility, objective) with a switching condition between f-type and
// h-type steps.
type FilterStrategy struct {
	filter *Filter

	Sigma float64 // switching-condition sufficient-reduction constant
	Delta float64 // switching-condition exponent threshold
	Beta  float64 // envelope shrink factor
	Gamma float64 // f-margin / insertion margin
	Eta   float64 // Armijo decrease fraction for f-type steps
}

// NewFilterStrategy creates a FilterStrategy with the spec's default
// tuning constants; armijoDecreaseFraction is the solver.Options
// armijo_decrease_fraction value (eta).
func NewFilterStrategy(armijoDecreaseFraction float64) *FilterStrategy {
	return &FilterStrategy{
		filter: NewFilter(0),
		Sigma:  defaultSwitchingSigma,
		Delta:  defaultSwitchingDelta,
		Beta:   defaultBeta,
		Gamma:  defaultGamma,
		Eta:    armijoDecreaseFraction,
	}
}

func (fs *FilterStrategy) Initialize(current Progress) {
	fs.filter = NewFilter(current.Infeasibility)
}

func (fs *FilterStrategy) Reset() {
	fs.filter.Reset()
}

func (fs *FilterStrategy) Notify(current Progress) {
	fs.filter.Insert(current.Infeasibility, current.Objective, 0)
}

// CheckAcceptance implements spec.md §4.4.a: reject against the envelope
// and the stored dominance set; on the switching condition, require an
// Armijo decrease on f alone (filter left unaugmented); otherwise require
// non-domination and insert the augmented trial pair.
func (fs *FilterStrategy) CheckAcceptance(current, trial Progress, predictedReduction, sigma float64) bool {
	h, f := current.Infeasibility, current.Objective
	hTrial, fTrial := trial.Infeasibility, trial.Objective

	if hTrial > fs.Beta*fs.filter.HMax {
		return false
	}
	if fs.filter.Dominates(hTrial, fTrial, fs.Gamma) {
		return false
	}

	switching := sigma*predictedReduction >= fs.Sigma*math.Pow(h, fs.Delta) && sigma*predictedReduction > 0
	if switching {
		return fTrial <= f-fs.Eta*sigma*predictedReduction
	}

	fs.filter.Insert(h, f, fs.Gamma)
	return true
}

// WouldAccept reports whether trial would pass the filter's rejection
// tests against the current state, without mutating anything: used by
// relax.FeasibilityRestoration's RESTORATION->OPTIMALITY transition check
// (spec.md §9 open question (a), default "on").
func (fs *FilterStrategy) WouldAccept(trial Progress) bool {
	if trial.Infeasibility > fs.Beta*fs.filter.HMax {
		return false
	}
	return !fs.filter.Dominates(trial.Infeasibility, trial.Objective, fs.Gamma)
}
