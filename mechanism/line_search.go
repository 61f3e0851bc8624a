// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mechanism

import (
	"math"

	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/model"
)

const (
	defaultBacktrackingRatio = 0.5
	defaultMinStepLength     = 1e-12
)

// secondOrderCorrector is implemented by a relax.ConstraintRelaxation that
// can re-solve its subproblem about a rejected trial point; LineSearch
// invokes it at most once per major iteration, per spec.md §4.5.a.
type secondOrderCorrector interface {
	ComputeSecondOrderCorrection(problem model.Problem, it *iterate.Iterate, trial []float64) (*iterate.Direction, error)
}

// LineSearch is the backtracking globalization mechanism of spec.md
// §4.5.a: start alpha at 1 and shrink by BacktrackingRatio until
// acceptance or alpha underflows MinStepLength.
type LineSearch struct {
	Relaxation relaxation

	BacktrackingRatio float64
	MinStepLength     float64
}

// NewLineSearch creates a LineSearch over relaxation with the spec's
// default backtracking ratio.
func NewLineSearch(r relaxation) *LineSearch {
	return &LineSearch{Relaxation: r, BacktrackingRatio: defaultBacktrackingRatio, MinStepLength: defaultMinStepLength}
}

func (ls *LineSearch) Initialize(problem model.Problem, it *iterate.Iterate) error {
	return ls.Relaxation.Initialize(problem, it)
}

func (ls *LineSearch) ComputeAcceptableIterate(problem model.Problem, current *iterate.Iterate) (*iterate.Iterate, float64, error) {
	direction, err := ls.Relaxation.ComputeFeasibleDirection(problem, current, math.Inf(1))
	if err != nil {
		return nil, 0, err
	}

	n := problem.NumVariables()
	socUsed := false
	alpha := 1.0
	for alpha >= ls.MinStepLength {
		trial := trialIterate(problem, current, direction.Primal, n, alpha)
		accepted, err := ls.Relaxation.IsAcceptable(problem, current, trial, direction, alpha)
		if err != nil {
			alpha *= ls.BacktrackingRatio
			continue
		}
		if accepted {
			zeroTrustRegionArtifacts(trial, nil)
			installDuals(trial, direction)
			if err := trial.UpdateResiduals(problem, nil, model.L1, problem.ObjectiveSign()); err != nil {
				return nil, 0, err
			}
			return trial, direction.Norm * alpha, nil
		}

		if !direction.IsRelaxed && !socUsed {
			socUsed = true
			if soc, ok := ls.Relaxation.(secondOrderCorrector); ok {
				if corrected, err := soc.ComputeSecondOrderCorrection(problem, current, direction.Primal); err == nil {
					correctedTrial := trialIterate(problem, current, corrected.Primal, n, 1)
					if ok2, err := ls.Relaxation.IsAcceptable(problem, current, correctedTrial, corrected, 1); err == nil && ok2 {
						zeroTrustRegionArtifacts(correctedTrial, nil)
						installDuals(correctedTrial, corrected)
						if err := correctedTrial.UpdateResiduals(problem, nil, model.L1, problem.ObjectiveSign()); err != nil {
							return nil, 0, err
						}
						return correctedTrial, corrected.Norm, nil
					}
				}
			}
		}

		alpha *= ls.BacktrackingRatio
	}
	return nil, 0, &StepFailure{Kind: KindStepUnderflow}
}

// trialIterate builds the candidate x + alpha*d[:n] as a fresh Iterate
// sharing current's multipliers (the direction's duals are installed by
// the caller once the trial is accepted).
func trialIterate(problem model.Problem, current *iterate.Iterate, d []float64, n int, alpha float64) *iterate.Iterate {
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = current.X[i]
		if i < len(d) {
			x[i] += alpha * d[i]
		}
	}
	trial := iterate.NewIterate(x, problem.NumConstraints())
	trial.SetScaling(current.Scaling())
	trial.SetCounters(current.Counters())
	copy(trial.Lambda, current.Lambda)
	for k, v := range current.ZLower {
		trial.ZLower[k] = v
	}
	for k, v := range current.ZUpper {
		trial.ZUpper[k] = v
	}
	return trial
}

// installDuals copies a solved direction's reconstructed multipliers onto
// the trial iterate that is about to be accepted; direction.Lambda/ZLower/
// ZUpper are nil for subproblem variants that do not reconstruct duals
// (LP) or for a non-optimal solve, in which case trial keeps whatever it
// inherited from current via trialIterate.
func installDuals(trial *iterate.Iterate, direction *iterate.Direction) {
	if direction.Lambda != nil {
		copy(trial.Lambda, direction.Lambda)
	}
	if direction.ZLower != nil {
		trial.ZLower = direction.ZLower
	}
	if direction.ZUpper != nil {
		trial.ZUpper = direction.ZUpper
	}
}

// zeroTrustRegionArtifacts clears bound multipliers for variables that
// landed on a trust-region face rather than a true active set, per
// spec.md §4.5's "zero bound multipliers whose variable hit +-radius on
// return" rule. atRadius is nil for line search, which has no radius.
func zeroTrustRegionArtifacts(trial *iterate.Iterate, atRadius map[int]bool) {
	for i := range atRadius {
		delete(trial.ZLower, i)
		delete(trial.ZUpper, i)
	}
}
