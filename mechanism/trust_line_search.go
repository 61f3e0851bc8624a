// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mechanism

import (
	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/model"
)

const defaultTrustLineSearchMaxInner = 20

// TrustLineSearch is the hybrid mechanism of spec.md §4.5.c: an outer loop
// over the trust-region radius with an inner backtracking line search
// alpha in {1, rho, rho^2, ...} at each radius. Exhausting the inner loop
// without the radius itself underflowing is reported distinctly
// (KindIterationOverflow) from a radius that has collapsed below its floor
// (KindRadiusUnderflow), per spec.md §9 open question (b).
type TrustLineSearch struct {
	Relaxation relaxation

	BacktrackingRatio float64
	MinStepLength     float64
	RadiusMin         float64
	RadiusMax         float64
	ActivityEps       float64
	MaxInnerIters     int

	radius float64
}

// NewTrustLineSearch creates a TrustLineSearch over relaxation with the
// spec's default tuning constants.
func NewTrustLineSearch(r relaxation) *TrustLineSearch {
	return &TrustLineSearch{
		Relaxation:        r,
		BacktrackingRatio: defaultBacktrackingRatio,
		MinStepLength:     defaultMinStepLength,
		RadiusMin:         defaultRadiusMin,
		RadiusMax:         defaultRadiusMax,
		ActivityEps:       defaultRadiusActivity,
		MaxInnerIters:     defaultTrustLineSearchMaxInner,
		radius:            defaultRadiusInitial,
	}
}

func (tls *TrustLineSearch) Initialize(problem model.Problem, it *iterate.Iterate) error {
	return tls.Relaxation.Initialize(problem, it)
}

func (tls *TrustLineSearch) Radius() float64 { return tls.radius }

// SetRadius overrides the starting radius, used by the driver factory to
// install the TR_radius option before the first iteration.
func (tls *TrustLineSearch) SetRadius(radius float64) { tls.radius = radius }

func (tls *TrustLineSearch) ComputeAcceptableIterate(problem model.Problem, current *iterate.Iterate) (*iterate.Iterate, float64, error) {
	n := problem.NumVariables()

	for tls.radius >= tls.RadiusMin {
		direction, err := tls.Relaxation.ComputeFeasibleDirection(problem, current, tls.radius)
		if err != nil {
			tls.radius /= 2
			continue
		}

		alpha := 1.0
		innerIters := 0
		for alpha >= tls.MinStepLength && innerIters < tls.MaxInnerIters {
			innerIters++
			trial := trialIterate(problem, current, direction.Primal, n, alpha)
			accepted, err := tls.Relaxation.IsAcceptable(problem, current, trial, direction, alpha)
			if err != nil {
				alpha *= tls.BacktrackingRatio
				continue
			}
			if accepted {
				installDuals(trial, direction)
				atRadius := boundaryVariables(direction, tls.radius, tls.ActivityEps)
				zeroTrustRegionArtifacts(trial, atRadius)
				if err := trial.UpdateResiduals(problem, nil, model.L1, problem.ObjectiveSign()); err != nil {
					return nil, 0, err
				}
				if alpha >= 1 && direction.NormInf() >= tls.radius-tls.ActivityEps {
					tls.radius *= 2
					if tls.radius > tls.RadiusMax {
						tls.radius = tls.RadiusMax
					}
				}
				return trial, direction.Norm * alpha, nil
			}
			alpha *= tls.BacktrackingRatio
		}

		if alpha < tls.MinStepLength {
			// Inner line search underflowed: shrink the radius and reset
			// alpha, per spec.md §4.5.c.
			tls.radius /= 2
			continue
		}
		if innerIters >= tls.MaxInnerIters {
			if tls.radius/2 < tls.RadiusMin {
				return nil, 0, &StepFailure{Kind: KindIterationOverflow}
			}
			tls.radius /= 2
			continue
		}
	}
	return nil, 0, &StepFailure{Kind: KindRadiusUnderflow}
}
