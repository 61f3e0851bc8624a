// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mechanism

import (
	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/model"
)

const (
	defaultRadiusMin      = 1e-16
	defaultRadiusMax      = 1e8
	defaultRadiusInitial  = 1.0
	defaultRadiusActivity = 1e-8
)

// TrustRegion is the trust-region globalization mechanism of spec.md
// §4.5.b: per attempt, pass the current radius to the subproblem, request
// a direction, offer it to acceptance; double the radius on an
// active-boundary acceptance, halve it on rejection or solver failure.
type TrustRegion struct {
	Relaxation relaxation

	RadiusMin     float64
	RadiusMax     float64
	ActivityEps   float64
	radius        float64
}

// NewTrustRegion creates a TrustRegion over relaxation with the spec's
// default radius bounds and initial radius.
func NewTrustRegion(r relaxation) *TrustRegion {
	return &TrustRegion{
		Relaxation:  r,
		RadiusMin:   defaultRadiusMin,
		RadiusMax:   defaultRadiusMax,
		ActivityEps: defaultRadiusActivity,
		radius:      defaultRadiusInitial,
	}
}

func (tr *TrustRegion) Initialize(problem model.Problem, it *iterate.Iterate) error {
	return tr.Relaxation.Initialize(problem, it)
}

// Radius reports the current trust-region radius, used by statistics
// reporting and tests.
func (tr *TrustRegion) Radius() float64 { return tr.radius }

// SetRadius overrides the starting radius, used by the driver factory to
// install the TR_radius option before the first iteration.
func (tr *TrustRegion) SetRadius(radius float64) { tr.radius = radius }

func (tr *TrustRegion) ComputeAcceptableIterate(problem model.Problem, current *iterate.Iterate) (*iterate.Iterate, float64, error) {
	n := problem.NumVariables()
	for tr.radius >= tr.RadiusMin {
		direction, err := tr.Relaxation.ComputeFeasibleDirection(problem, current, tr.radius)
		if err != nil {
			tr.radius /= 2
			continue
		}
		if direction.Status != iterate.Optimal && direction.Status != iterate.Infeasible {
			tr.radius /= 2
			continue
		}

		trial := trialIterate(problem, current, direction.Primal, n, 1)
		accepted, err := tr.Relaxation.IsAcceptable(problem, current, trial, direction, 1)
		if err != nil || !accepted {
			tr.radius /= 2
			continue
		}

		installDuals(trial, direction)
		atRadius := boundaryVariables(direction, tr.radius, tr.ActivityEps)
		zeroTrustRegionArtifacts(trial, atRadius)
		if err := trial.UpdateResiduals(problem, nil, model.L1, problem.ObjectiveSign()); err != nil {
			return nil, 0, err
		}

		if direction.NormInf() >= tr.radius-tr.ActivityEps {
			tr.radius *= 2
			if tr.radius > tr.RadiusMax {
				tr.radius = tr.RadiusMax
			}
		}
		return trial, direction.Norm, nil
	}
	return nil, 0, &StepFailure{Kind: KindRadiusUnderflow}
}

// boundaryVariables flags every original-coordinate component of
// direction.Primal that landed within activityEps of +-radius: these are
// trust-region artifacts, not a true active set.
func boundaryVariables(direction *iterate.Direction, radius, activityEps float64) map[int]bool {
	out := map[int]bool{}
	for i, v := range direction.Primal {
		if v >= radius-activityEps || v <= -radius+activityEps {
			out[i] = true
		}
	}
	return out
}
