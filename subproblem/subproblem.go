// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package subproblem builds and solves the local model (QP, LP, or
// primal-dual interior-point) that a constraint-relaxation strategy turns
// into a Direction each major iteration.
package subproblem

import (
	"math"

	"github.com/gosolve/nlp/hessianmodel"
	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/model"
)

// PredictedReduction is a cheap, callable model of predicted decrease for
// a given direction, parameterized by sigma and step length alpha without
// recomputing the quadratic term. Subproblem.GeneratePredictedReduction
// returns one of these per solved Direction.
type PredictedReduction struct {
	Infeasibility func(alpha float64) float64
	Optimality    func(sigma, alpha float64) float64
}

// Subproblem is the capability set every variant (QP, LP, primal-dual
// interior-point) implements.
type Subproblem interface {
	// Initialize perturbs the starting iterate's bounded variables into
	// the strict interior using p = min(k1*max(1,|b|), k2*(ub-lb)).
	Initialize(problem model.Problem, it *iterate.Iterate)

	// CreateCurrentSubproblem assembles the objective gradient, Jacobian,
	// Hessian model and displacement bounds (optionally intersected with
	// a trust-region radius) at the given iterate and sigma.
	CreateCurrentSubproblem(problem model.Problem, it *iterate.Iterate, sigma, trustRegionRadius float64) error

	// BuildObjectiveModel replaces only the objective term, used by the
	// steering rule and restoration without redoing constraint work.
	BuildObjectiveModel(problem model.Problem, it *iterate.Iterate, sigma float64) error

	// Solve produces a Direction from the current subproblem assembly.
	Solve(problem model.Problem, it *iterate.Iterate) (*iterate.Direction, error)

	// GeneratePredictedReduction returns a predicted-reduction model for
	// direction, cheaply re-evaluable at any sigma and alpha.
	GeneratePredictedReduction(problem model.Problem, direction *iterate.Direction) *PredictedReduction
}

// SecondOrderCorrector is implemented by variants that support computing a
// second-order correction on a rejected step to mitigate the Maratos
// effect (see spec.md §4.2 and §8 scenario 5, Filter preset HS14).
type SecondOrderCorrector interface {
	ComputeSecondOrderCorrection(problem model.Problem, it *iterate.Iterate, trial []float64) (*iterate.Direction, error)
}

const (
	perturbK1 = 1e-2
	perturbK2 = 1e-2
)

// perturbInterior pushes x strictly inside [lb,ub] using the rule
// p = min(k1*max(1,|b|), k2*(ub-lb)), shared by every Subproblem variant's
// Initialize.
func perturbInterior(x []float64, bounds func(i int) model.Bound) {
	for i := range x {
		b := bounds(i)
		if math.IsInf(b.Lower, -1) || math.IsInf(b.Upper, 1) || b.Lower == b.Upper {
			continue
		}
		p := math.Min(perturbK1*math.Max(1, math.Abs(b.Lower)), perturbK2*(b.Upper-b.Lower))
		if x[i] < b.Lower+p {
			x[i] = b.Lower + p
		}
		if x[i] > b.Upper-p {
			x[i] = b.Upper - p
		}
	}
}

// hessianModelFor selects the curvature source for a subproblem assembly
// according to the hessian_model option. Each subproblem variant holds one
// hessianmodel.Model per instance. The BFGS and SR1 models start at the
// identity and keep it, since no subproblem variant calls Update. For
// "exact" it returns a zero model: QP.CreateCurrentSubproblem replaces it
// on every call with an Exact model built from the Iterate's Lagrangian
// Hessian, while InteriorPoint keeps the zero model. "zero" degenerates
// the quadratic term.
func hessianModelFor(kind string, n int) hessianmodel.Model {
	switch kind {
	case "BFGS":
		return hessianmodel.NewBFGS(n)
	case "SR1":
		return hessianmodel.NewSR1(n)
	case "zero":
		return hessianmodel.NewZero(n)
	default: // "exact"
		return hessianmodel.NewZero(n) // QP swaps in hessianmodel.NewExact per call
	}
}
