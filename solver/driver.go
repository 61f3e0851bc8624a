// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"errors"
	"math"

	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/mechanism"
	"github.com/gosolve/nlp/model"
)

// Result is everything a caller of Driver.Solve gets back: the
// termination status, the final iterate, the shared evaluation counters,
// the number of major iterations run, and (when the loop stopped with
// status NotOptimal, on a mechanism error or at MaxIterations) the
// terminal fault that stopped the loop.
type Result struct {
	Status     TerminationStatus
	Iterate    *iterate.Iterate
	Counters   iterate.Counters
	Iterations int
	Fault      *SolverFault
}

// Driver is the spec.md §4.6 main loop: initialize the mechanism (which
// cascades into the constraint-relaxation layer and its subproblem), then
// alternate classifying the current iterate against Tolerances and asking
// the mechanism for the next acceptable one until a terminal status is
// reached or MaxIterations is exhausted.
type Driver struct {
	Mechanism    mechanism.Mechanism
	Tolerances   Tolerances
	MaxIterations int
	ResidualNorm model.ResidualNorm
	Logger       *Logger

	// StatLabel, if set, is called after every major iteration to produce
	// the trailing phase/penalty column of the statistics line (e.g. a
	// feasibility-restoration phase name or the current l1-relaxation mu);
	// nil prints an empty column.
	StatLabel func() string
}

// Solve runs the driver loop on problem starting from x0, which is copied
// rather than mutated in place.
func (d *Driver) Solve(problem model.Problem, x0 []float64) (*Result, error) {
	if err := model.Validate(problem); err != nil {
		return nil, err
	}

	q := problem.NumConstraints()
	g0, err := problem.ObjectiveGradient(x0)
	if err != nil {
		return nil, err
	}
	jac0, err := problem.ConstraintsJacobian(x0)
	if err != nil {
		return nil, err
	}
	scaling := model.NewScaling(g0, jac0, q)

	x := append([]float64(nil), x0...)
	it := iterate.NewIterate(x, q)
	it.SetScaling(scaling)
	counters := &iterate.Counters{}
	it.SetCounters(counters)

	if err := d.Mechanism.Initialize(problem, it); err != nil {
		return nil, err
	}
	if err := it.UpdateResiduals(problem, nil, d.ResidualNorm, problem.ObjectiveSign()); err != nil {
		return nil, err
	}

	stepNorm := math.Inf(1)
	status := Classify(it, stepNorm, problem.ObjectiveSign(), d.Tolerances)
	major := 0

	for {
		d.logStats(major, stepNorm, it)
		if status != NotOptimal {
			return &Result{Status: status, Iterate: it, Counters: *counters, Iterations: major}, nil
		}
		if major >= d.MaxIterations {
			return &Result{
				Status: NotOptimal, Iterate: it, Counters: *counters, Iterations: major,
				Fault: &SolverFault{Kind: FaultIterationLimit},
			}, nil
		}

		next, sNorm, err := d.Mechanism.ComputeAcceptableIterate(problem, it)
		if err != nil {
			return &Result{
				Status: NotOptimal, Iterate: it, Counters: *counters, Iterations: major,
				Fault: &SolverFault{Kind: faultKindOf(err), Err: err},
			}, nil
		}

		it = next
		stepNorm = sNorm
		major++
		status = Classify(it, stepNorm, problem.ObjectiveSign(), d.Tolerances)
	}
}

func (d *Driver) logStats(major int, stepNorm float64, it *iterate.Iterate) {
	label := ""
	if d.StatLabel != nil {
		label = d.StatLabel()
	}
	r := it.Residuals
	d.Logger.Statistics(major, 0, stepNorm, it.Progress.Objective, r.Infeasibility, r.ComplementarityOpt, r.StationarityOpt, label)
}

// faultKindOf classifies a mechanism/evaluation error surfacing from
// ComputeAcceptableIterate into the fault kind the driver reports,
// defaulting to FaultStepFailure for anything wrapping
// mechanism.ErrStepFailure and FaultEvaluation otherwise.
func faultKindOf(err error) FaultKind {
	var sf *mechanism.StepFailure
	if errors.As(err, &sf) {
		return FaultStepFailure
	}
	if errors.Is(err, mechanism.ErrStepFailure) {
		return FaultStepFailure
	}
	return FaultEvaluation
}
