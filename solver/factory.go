// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"fmt"

	"github.com/gosolve/nlp/mechanism"
	"github.com/gosolve/nlp/model"
	"github.com/gosolve/nlp/relax"
	"github.com/gosolve/nlp/strategy"
	"github.com/gosolve/nlp/subproblem"
)

// radiusSetter is implemented by mechanism.TrustRegion and
// mechanism.TrustLineSearch; Build uses it to install the TR_radius
// option before the first iteration.
type radiusSetter interface {
	SetRadius(float64)
}

// normalizeResidualNorm maps the option value's spec.md spelling
// ("L_INF") onto model.ParseResidualNorm's own ("LInf"), leaving any
// other value untouched.
func normalizeResidualNorm(s string) string {
	if s == "L_INF" {
		return "LInf"
	}
	return s
}

func newStrategy(kind string, armijo, eta float64, filterBeta, filterGamma float64) (strategy.Strategy, error) {
	switch kind {
	case "filter":
		fs := strategy.NewFilterStrategy(armijo)
		fs.Beta = filterBeta
		fs.Gamma = filterGamma
		return fs, nil
	case "l1-penalty":
		return strategy.NewL1Penalty(eta), nil
	default:
		return nil, &OptionError{Msg: fmt.Sprintf("unknown strategy %q", kind)}
	}
}

func newSubproblem(kind string, n, q int, hessianKind string, proximal float64) (subproblem.Subproblem, error) {
	switch kind {
	case "QP":
		qp := subproblem.NewQP(n, q, hessianKind)
		qp.Proximal = proximal
		return qp, nil
	case "LP":
		return subproblem.NewLP(n, q), nil
	case "primal_dual_interior_point":
		ip := subproblem.NewInteriorPoint(n, q, hessianKind, 0.1, 1e-8)
		ip.Proximal = proximal
		return ip, nil
	default:
		return nil, &OptionError{Msg: fmt.Sprintf("unknown subproblem %q", kind)}
	}
}

// Build assembles a Driver for problem from opts: selects and wires the
// subproblem, constraint-relaxation, globalization strategy and mechanism
// named by the option keys of spec.md §6, then installs the tuning
// constants every one of them exposes.
func Build(problem model.Problem, opts Options, logger *Logger) (*Driver, error) {
	n := problem.NumVariables()
	q := problem.NumConstraints()

	hessianKind := opts.String("hessian_model", "zero")
	proximal, err := opts.Float("proximal_coefficient", 0)
	if err != nil {
		return nil, err
	}
	armijo, err := opts.Float("armijo_decrease_fraction", 1e-4)
	if err != nil {
		return nil, err
	}
	filterBeta, err := opts.Float("filter_Beta", 0.99999)
	if err != nil {
		return nil, err
	}
	filterGamma, err := opts.Float("filter_Gamma", 1e-5)
	if err != nil {
		return nil, err
	}

	sign := problem.ObjectiveSign()

	var ctrRelax relax.ConstraintRelaxation
	var statLabel func() string

	relaxKind := opts.String("constraint-relaxation", "feasibility-restoration")
	switch relaxKind {
	case "feasibility-restoration":
		subKind := opts.String("subproblem", "QP")
		sub, err := newSubproblem(subKind, n, q, hessianKind, proximal)
		if err != nil {
			return nil, err
		}
		stratKind := opts.String("strategy", "filter")
		optStrat, err := newStrategy(stratKind, armijo, armijo, filterBeta, filterGamma)
		if err != nil {
			return nil, err
		}
		restStrat, err := newStrategy(stratKind, armijo, armijo, filterBeta, filterGamma)
		if err != nil {
			return nil, err
		}
		fr := relax.NewFeasibilityRestoration(sub, optStrat, restStrat, sign)
		ctrRelax = fr
		statLabel = func() string { return fr.Phase().String() }

	case "l1-relaxation":
		qp := subproblem.NewQP(n, q, hessianKind)
		qp.Proximal = proximal
		stratKind := opts.String("strategy", "l1-penalty")
		strat, err := newStrategy(stratKind, armijo, armijo, filterBeta, filterGamma)
		if err != nil {
			return nil, err
		}
		mu0, err := opts.Float("l1_relaxation_initial_parameter", 10)
		if err != nil {
			return nil, err
		}
		eps1, err := opts.Float("l1_relaxation_epsilon1", 0.1)
		if err != nil {
			return nil, err
		}
		eps2, err := opts.Float("l1_relaxation_epsilon2", 0.1)
		if err != nil {
			return nil, err
		}
		lr := relax.NewL1Relaxation(qp, strat, sign, mu0, eps1, eps2)
		lr.ResidualNorm = model.ParseResidualNorm(normalizeResidualNorm(opts.String("residual_norm", "L1")))
		if l1, ok := strat.(*strategy.L1Penalty); ok {
			l1.SetMu(mu0)
		}
		ctrRelax = lr
		statLabel = func() string { return fmt.Sprintf("mu=%.3g", lr.Mu) }

	default:
		return nil, &OptionError{Msg: fmt.Sprintf("unknown constraint-relaxation %q", relaxKind)}
	}

	var mech mechanism.Mechanism
	backtrackRatio, err := opts.Float("LS_backtracking_ratio", 0.5)
	if err != nil {
		return nil, err
	}
	trRadius, err := opts.Float("TR_radius", 1.0)
	if err != nil {
		return nil, err
	}

	switch opts.String("mechanism", "LS") {
	case "LS":
		ls := mechanism.NewLineSearch(ctrRelax)
		ls.BacktrackingRatio = backtrackRatio
		mech = ls
	case "TR":
		tr := mechanism.NewTrustRegion(ctrRelax)
		tr.SetRadius(trRadius)
		mech = tr
	case "TLS":
		tls := mechanism.NewTrustLineSearch(ctrRelax)
		tls.BacktrackingRatio = backtrackRatio
		tls.SetRadius(trRadius)
		mech = tls
	default:
		return nil, &OptionError{Msg: fmt.Sprintf("unknown mechanism %q", opts.String("mechanism", "LS"))}
	}

	tol, err := opts.Float("tolerance", 1e-6)
	if err != nil {
		return nil, err
	}
	smallStepFactor, err := opts.Float("small_step_factor", 100)
	if err != nil {
		return nil, err
	}
	maxIter, err := opts.Int("max_iterations", 1000)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = NewLogger(nil, LogSilent)
	}

	return &Driver{
		Mechanism:     mech,
		Tolerances:    Tolerances{Epsilon: tol, SmallStepFactor: smallStepFactor},
		MaxIterations: maxIter,
		ResidualNorm:  model.ParseResidualNorm(normalizeResidualNorm(opts.String("residual_norm", "L1"))),
		Logger:        logger,
		StatLabel:     statLabel,
	}, nil
}

var _ radiusSetter = (*mechanism.TrustRegion)(nil)
var _ radiusSetter = (*mechanism.TrustLineSearch)(nil)
