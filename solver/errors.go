// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import "fmt"

// OptionError reports a missing config file, an unparseable option value,
// or an unknown preset name, surfaced before the first iteration runs.
type OptionError struct {
	Msg string
}

func (e *OptionError) Error() string { return fmt.Sprintf("solver: option error: %s", e.Msg) }

// FaultKind classifies the terminal, non-recoverable failures of spec.md
// §7 that the driver can report alongside a normal termination status.
type FaultKind int

const (
	// FaultStepFailure is a mechanism's step/radius budget exhausted
	// without an accepted trial.
	FaultStepFailure FaultKind = iota
	// FaultIterationLimit is the driver's major-iteration budget
	// exhausted while termination status was still NOT_OPTIMAL.
	FaultIterationLimit
	// FaultInertiaFailure is Hessian regularization exceeding its
	// ceiling without restoring positive definiteness on the tangent
	// space.
	FaultInertiaFailure
	// FaultEvaluation is a model callback producing NaN or returning an
	// error that a mechanism retry could not absorb.
	FaultEvaluation
)

func (k FaultKind) String() string {
	switch k {
	case FaultStepFailure:
		return "STEP_FAILURE"
	case FaultIterationLimit:
		return "ITERATION_LIMIT"
	case FaultInertiaFailure:
		return "INERTIA_FAILURE"
	case FaultEvaluation:
		return "EVALUATION_ERROR"
	default:
		return "UNKNOWN"
	}
}

// SolverFault reports a terminal failure that stopped the driver loop: a
// step or evaluation failure the mechanism could not recover from, or the
// max_iterations limit. Result.Fault is non-nil exactly when the loop
// stopped with Result.Status NotOptimal.
type SolverFault struct {
	Kind FaultKind
	Err  error // the underlying mechanism/evaluation error, if any
}

func (f *SolverFault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("solver: %s: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("solver: %s", f.Kind)
}

func (f *SolverFault) Unwrap() error { return f.Err }
