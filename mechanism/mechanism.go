// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mechanism implements the outer globalization loop: per major
// iteration, ask the constraint-relaxation layer for a direction, then
// either backtrack on step length or adjust a trust-region radius until
// the globalization strategy accepts the trial iterate.
package mechanism

import (
	"errors"
	"fmt"

	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/model"
	"github.com/gosolve/nlp/relax"
)

// Mechanism is the capability set the solver driver drives once per major
// iteration.
type Mechanism interface {
	Initialize(problem model.Problem, it *iterate.Iterate) error

	// ComputeAcceptableIterate runs the inner acceptance loop (backtracking
	// or trust-region adjustment) starting from current, returning the
	// accepted iterate and the step norm that produced it.
	ComputeAcceptableIterate(problem model.Problem, current *iterate.Iterate) (accepted *iterate.Iterate, stepNorm float64, err error)
}

// ErrStepFailure is the sentinel every step-failure error wraps, letting
// callers test with errors.Is(err, ErrStepFailure) without caring which
// concrete Kind produced it.
var ErrStepFailure = errors.New("mechanism: step failure")

// Kind distinguishes the two ways a mechanism's inner loop can exhaust
// itself without finding an acceptable trial, per spec.md §9 open
// question (b): line-search underflow and trust-region underflow are already
// one kind each; TrustLineSearch additionally separates inner iteration
// overflow from radius underflow instead of reporting both as the same
// generic condition.
type Kind int

const (
	// KindStepUnderflow is backtracking line search's alpha falling below
	// its minimum step length.
	KindStepUnderflow Kind = iota
	// KindRadiusUnderflow is a trust-region radius collapsing below its
	// floor.
	KindRadiusUnderflow
	// KindIterationOverflow is TrustLineSearch's inner loop exceeding its
	// iteration cap without the outer radius itself underflowing.
	KindIterationOverflow
)

func (k Kind) String() string {
	switch k {
	case KindStepUnderflow:
		return "STEP_UNDERFLOW"
	case KindRadiusUnderflow:
		return "RADIUS_UNDERFLOW"
	case KindIterationOverflow:
		return "ITERATION_OVERFLOW"
	default:
		return "UNKNOWN"
	}
}

// StepFailure reports that a mechanism's inner loop could not find an
// acceptable trial iterate before its budget (step length or radius)
// was exhausted.
type StepFailure struct {
	Kind Kind
}

func (e *StepFailure) Error() string {
	return fmt.Sprintf("mechanism: step failure (%s)", e.Kind)
}

func (e *StepFailure) Unwrap() error { return ErrStepFailure }

// relaxation is the subset of relax.ConstraintRelaxation every mechanism
// variant drives; kept as its own name in this package so mechanism code
// reads as "the relaxation layer" rather than repeating the full import
// path everywhere.
type relaxation = relax.ConstraintRelaxation
