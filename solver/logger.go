// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"fmt"
	"io"
)

// LogLevel controls how much of the driver's progress Logger prints,
// mirroring the level-gated verbosity of a typical NLP solver's iteration
// log.
type LogLevel int

const (
	// LogSilent prints nothing.
	LogSilent LogLevel = iota
	// LogSummary prints one line per major iteration (the statistics
	// line of spec.md §6).
	LogSummary
	// LogVerbose additionally prints phase/penalty transitions and
	// mechanism-level radius/step adjustments.
	LogVerbose
)

// Logger prints the driver's per-iteration statistics line and any
// phase-transition/fault narration; a nil Out disables all output
// regardless of Level.
type Logger struct {
	Level LogLevel
	Out   io.Writer
}

// NewLogger creates a Logger writing to out at the given level.
func NewLogger(out io.Writer, level LogLevel) *Logger {
	return &Logger{Level: level, Out: out}
}

func (l *Logger) enabled(level LogLevel) bool {
	return l != nil && l.Out != nil && l.Level >= level
}

// Statistics prints the columns of spec.md §6's statistics line: major |
// minor | step norm | objective | primal infeas | complementarity |
// stationarity | (phase|penalty).
func (l *Logger) Statistics(major, minor int, stepNorm, objective, infeasibility, complementarity, stationarity float64, phaseOrPenalty string) {
	if !l.enabled(LogSummary) {
		return
	}
	fmt.Fprintf(l.Out, "%6d %6d %12.6e %16.8e %12.6e %12.6e %12.6e %s\n",
		major, minor, stepNorm, objective, infeasibility, complementarity, stationarity, phaseOrPenalty)
}

// Notef prints a verbose-only narration line (phase transitions, radius
// changes, fault recovery attempts).
func (l *Logger) Notef(format string, a ...any) {
	if !l.enabled(LogVerbose) {
		return
	}
	fmt.Fprintf(l.Out, format+"\n", a...)
}
