// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosolve/nlp/model"
)

func TestBuildRejectsUnknownMechanism(t *testing.T) {
	opts, err := NewOptions("")
	require.NoError(t, err)
	opts.Set("mechanism", "not-a-mechanism")

	_, err = Build(model.RosenbrockProblem(), opts, nil)
	require.Error(t, err)
}

func TestDriverSolvesUnconstrainedRosenbrock(t *testing.T) {
	opts, err := NewOptions("filtersqp")
	require.NoError(t, err)
	opts.Set("max_iterations", "300")

	driver, err := Build(model.RosenbrockProblem(), opts, nil)
	require.NoError(t, err)

	result, err := driver.Solve(model.RosenbrockProblem(), []float64{-1.2, 1.0})
	require.NoError(t, err)
	require.Truef(t, result.Status.Successful(), "status = %s, fault = %v", result.Status, result.Fault)
	require.InDelta(t, 0, result.Iterate.Progress.Objective, 1e-2)
}

func TestDriverSolvesRosenbrockWithNumericDerivatives(t *testing.T) {
	opts, err := NewOptions("filtersqp")
	require.NoError(t, err)
	opts.Set("max_iterations", "300")

	driver, err := Build(model.RosenbrockNumericProblem(), opts, nil)
	require.NoError(t, err)

	result, err := driver.Solve(model.RosenbrockNumericProblem(), []float64{-1.2, 1.0})
	require.NoError(t, err)
	require.Truef(t, result.Status.Successful(), "status = %s, fault = %v", result.Status, result.Fault)
	require.InDelta(t, 0, result.Iterate.Progress.Objective, 1e-2)
}

func TestDriverSolvesBoundedOnlyQP(t *testing.T) {
	opts, err := NewOptions("filtersqp")
	require.NoError(t, err)

	driver, err := Build(model.BoundedQPProblem(), opts, nil)
	require.NoError(t, err)

	result, err := driver.Solve(model.BoundedQPProblem(), []float64{3, 1})
	require.NoError(t, err)
	require.True(t, result.Status.Successful())
	require.InDelta(t, 1, result.Iterate.X[0], 1e-4)
	require.InDelta(t, 0, result.Iterate.X[1], 1e-4)
}

func TestDriverReportsInfeasibleToy(t *testing.T) {
	opts, err := NewOptions("filtersqp")
	require.NoError(t, err)
	opts.Set("max_iterations", "200")

	driver, err := Build(model.InfeasibleToyProblem(), opts, nil)
	require.NoError(t, err)

	result, err := driver.Solve(model.InfeasibleToyProblem(), []float64{0})
	require.NoError(t, err)
	require.Contains(t, []TerminationStatus{InfeasibleKKTPoint, InfeasibleSmallStep}, result.Status)
}

func TestDriverSolvesHS14WithByrdPreset(t *testing.T) {
	opts, err := NewOptions("byrd")
	require.NoError(t, err)
	opts.Set("max_iterations", "300")

	driver, err := Build(model.HS14Problem(), opts, nil)
	require.NoError(t, err)

	result, err := driver.Solve(model.HS14Problem(), []float64{2, 2})
	require.NoError(t, err)
	require.Truef(t, result.Status.Successful(), "status = %s, fault = %v", result.Status, result.Fault)
}
