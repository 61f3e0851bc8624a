// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package relax

import (
	"math"
	"testing"

	"github.com/gosolve/nlp/iterate"
	"github.com/gosolve/nlp/model"
	"github.com/gosolve/nlp/strategy"
	"github.com/gosolve/nlp/subproblem"
)

// infeasiblePairProblem is a one-variable problem whose two constraints
// (x1 >= 1, x1 <= -1) admit no feasible point, forcing
// ComputeFeasibleDirection into solveRestoration on the first call.
func infeasiblePairProblem() model.Problem {
	free := model.Bound{Lower: math.Inf(-1), Upper: math.Inf(1)}
	obj := model.NewNumericEvaluator(func(x []float64) (float64, error) { return 0, nil }, nil)
	c1 := model.NewNumericEvaluator(func(x []float64) (float64, error) { return x[0], nil }, nil)
	c2 := model.NewNumericEvaluator(func(x []float64) (float64, error) { return -x[0], nil }, nil)
	cb := []model.Bound{{Lower: 1, Upper: math.Inf(1)}, {Lower: 1, Upper: math.Inf(1)}}
	return model.NewExprProblem(1, []model.Bound{free}, cb, obj, []model.Evaluator{c1, c2}, 1)
}

func TestFeasibilityRestorationDoesNotRelocateCurrentIterate(t *testing.T) {
	problem := infeasiblePairProblem()

	sub := subproblem.NewQP(1, 2, "zero")
	optStrat := strategy.NewFilterStrategy(1e-4)
	restStrat := strategy.NewFilterStrategy(1e-4)
	fr := NewFeasibilityRestoration(sub, optStrat, restStrat, problem.ObjectiveSign())

	it := iterate.NewIterate([]float64{0}, problem.NumConstraints())
	if err := fr.Initialize(problem, it); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	origX := append([]float64(nil), it.X...)

	dir, err := fr.ComputeFeasibleDirection(problem, it, math.Inf(1))
	if err != nil {
		t.Fatalf("ComputeFeasibleDirection: %v", err)
	}

	if fr.Phase() != PhaseOptimality && fr.Phase() != PhaseRestoration {
		t.Fatalf("unexpected phase %v", fr.Phase())
	}
	if !dir.IsRelaxed {
		t.Fatalf("expected the infeasible problem to route through restoration")
	}
	for i, x := range it.X {
		if x != origX[i] {
			t.Fatalf("it.X mutated by ComputeFeasibleDirection: got %v, want unchanged %v", it.X, origX)
		}
	}
}
