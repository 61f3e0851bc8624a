// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "math"

// funcEvaluator adapts three closures into an Evaluator, used by the
// built-in scenario expressions below instead of a hand-rolled struct per
// expression.
type funcEvaluator struct {
	value    func(x []float64) (float64, error)
	gradient func(x []float64) ([]float64, error)
	hessian  func(x []float64) (SparseMatrix, error)
}

func (f *funcEvaluator) Value(x []float64) (float64, error)              { return f.value(x) }
func (f *funcEvaluator) Gradient(x []float64) ([]float64, error)         { return f.gradient(x) }
func (f *funcEvaluator) Hessian(x []float64) (SparseMatrix, error)       { return f.hessian(x) }

func zeroHessian(n int) func(x []float64) (SparseMatrix, error) {
	return func(x []float64) (SparseMatrix, error) { return make(SparseMatrix), nil }
}

// RegisterBuiltinEvaluators adds the named expressions used by the six
// JSON problem fixtures under testdata/ to l: the spec.md §8 scenarios
// (Rosenbrock, HS71, HS14, and the two synthetic toy problems) dispatched
// by name from a problem file's "expression" fields.
func RegisterBuiltinEvaluators(l *JSONLoader) {
	l.Evaluators["rosenbrock"] = rosenbrock()
	l.Evaluators["hs71_obj"] = hs71Objective()
	l.Evaluators["hs71_c1"] = hs71Constraint1()
	l.Evaluators["hs71_c2"] = hs71Constraint2()
	l.Evaluators["hs14_obj"] = hs14Objective()
	l.Evaluators["hs14_c1"] = hs14Constraint1()
	l.Evaluators["hs14_c2"] = hs14Constraint2()
	l.Evaluators["infeasible_toy_c1"] = infeasibleToyConstraint(1)
	l.Evaluators["infeasible_toy_c2"] = infeasibleToyConstraint(-1)
	l.Evaluators["infeasible_toy_obj"] = zeroObjective()
	l.Evaluators["bounded_qp_obj"] = boundedQPObjective()
	l.Evaluators["rosenbrock_numeric"] = rosenbrockNumeric()
}

// rosenbrockNumeric is the same function as rosenbrock but without analytic
// derivatives: Gradient and Hessian are estimated by NumericEvaluator's
// finite-difference approximations, for a Model that cannot supply them
// directly.
func rosenbrockNumeric() Evaluator {
	value := func(x []float64) (float64, error) {
		a, b := x[0], x[1]
		return 100*(b-a*a)*(b-a*a) + (1-a)*(1-a), nil
	}
	return NewNumericEvaluator(value, nil)
}

// rosenbrock is the classic unconstrained test function f(x,y) =
// 100(y-x^2)^2 + (1-x)^2, minimized at (1,1) with f* = 0 (spec.md §8
// scenario 1).
func rosenbrock() Evaluator {
	return &funcEvaluator{
		value: func(x []float64) (float64, error) {
			a, b := x[0], x[1]
			return 100*(b-a*a)*(b-a*a) + (1-a)*(1-a), nil
		},
		gradient: func(x []float64) ([]float64, error) {
			a, b := x[0], x[1]
			return []float64{
				-400*a*(b-a*a) - 2*(1-a),
				200 * (b - a*a),
			}, nil
		},
		hessian: func(x []float64) (SparseMatrix, error) {
			a, b := x[0], x[1]
			h := make(SparseMatrix)
			h.Set(0, 0, 1200*a*a-400*b+2)
			h.Set(0, 1, -400*a)
			h.Set(1, 0, -400*a)
			h.Set(1, 1, 200)
			return h, nil
		},
	}
}

// hs71Objective is the Hock-Schittkowski problem 71 objective,
// x1*x4*(x1+x2+x3) + x3, minimized subject to hs71Constraint1/2 (spec.md
// §8 scenario 2).
func hs71Objective() Evaluator {
	return &funcEvaluator{
		value: func(x []float64) (float64, error) {
			return x[0]*x[3]*(x[0]+x[1]+x[2]) + x[2], nil
		},
		gradient: func(x []float64) ([]float64, error) {
			return []float64{
				x[3]*(2*x[0]+x[1]+x[2]),
				x[0] * x[3],
				x[0]*x[3] + 1,
				x[0] * (x[0] + x[1] + x[2]),
			}, nil
		},
		hessian: func(x []float64) (SparseMatrix, error) {
			h := make(SparseMatrix)
			h.Set(0, 0, 2*x[3])
			h.Set(0, 1, x[3])
			h.Set(1, 0, x[3])
			h.Set(0, 2, x[3])
			h.Set(2, 0, x[3])
			h.Set(0, 3, 2*x[0]+x[1]+x[2])
			h.Set(3, 0, 2*x[0]+x[1]+x[2])
			h.Set(1, 3, x[0])
			h.Set(3, 1, x[0])
			h.Set(2, 3, x[0])
			h.Set(3, 2, x[0])
			return h, nil
		},
	}
}

// hs71Constraint1 is the product inequality x1*x2*x3*x4 >= 25.
func hs71Constraint1() Evaluator {
	return &funcEvaluator{
		value: func(x []float64) (float64, error) {
			return x[0] * x[1] * x[2] * x[3], nil
		},
		gradient: func(x []float64) ([]float64, error) {
			return []float64{
				x[1] * x[2] * x[3],
				x[0] * x[2] * x[3],
				x[0] * x[1] * x[3],
				x[0] * x[1] * x[2],
			}, nil
		},
		hessian: func(x []float64) (SparseMatrix, error) {
			h := make(SparseMatrix)
			set := func(i, j int, v float64) { h.Set(i, j, v); h.Set(j, i, v) }
			set(0, 1, x[2]*x[3])
			set(0, 2, x[1]*x[3])
			set(0, 3, x[1]*x[2])
			set(1, 2, x[0]*x[3])
			set(1, 3, x[0]*x[2])
			set(2, 3, x[0]*x[1])
			return h, nil
		},
	}
}

// hs71Constraint2 is the sum-of-squares equality x1^2+x2^2+x3^2+x4^2=40.
func hs71Constraint2() Evaluator {
	return &funcEvaluator{
		value: func(x []float64) (float64, error) {
			return x[0]*x[0] + x[1]*x[1] + x[2]*x[2] + x[3]*x[3], nil
		},
		gradient: func(x []float64) ([]float64, error) {
			return []float64{2 * x[0], 2 * x[1], 2 * x[2], 2 * x[3]}, nil
		},
		hessian: func(x []float64) (SparseMatrix, error) {
			h := make(SparseMatrix)
			for i := 0; i < 4; i++ {
				h.Set(i, i, 2)
			}
			return h, nil
		},
	}
}

// hs14Objective is Hock-Schittkowski problem 14's objective
// (x1-2)^2+(x2-1)^2.
func hs14Objective() Evaluator {
	return &funcEvaluator{
		value: func(x []float64) (float64, error) {
			return (x[0]-2)*(x[0]-2) + (x[1]-1)*(x[1]-1), nil
		},
		gradient: func(x []float64) ([]float64, error) {
			return []float64{2 * (x[0] - 2), 2 * (x[1] - 1)}, nil
		},
		hessian: func(x []float64) (SparseMatrix, error) {
			h := make(SparseMatrix)
			h.Set(0, 0, 2)
			h.Set(1, 1, 2)
			return h, nil
		},
	}
}

// hs14Constraint1 is the inequality -x1^2/4-x2^2+1>=0, the constraint whose
// curved feasible boundary is what provokes the Maratos effect the
// second-order correction is tested against (spec.md §8 scenario 5).
func hs14Constraint1() Evaluator {
	return &funcEvaluator{
		value: func(x []float64) (float64, error) {
			return -x[0]*x[0]/4 - x[1]*x[1] + 1, nil
		},
		gradient: func(x []float64) ([]float64, error) {
			return []float64{-x[0] / 2, -2 * x[1]}, nil
		},
		hessian: func(x []float64) (SparseMatrix, error) {
			h := make(SparseMatrix)
			h.Set(0, 0, -0.5)
			h.Set(1, 1, -2)
			return h, nil
		},
	}
}

// hs14Constraint2 is the linear equality x1-2*x2+1=0.
func hs14Constraint2() Evaluator {
	return &funcEvaluator{
		value: func(x []float64) (float64, error) {
			return x[0] - 2*x[1] + 1, nil
		},
		gradient: func(x []float64) ([]float64, error) {
			return []float64{1, -2}, nil
		},
		hessian: zeroHessian(2),
	}
}

// infeasibleToyConstraint builds the pair x1 >= 1 and x1 <= -1 (sign
// +1/-1 respectively) that together admit no feasible point, used by the
// "infeasible toy" scenario to exercise restoration's terminal
// InfeasibleKKTPoint classification (spec.md §8 scenario 3).
func infeasibleToyConstraint(sign float64) Evaluator {
	return &funcEvaluator{
		value:    func(x []float64) (float64, error) { return sign * x[0], nil },
		gradient: func(x []float64) ([]float64, error) { return []float64{sign}, nil },
		hessian:  zeroHessian(1),
	}
}

// zeroObjective is a constant-zero objective, used where a scenario's
// interest is entirely in its constraints (spec.md §8 scenario 3).
func zeroObjective() Evaluator {
	return &funcEvaluator{
		value:    func(x []float64) (float64, error) { return 0, nil },
		gradient: func(x []float64) ([]float64, error) { return make([]float64, len(x)), nil },
		hessian:  zeroHessian(1),
	}
}

// boundedQPObjective is the bound-constrained-only quadratic
// (1/2)||x||^2 + b^T x with b=(-1,2), used by the "bounded-only QP"
// scenario where NumConstraints() is zero and only variable bounds are
// active (spec.md §8 scenario 4). Its unconstrained minimizer over x2
// lies outside x2>=0, so the solve must drive x2 to its lower bound and
// report a nonzero z_L there.
func boundedQPObjective() Evaluator {
	b := []float64{-1, 2}
	return &funcEvaluator{
		value: func(x []float64) (float64, error) {
			return 0.5*(x[0]*x[0]+x[1]*x[1]) + b[0]*x[0] + b[1]*x[1], nil
		},
		gradient: func(x []float64) ([]float64, error) {
			return []float64{x[0] + b[0], x[1] + b[1]}, nil
		},
		hessian: func(x []float64) (SparseMatrix, error) {
			h := make(SparseMatrix)
			h.Set(0, 0, 1)
			h.Set(1, 1, 1)
			return h, nil
		},
	}
}

func freeBound() Bound { return Bound{Lower: math.Inf(-1), Upper: math.Inf(1)} }

// RosenbrockProblem builds the unconstrained two-variable Rosenbrock
// problem of spec.md §8 scenario 1 directly, without a JSON round-trip.
func RosenbrockProblem() Problem {
	free := []Bound{freeBound(), freeBound()}
	return NewExprProblem(2, free, nil, rosenbrock(), nil, 1)
}

// RosenbrockNumericProblem is RosenbrockProblem with its derivatives
// estimated by NumericEvaluator instead of computed analytically,
// exercising the numdiff fallback path.
func RosenbrockNumericProblem() Problem {
	free := []Bound{freeBound(), freeBound()}
	return NewExprProblem(2, free, nil, rosenbrockNumeric(), nil, 1)
}

// HS71Problem builds Hock-Schittkowski problem 71 (spec.md §8 scenario 2):
// 1 <= xi <= 5, x1*x2*x3*x4 >= 25, sum xi^2 = 40.
func HS71Problem() Problem {
	vb := []Bound{{Lower: 1, Upper: 5}, {Lower: 1, Upper: 5}, {Lower: 1, Upper: 5}, {Lower: 1, Upper: 5}}
	cb := []Bound{{Lower: 25, Upper: math.Inf(1)}, {Lower: 40, Upper: 40}}
	return NewExprProblem(4, vb, cb, hs71Objective(), []Evaluator{hs71Constraint1(), hs71Constraint2()}, 1)
}

// InfeasibleToyProblem builds the one-variable, two-constraint problem
// whose feasible set is empty (x1 >= 1 and x1 <= -1 simultaneously),
// exercising the InfeasibleKKTPoint path (spec.md §8 scenario 3).
func InfeasibleToyProblem() Problem {
	vb := []Bound{freeBound()}
	cb := []Bound{{Lower: 1, Upper: math.Inf(1)}, {Lower: 1, Upper: math.Inf(1)}}
	return NewExprProblem(1, vb, cb, zeroObjective(), []Evaluator{infeasibleToyConstraint(1), infeasibleToyConstraint(-1)}, 1)
}

// BoundedQPProblem builds the bound-constrained-only QP of spec.md §8
// scenario 4: minimize (1/2)||x||^2+b^T x, b=(-1,2), subject only to
// x>=0, no general constraints. The expected solution is x*=(1,0) with
// bound multipliers z_L*=(0,2).
func BoundedQPProblem() Problem {
	vb := []Bound{{Lower: 0, Upper: math.Inf(1)}, {Lower: 0, Upper: math.Inf(1)}}
	return NewExprProblem(2, vb, nil, boundedQPObjective(), nil, 1)
}

// HS14Problem builds Hock-Schittkowski problem 14 (spec.md §8 scenario 5),
// used by both the filter and Byrd ℓ1 presets: minimize (x1-2)^2+(x2-1)^2
// subject to -x1^2/4-x2^2+1>=0 and x1-2*x2+1=0.
func HS14Problem() Problem {
	vb := []Bound{freeBound(), freeBound()}
	cb := []Bound{{Lower: 0, Upper: math.Inf(1)}, {Lower: 0, Upper: 0}}
	return NewExprProblem(2, vb, cb, hs14Objective(), []Evaluator{hs14Constraint1(), hs14Constraint2()}, 1)
}
