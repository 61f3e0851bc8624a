// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Loader parses a problem description file into a Problem. A real NL/AMPL
// frontend is an out-of-scope modeling collaborator; Loader exists so the
// CLI has at least one concrete, dependency-free way to load a problem.
type Loader interface {
	Load(path string) (Problem, error)
}

// jsonDoc is the on-disk shape consumed by JSONLoader: a dense, literal
// description of objective/constraint values, gradients and Hessian
// triples. It intentionally has no expression language; it is a fixture
// format for the scenarios this repository tests against, not a general
// modeling interchange format.
type jsonDoc struct {
	NumVariables   int           `json:"num_variables"`
	VariableBounds []Bound       `json:"variable_bounds"`
	ConstraintDefs []jsonConstr  `json:"constraints"`
	Objective      jsonObjective `json:"objective"`
	ObjectiveSign  float64       `json:"objective_sign"`
}

type jsonConstr struct {
	Bound      Bound  `json:"bound"`
	Expression string `json:"expression"`
}

type jsonObjective struct {
	Expression string `json:"expression"`
}

// JSONLoader loads a Problem from the minimal JSON fixture format declared
// by jsonDoc, dispatching named expressions (e.g. "rosenbrock", "hs71_obj")
// to a registered evaluator rather than parsing an expression grammar.
type JSONLoader struct {
	Evaluators map[string]Evaluator
}

// Evaluator computes a scalar expression's value and gradient at x.
type Evaluator interface {
	Value(x []float64) (float64, error)
	Gradient(x []float64) ([]float64, error)
	Hessian(x []float64) (SparseMatrix, error)
}

// NewJSONLoader creates a JSONLoader with an empty Evaluators table;
// RegisterBuiltinEvaluators adds the built-in scenario evaluators, and
// callers may add more via Evaluators.
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{Evaluators: make(map[string]Evaluator)}
}

func (l *JSONLoader) Load(path string) (Problem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: reading problem file %s: %w", path, err)
	}
	var doc jsonDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("model: parsing problem file %s: %w", path, err)
	}

	obj, ok := l.Evaluators[doc.Objective.Expression]
	if !ok {
		return nil, fmt.Errorf("model: unknown objective expression %q", doc.Objective.Expression)
	}
	cons := make([]Evaluator, len(doc.ConstraintDefs))
	conBounds := make([]Bound, len(doc.ConstraintDefs))
	for i, c := range doc.ConstraintDefs {
		e, ok := l.Evaluators[c.Expression]
		if !ok {
			return nil, fmt.Errorf("model: unknown constraint expression %q", c.Expression)
		}
		cons[i] = e
		conBounds[i] = c.Bound
	}

	sign := doc.ObjectiveSign
	if sign == 0 {
		sign = 1
	}
	return &exprProblem{
		n:         doc.NumVariables,
		varBounds: doc.VariableBounds,
		conBounds: conBounds,
		objective: obj,
		cons:      cons,
		sign:      sign,
	}, nil
}

// NewExprProblem builds a Problem directly from Evaluators, skipping the
// JSON round-trip; used by in-process scenario tests that construct their
// problem with Go literals rather than a fixture file.
func NewExprProblem(n int, varBounds, conBounds []Bound, objective Evaluator, cons []Evaluator, sign float64) Problem {
	if sign == 0 {
		sign = 1
	}
	return &exprProblem{n: n, varBounds: varBounds, conBounds: conBounds, objective: objective, cons: cons, sign: sign}
}

// exprProblem adapts a dispatch table of Evaluators into a Problem.
type exprProblem struct {
	n         int
	varBounds []Bound
	conBounds []Bound
	objective Evaluator
	cons      []Evaluator
	sign      float64
}

func (p *exprProblem) NumVariables() int   { return p.n }
func (p *exprProblem) NumConstraints() int { return len(p.cons) }

func (p *exprProblem) VariableBounds(i int) Bound   { return p.varBounds[i] }
func (p *exprProblem) ConstraintBounds(j int) Bound { return p.conBounds[j] }
func (p *exprProblem) ObjectiveSign() float64       { return p.sign }

func (p *exprProblem) Objective(x []float64) (float64, error) { return p.objective.Value(x) }

func (p *exprProblem) Constraints(x []float64) ([]float64, error) {
	out := make([]float64, len(p.cons))
	for i, c := range p.cons {
		v, err := c.Value(x)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (p *exprProblem) ObjectiveGradient(x []float64) ([]float64, error) {
	return p.objective.Gradient(x)
}

func (p *exprProblem) ConstraintsJacobian(x []float64) (SparseMatrix, error) {
	jac := make(SparseMatrix)
	for j, c := range p.cons {
		g, err := c.Gradient(x)
		if err != nil {
			return nil, err
		}
		for i, v := range g {
			if v != 0 {
				jac.Set(j, i, v)
			}
		}
	}
	return jac, nil
}

func (p *exprProblem) LagrangianHessian(x, y []float64) (SparseMatrix, error) {
	b := NewSymmetricCOOBuilder(p.n)
	hf, err := p.objective.Hessian(x)
	if err != nil {
		return nil, err
	}
	for i, row := range hf {
		for j, v := range row {
			if j > i {
				continue // evaluators return full matrices; keep the lower triangle once
			}
			b.Insert(v, i, j)
		}
	}
	for k, c := range p.cons {
		if y[k] == 0 {
			continue
		}
		hc, err := c.Hessian(x)
		if err != nil {
			return nil, err
		}
		for i, row := range hc {
			for j, v := range row {
				if j > i {
					continue
				}
				b.Insert(y[k]*v, i, j)
			}
		}
	}
	return b.Finalize(), nil
}
