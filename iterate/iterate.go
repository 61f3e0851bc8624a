// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterate

import (
	"fmt"
	"math"

	"github.com/gosolve/nlp/internal/veclib"
	"github.com/gosolve/nlp/model"
)

// cell is a lazily evaluated, memoized value with an explicit valid
// discriminant, per the "no sentinel values" rule: a cell that has never
// been computed and a cell that legitimately holds a zero value are
// distinguishable.
type cell[T any] struct {
	value T
	valid bool
}

func (c *cell[T]) invalidate() { c.valid = false }

// Residuals are the five scalar quantities the termination classifier and
// the constraint-relaxation strategies read off an accepted Iterate.
type Residuals struct {
	Infeasibility       float64
	StationarityOpt     float64
	StationarityFeas    float64
	ComplementarityOpt  float64
	ComplementarityFeas float64
}

// Progress is the (infeasibility, objective) pair consumed by a
// globalization strategy. UpdateProgress always stores f as Objective,
// in restoration mode too; the violation of the offending constraint
// subset is not measured separately.
type Progress struct {
	Infeasibility float64
	Objective     float64
}

// Iterate is a primal-dual point with lazily evaluated, memoized f, c,
// gradient, Jacobian and Hessian caches, plus the residuals and progress
// measures derived from them. Every cache is scoped to one Iterate: it is
// dropped when the Iterate is dropped, never shared across instances.
type Iterate struct {
	X []float64 // primal vector, length n

	Lambda []float64          // constraint multipliers, length q
	ZLower map[int]float64    // lower-bound multipliers
	ZUpper map[int]float64    // upper-bound multipliers
	Sigma  float64            // objective multiplier in [0,1]

	objective  cell[float64]
	constraint cell[[]float64]
	objGrad    cell[[]float64]
	consJac    cell[model.SparseMatrix]
	lagHess    cell[model.SparseMatrix]

	lagGradOpt  cell[[]float64]
	lagGradFeas cell[[]float64]

	Residuals Residuals
	Progress  Progress

	// scaling is the frozen per-problem scale factors computed once
	// during preprocessing (spec.md §3's "Scaling" invariant: re-scaling
	// across major iterations is not supported). Every Evaluate* method
	// below falls back to it when its own sc argument is nil, so callers
	// that always pass nil (every subproblem/relax call site does) still
	// get scaled evaluations once the driver installs scaling via SetScaling.
	scaling  *model.Scaling
	counters *Counters
}

// SetScaling installs the frozen scale factors this Iterate's Evaluate*
// methods fall back to when called with a nil sc argument. Trial iterates
// created from an accepted one should copy its scaling so the whole
// sequence shares one frozen snapshot.
func (it *Iterate) SetScaling(sc *model.Scaling) { it.scaling = sc }

// Scaling returns the frozen scale factors installed by SetScaling, or nil
// if none has been installed yet.
func (it *Iterate) Scaling() *model.Scaling { return it.scaling }

// NewIterate creates an Iterate at x with zero multipliers and every cache
// invalid.
func NewIterate(x []float64, numConstraints int) *Iterate {
	return &Iterate{
		X:      append([]float64(nil), x...),
		Lambda: make([]float64, numConstraints),
		ZLower: make(map[int]float64),
		ZUpper: make(map[int]float64),
		Sigma:  1,
	}
}

// SetX replaces the primal point and invalidates every cache, per the
// "flipping x invalidates every flag" invariant.
func (it *Iterate) SetX(x []float64) {
	copy(it.X, x)
	it.objective.invalidate()
	it.constraint.invalidate()
	it.objGrad.invalidate()
	it.consJac.invalidate()
	it.lagHess.invalidate()
	it.lagGradOpt.invalidate()
	it.lagGradFeas.invalidate()
}

// EvaluateObjective is idempotent: it evaluates f(x) and multiplies by the
// frozen objective scale only on the first call after X last changed.
func (it *Iterate) EvaluateObjective(p model.Problem, sc *model.Scaling) (float64, error) {
	if sc == nil {
		sc = it.scaling
	}
	if it.objective.valid {
		return it.objective.value, nil
	}
	f, err := p.Objective(it.X)
	if err != nil {
		return 0, fmt.Errorf("iterate: objective evaluation: %w", err)
	}
	if it.counters != nil {
		it.counters.Objective++
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("iterate: objective evaluation returned NaN at x=%v", it.X)
	}
	f = sc.ScaleObjective(f)
	it.objective = cell[float64]{value: f, valid: true}
	return f, nil
}

// EvaluateConstraints evaluates c(x) and scales each component, memoized
// per the same discipline as EvaluateObjective.
func (it *Iterate) EvaluateConstraints(p model.Problem, sc *model.Scaling) ([]float64, error) {
	if sc == nil {
		sc = it.scaling
	}
	if it.constraint.valid {
		return it.constraint.value, nil
	}
	c, err := p.Constraints(it.X)
	if err != nil {
		return nil, fmt.Errorf("iterate: constraint evaluation: %w", err)
	}
	if it.counters != nil {
		it.counters.Constraints++
	}
	out := make([]float64, len(c))
	for j, v := range c {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("iterate: constraint %d evaluation returned NaN", j)
		}
		out[j] = sc.ScaleConstraint(j, v)
	}
	it.constraint = cell[[]float64]{value: out, valid: true}
	return out, nil
}

// EvaluateObjectiveGradient clears then fills the dense gradient buffer,
// applying the objective scale.
func (it *Iterate) EvaluateObjectiveGradient(p model.Problem, sc *model.Scaling) ([]float64, error) {
	if sc == nil {
		sc = it.scaling
	}
	if it.objGrad.valid {
		return it.objGrad.value, nil
	}
	g, err := p.ObjectiveGradient(it.X)
	if err != nil {
		return nil, fmt.Errorf("iterate: objective gradient evaluation: %w", err)
	}
	if it.counters != nil {
		it.counters.ObjectiveGradient++
	}
	out := make([]float64, len(g))
	for i, v := range g {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("iterate: objective gradient component %d is NaN", i)
		}
		out[i] = sc.ScaleObjective(v)
	}
	it.objGrad = cell[[]float64]{value: out, valid: true}
	return out, nil
}

// EvaluateConstraintsJacobian clears then fills the sparse Jacobian,
// scaling row j by the frozen constraint scale g_c[j].
func (it *Iterate) EvaluateConstraintsJacobian(p model.Problem, sc *model.Scaling) (model.SparseMatrix, error) {
	if sc == nil {
		sc = it.scaling
	}
	if it.consJac.valid {
		return it.consJac.value, nil
	}
	jac, err := p.ConstraintsJacobian(it.X)
	if err != nil {
		return nil, fmt.Errorf("iterate: constraint jacobian evaluation: %w", err)
	}
	if it.counters != nil {
		it.counters.ConstraintsJacobian++
	}
	out := make(model.SparseMatrix)
	for j, row := range jac {
		for i, v := range row {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("iterate: jacobian entry (%d,%d) is NaN", j, i)
			}
			out.Set(j, i, sc.ScaleConstraint(j, v))
		}
	}
	it.consJac = cell[model.SparseMatrix]{value: out, valid: true}
	return out, nil
}

// EvaluateLagrangianHessian returns the cached Hessian of the Lagrangian at
// X under the current multipliers, evaluating it on first use after X
// changed.
func (it *Iterate) EvaluateLagrangianHessian(p model.Problem) (model.SparseMatrix, error) {
	if it.lagHess.valid {
		return it.lagHess.value, nil
	}
	h, err := p.LagrangianHessian(it.X, it.Lambda)
	if err != nil {
		return nil, fmt.Errorf("iterate: lagrangian hessian evaluation: %w", err)
	}
	if it.counters != nil {
		it.counters.LagrangianHessian++
	}
	it.lagHess = cell[model.SparseMatrix]{value: h, valid: true}
	return h, nil
}

// LagrangianGradientFlavor selects which of the two Lagrangian-gradient
// flavors EvaluateLagrangianGradient computes.
type LagrangianGradientFlavor int

const (
	// Optimality uses sigma = the problem's objective sign.
	Optimality LagrangianGradientFlavor = iota
	// Feasibility fixes sigma = 0, used by the dual termination classifier.
	Feasibility
)

// EvaluateLagrangianGradient computes g = sigma*grad f - sum_j lambda_j *
// grad c_j - (z_L + z_U), restricted to the first n coordinates, under the
// requested flavor. Callers supply a view of the multipliers rather than
// relying on the Iterate's own Lambda/ZLower/ZUpper, since the restoration
// and steering-rule code paths evaluate this gradient against trial
// multiplier sets that have not yet been accepted onto the Iterate.
func (it *Iterate) EvaluateLagrangianGradient(p model.Problem, sc *model.Scaling, flavor LagrangianGradientFlavor, objectiveSign float64, lambda []float64, zLower, zUpper map[int]float64) ([]float64, error) {
	cached := &it.lagGradOpt
	if flavor == Feasibility {
		cached = &it.lagGradFeas
	}
	if cached.valid {
		return cached.value, nil
	}

	sigma := objectiveSign
	if flavor == Feasibility {
		sigma = 0
	}

	g, err := it.EvaluateObjectiveGradient(p, sc)
	if err != nil {
		return nil, err
	}
	jac, err := it.EvaluateConstraintsJacobian(p, sc)
	if err != nil {
		return nil, err
	}

	n := len(g)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = sigma * g[i]
	}
	for j, row := range jac {
		if j >= len(lambda) {
			continue
		}
		lj := lambda[j]
		if lj == 0 {
			continue
		}
		for i, v := range row {
			if i < n {
				out[i] -= lj * v
			}
		}
	}
	for i := range out {
		out[i] -= zLower[i] + zUpper[i]
	}

	*cached = cell[[]float64]{value: out, valid: true}
	return out, nil
}

// normOf reduces v by the requested residual norm.
func normOf(v []float64, norm model.ResidualNorm) float64 {
	switch norm {
	case model.L2:
		return veclib.Dnrm2(len(v), v, 1)
	case model.LInf:
		return veclib.Damax(len(v), v, 1)
	default:
		return veclib.Dasum(len(v), v, 1)
	}
}

// UpdateProgress recomputes the (infeasibility, objective) pair a
// globalization strategy compares trial iterates against.
func (it *Iterate) UpdateProgress(p model.Problem, sc *model.Scaling, norm model.ResidualNorm) error {
	if sc == nil {
		sc = it.scaling
	}
	f, err := it.EvaluateObjective(p, sc)
	if err != nil {
		return err
	}
	c, err := it.EvaluateConstraints(p, sc)
	if err != nil {
		return err
	}
	it.Progress = Progress{
		Infeasibility: model.ConstraintViolation(p, c, norm, nil),
		Objective:     f,
	}
	return nil
}

// UpdateResiduals recomputes the five residual measures of spec.md §3 on
// an accepted iterate, per the "residuals are recomputed whenever an
// iterate is accepted" invariant. The optimality and feasibility
// complementarity measures share the same stored duals (Lambda, ZLower,
// ZUpper): the distinction the spec draws is which Lagrangian-gradient
// flavor the stationarity half of the termination test pairs them with,
// not a second independent dual solve.
func (it *Iterate) UpdateResiduals(p model.Problem, sc *model.Scaling, norm model.ResidualNorm, objectiveSign float64) error {
	if sc == nil {
		sc = it.scaling
	}
	c, err := it.EvaluateConstraints(p, sc)
	if err != nil {
		return err
	}
	it.Residuals.Infeasibility = model.ConstraintViolation(p, c, norm, nil)

	gOpt, err := it.EvaluateLagrangianGradient(p, sc, Optimality, objectiveSign, it.Lambda, it.ZLower, it.ZUpper)
	if err != nil {
		return err
	}
	it.Residuals.StationarityOpt = normOf(gOpt, norm)

	gFeas, err := it.EvaluateLagrangianGradient(p, sc, Feasibility, objectiveSign, it.Lambda, it.ZLower, it.ZUpper)
	if err != nil {
		return err
	}
	it.Residuals.StationarityFeas = normOf(gFeas, norm)

	n := p.NumVariables()
	comp := make([]float64, 0, n+p.NumConstraints())
	for i := 0; i < n; i++ {
		b := p.VariableBounds(i)
		if zl, ok := it.ZLower[i]; ok {
			comp = append(comp, zl*(it.X[i]-b.Lower))
		}
		if zu, ok := it.ZUpper[i]; ok {
			comp = append(comp, zu*(b.Upper-it.X[i]))
		}
	}
	for j, lam := range it.Lambda {
		if lam == 0 {
			continue
		}
		b := p.ConstraintBounds(j)
		switch {
		case c[j] <= b.Lower:
			comp = append(comp, lam*(c[j]-b.Lower))
		case c[j] >= b.Upper:
			comp = append(comp, lam*(b.Upper-c[j]))
		}
	}
	compNorm := normOf(comp, norm)
	it.Residuals.ComplementarityOpt = compNorm
	it.Residuals.ComplementarityFeas = compNorm
	return nil
}
