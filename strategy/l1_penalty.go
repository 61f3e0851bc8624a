// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strategy

// L1Penalty is the l1-penalty merit globalization strategy: stateless
// between iterations except the unconditional Armijo constant, per
// spec.md §4.4.b. Mu is the current l1-relaxation penalty parameter,
// updated externally by relax.L1Relaxation's steering rule before each
// CheckAcceptance call.
type L1Penalty struct {
	Eta float64 // Armijo constant in (0, 1/2)
	Mu  float64
}

// NewL1Penalty creates an L1Penalty strategy with the given Armijo
// constant; Mu starts at zero and is set by the caller before use.
func NewL1Penalty(eta float64) *L1Penalty {
	return &L1Penalty{Eta: eta}
}

func (l1 *L1Penalty) Initialize(current Progress) {}
func (l1 *L1Penalty) Reset()                      {}
func (l1 *L1Penalty) Notify(current Progress)     {}

// SetMu installs the current l1-relaxation penalty parameter; called by
// relax.L1Relaxation's steering rule before every CheckAcceptance so the
// merit function always compares against the mu that produced the step.
func (l1 *L1Penalty) SetMu(mu float64) { l1.Mu = mu }

// CheckAcceptance implements phi_mu(x) - phi_mu(x+alpha*d) >= eta*alpha*p
// where phi_mu = mu*f + h, using the Progress pair's objective/
// infeasibility fields directly as f and h. predictedReduction is the
// model decrease already evaluated at alpha (PredictedReduction.Optimality
// folds alpha in), so it stands for alpha*p and is compared undivided.
func (l1 *L1Penalty) CheckAcceptance(current, trial Progress, predictedReduction, sigma float64) bool {
	phiCurrent := l1.Mu*current.Objective + current.Infeasibility
	phiTrial := l1.Mu*trial.Objective + trial.Infeasibility
	return phiCurrent-phiTrial >= l1.Eta*predictedReduction
}
