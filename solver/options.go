// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver owns the option map, logging/statistics, termination
// classifier and driver loop that compose a Mechanism, a
// ConstraintRelaxation and a Subproblem into a runnable solve.
package solver

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Options is the flat key->string dictionary of spec.md §6: unknown keys
// are accepted for forward compatibility, and typed accessors parse on
// read rather than at load time.
type Options map[string]string

// presets seeds the option map for the three named configurations of
// spec.md §6's CLI surface; later -option entries always override.
var presets = map[string]Options{
	"ipopt": {
		"mechanism":             "TR",
		"constraint-relaxation": "feasibility-restoration",
		"strategy":              "filter",
		"subproblem":            "primal_dual_interior_point",
		"hessian_model":         "exact",
	},
	"filtersqp": {
		"mechanism":             "LS",
		"constraint-relaxation": "feasibility-restoration",
		"strategy":              "filter",
		"subproblem":            "QP",
		"hessian_model":         "BFGS",
	},
	"byrd": {
		"mechanism":                        "LS",
		"constraint-relaxation":            "l1-relaxation",
		"strategy":                         "l1-penalty",
		"subproblem":                       "QP",
		"hessian_model":                    "BFGS",
		"l1_relaxation_initial_parameter":  "10",
		"l1_relaxation_epsilon1":           "0.1",
		"l1_relaxation_epsilon2":           "0.1",
	},
}

// defaults covers the tuning keys every preset leaves unset.
var defaults = Options{
	"tolerance":                "1e-6",
	"max_iterations":           "1000",
	"small_step_factor":        "100",
	"filter_Beta":              "0.99999",
	"filter_Gamma":             "1e-5",
	"armijo_decrease_fraction": "1e-4",
	"LS_backtracking_ratio":    "0.5",
	"TR_radius":                "1.0",
	"proximal_coefficient":     "0",
	"residual_norm":            "L1",
}

// NewOptions returns the merged default option map for the named preset
// ("" selects no preset, only the ambient defaults). Unknown preset names
// are an option error.
func NewOptions(preset string) (Options, error) {
	out := make(Options, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	if preset == "" {
		return out, nil
	}
	p, ok := presets[preset]
	if !ok {
		return nil, &OptionError{Msg: fmt.Sprintf("unknown preset %q", preset)}
	}
	for k, v := range p {
		out[k] = v
	}
	return out, nil
}

// LoadConfigFile merges a YAML key->string document into o, giving its
// entries priority over whatever o already holds (the "--config"
// precedence level of spec.md §6, below explicit --option flags).
func (o Options) LoadConfigFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &OptionError{Msg: fmt.Sprintf("reading config file %s: %v", path, err)}
	}
	var doc map[string]string
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return &OptionError{Msg: fmt.Sprintf("parsing config file %s: %v", path, err)}
	}
	for k, v := range doc {
		o[k] = v
	}
	return nil
}

// Set installs a single "-option key value" override, the highest
// priority level in spec.md §6's merge order.
func (o Options) Set(key, value string) { o[key] = value }

func (o Options) String(key, fallback string) string {
	if v, ok := o[key]; ok {
		return v
	}
	return fallback
}

func (o Options) Float(key string, fallback float64) (float64, error) {
	v, ok := o[key]
	if !ok {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &OptionError{Msg: fmt.Sprintf("option %s: %v", key, err)}
	}
	return f, nil
}

func (o Options) Int(key string, fallback int) (int, error) {
	v, ok := o[key]
	if !ok {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, &OptionError{Msg: fmt.Sprintf("option %s: %v", key, err)}
	}
	return i, nil
}
