// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import "testing"

func TestNewOptionsDefaults(t *testing.T) {
	opts, err := NewOptions("")
	if err != nil {
		t.Fatalf("NewOptions(\"\") returned error: %v", err)
	}
	if v := opts.String("residual_norm", ""); v != "L1" {
		t.Fatalf("residual_norm default = %q, want L1", v)
	}
	if _, ok := opts["mechanism"]; ok {
		t.Fatalf("no-preset options should not set mechanism")
	}
}

func TestNewOptionsPresetOverridesDefaults(t *testing.T) {
	opts, err := NewOptions("byrd")
	if err != nil {
		t.Fatalf("NewOptions(\"byrd\") returned error: %v", err)
	}
	if got := opts.String("mechanism", ""); got != "LS" {
		t.Fatalf("byrd mechanism = %q, want LS", got)
	}
	if got := opts.String("constraint-relaxation", ""); got != "l1-relaxation" {
		t.Fatalf("byrd constraint-relaxation = %q, want l1-relaxation", got)
	}
	// ambient default not touched by the preset must survive the merge.
	if got := opts.String("tolerance", ""); got != "1e-6" {
		t.Fatalf("tolerance = %q, want ambient default 1e-6", got)
	}
}

func TestNewOptionsUnknownPreset(t *testing.T) {
	if _, err := NewOptions("not-a-preset"); err == nil {
		t.Fatalf("expected an error for an unknown preset")
	}
}

func TestOptionsSetOverridesPreset(t *testing.T) {
	opts, err := NewOptions("ipopt")
	if err != nil {
		t.Fatalf("NewOptions(\"ipopt\") returned error: %v", err)
	}
	opts.Set("mechanism", "TLS")
	if got := opts.String("mechanism", ""); got != "TLS" {
		t.Fatalf("Set should override the preset value, got %q", got)
	}
}

func TestOptionsFloatAndInt(t *testing.T) {
	opts := Options{"tolerance": "1e-8", "max_iterations": "50"}
	f, err := opts.Float("tolerance", 1e-6)
	if err != nil || f != 1e-8 {
		t.Fatalf("Float(tolerance) = (%v, %v), want (1e-8, nil)", f, err)
	}
	i, err := opts.Int("max_iterations", 1000)
	if err != nil || i != 50 {
		t.Fatalf("Int(max_iterations) = (%v, %v), want (50, nil)", i, err)
	}
	opts["tolerance"] = "not-a-number"
	if _, err := opts.Float("tolerance", 0); err == nil {
		t.Fatalf("expected a parse error for a malformed float option")
	}
}
