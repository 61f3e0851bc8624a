// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "testing"

func TestParseResidualNorm(t *testing.T) {
	cases := []struct {
		in   string
		want ResidualNorm
	}{
		{"L1", L1},
		{"L2", L2},
		{"LInf", LInf},
		{"", L1},
		{"bogus", L1},
	}
	for _, c := range cases {
		if got := ParseResidualNorm(c.in); got != c.want {
			t.Errorf("ParseResidualNorm(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
