// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package lookup

import (
	"math"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in         string
		wantAmount float64
		wantUnit   string
	}{
		{"", 1, ""},
		{"2", 2, ""},
		{"2 cups", 2, "cup"},
		{"1 1/2 tbsp", 1.5, "tbsp"},
		{"250g", 250, "g"},
		{"1/2cup", 0.5, "cup"},
		{"0.5 Pounds", 0.5, "lb"},
		{"3 large", 3, ""},
		{"a pinch", 1, ""},
		{"2 tsp.", 2, "tsp"},
		{"1/0 cup", 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			amount, unit := ParseQuantity(tt.in)
			if math.Abs(amount-tt.wantAmount) > 1e-9 || unit != tt.wantUnit {
				t.Errorf("ParseQuantity(%q) = %v %q, want %v %q", tt.in, amount, unit, tt.wantAmount, tt.wantUnit)
			}
		})
	}
}
