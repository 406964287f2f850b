// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"no-at-sign", "***"},
		{"@example.com", "***"},
	}
	for _, tt := range tests {
		if got := MaskEmail(tt.in); got != tt.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskTokenAndID(t *testing.T) {
	t.Parallel()

	if got := MaskToken("short"); got != "***" {
		t.Errorf("MaskToken(short) = %q", got)
	}
	if got := MaskToken("eyJhbGciOiJIUzI1NiJ9.payload"); got != "eyJh...load" {
		t.Errorf("MaskToken = %q", got)
	}
	if got := MaskID("7f1c2d3e-aaaa-bbbb-cccc-0123456789ab"); got != "7f1c...89ab" {
		t.Errorf("MaskID = %q", got)
	}
	if got := MaskID(""); got != "" {
		t.Errorf("MaskID(\"\") = %q", got)
	}
}

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	if got := SanitizeValue("line1\r\nfake entry"); got != "line1fake entry" {
		t.Errorf("SanitizeValue = %q", got)
	}
	long := strings.Repeat("x", 300)
	if got := SanitizeValue(long); len(got) != 203 {
		t.Errorf("len = %d, want 203", len(got))
	}
}

func TestAuthLogger_Log(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	al := NewAuthLoggerWithLogger(NewTestLogger(&buf))

	al.Log(&AuthEvent{Event: "login", Provider: "password", Email: "alice@example.com", IP: "10.0.0.1", Success: true})
	out := buf.String()
	for _, want := range []string{`"status":"success"`, `"email":"al***@example.com"`, `"component":"auth"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}

	buf.Reset()
	al.Log(&AuthEvent{Event: "login", Provider: "password", Success: false, Reason: "bad password"})
	out = buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"reason":"bad password"`) {
		t.Errorf("failed event not logged at warn with reason: %s", out)
	}
}
