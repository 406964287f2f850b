// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const catalog = `{"status":"success","data":{"recipes":[
	{"id":"1","name":"Veggie Chili","ingredients":[],"steps":["Soften the onions."],"tags":{"vegan":true,"spicy":true},"rating":4.5},
	{"id":"2","name":"Beef Chili","ingredients":[],"steps":["Brown the beef."],"tags":{"spicy":true},"rating":3},
	{"id":"3","name":"Fruit Salad","ingredients":[],"steps":[],"tags":{"vegan":true},"rating":0}
]}}`

func catalogServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	srv := catalogServer(t, http.StatusOK, catalog)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "everything",
			args: nil,
			want: []string{"3 of 3 recipes", "Veggie Chili", "Soften the onions.", "[ ] spicy", "[ ] vegan"},
		},
		{
			name:    "include and exclude",
			args:    []string{"-include", "vegan", "-exclude", "spicy"},
			want:    []string{"1 of 3 recipes", "Fruit Salad", "[+] vegan", "[-] spicy"},
			notWant: []string{"Veggie Chili", "Beef Chili"},
		},
		{
			name:    "tag query narrows the panel only",
			args:    []string{"-tag-q", "VEG"},
			want:    []string{"3 of 3 recipes", "[ ] vegan"},
			notWant: []string{"spicy"},
		},
		{
			name: "nothing matches",
			args: []string{"-q", "lasagna"},
			want: []string{"No recipes match (3 in catalog)."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			args := append([]string{"-url", srv.URL}, tt.args...)
			if code := run(context.Background(), args, &out, &errOut); code != 0 {
				t.Fatalf("exit code = %d, stderr = %s", code, errOut.String())
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out.String(), nw) {
					t.Errorf("output should not contain %q:\n%s", nw, out.String())
				}
			}
		})
	}
}

func TestRun_FetchFailure(t *testing.T) {
	srv := catalogServer(t, http.StatusInternalServerError, `{"status":"error"}`)

	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"-url", srv.URL}, &out, &errOut); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out.String(), "Could not load recipes") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_BadFlags(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"-nope"}, &out, &errOut); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if code := run(context.Background(), []string{"extra"}, &out, &errOut); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("truncate long = %q", got)
	}
}
