// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/pantry/internal/auth"
	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/models"
)

func TestMiddleware_Authorize(t *testing.T) {
	t.Parallel()

	jm, err := auth.NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "this_is_a_very_long_secret_key_for_testing_purposes_12345",
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	authn := auth.NewMiddleware(jm, nil)
	authz := NewMiddleware(newTestEnforcer(t, nil), nil)

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	upload := authn.Authenticate(authz.Authorize(ObjRecipes, ActWrite)(ok))

	tests := []struct {
		role models.Role
		want int
	}{
		{models.RoleAnonymous, http.StatusForbidden},
		{models.RoleMember, http.StatusNoContent},
		{models.RoleAdmin, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			t.Parallel()
			token, _, err := jm.GenerateToken(&models.User{ID: "u1", Role: tt.role})
			if err != nil {
				t.Fatal(err)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes", http.NoBody)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			upload.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	t.Run("without authentication", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		authz.Authorize(ObjRecipes, ActRead)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestMiddleware_Can(t *testing.T) {
	t.Parallel()
	m := NewMiddleware(newTestEnforcer(t, nil), nil)

	if m.Can(httptest.NewRequest(http.MethodGet, "/", http.NoBody), ObjRecipes, ActRead) {
		t.Error("Can() without claims should be false")
	}

	var got bool
	h := auth.NewMiddleware(mustJWT(t), nil).Authenticate(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = m.Can(r, ObjRecipes, ActDelete)
	}))
	token, _, _ := mustJWT(t).GenerateToken(&models.User{ID: "boss", Role: models.RoleAdmin})
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/recipes/x", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !got {
		t.Error("admin should be able to delete recipes")
	}
}

func mustJWT(t *testing.T) *auth.JWTManager {
	t.Helper()
	jm, err := auth.NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "this_is_a_very_long_secret_key_for_testing_purposes_12345",
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	return jm
}
