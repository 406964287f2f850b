// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package authz

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/pantry/internal/auth"
	"github.com/tomtom215/pantry/internal/logging"
)

// ErrNoAuthContext is reported when Authorize runs before authentication.
var ErrNoAuthContext = errors.New("no authentication context")

// Middleware enforces permissions for authenticated requests.
type Middleware struct {
	enforcer   *Enforcer
	writeError auth.ErrorWriter
}

// NewMiddleware creates the middleware. A nil writeError falls back to
// plain-text http.Error responses.
func NewMiddleware(enforcer *Enforcer, writeError auth.ErrorWriter) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, err error) {
			http.Error(w, err.Error(), status)
		}
	}
	return &Middleware{enforcer: enforcer, writeError: writeError}
}

// Authorize allows the request through when the caller's role may perform
// action on object. It must run after auth.Middleware.Authenticate.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				m.writeError(w, r, http.StatusUnauthorized, ErrNoAuthContext)
				return
			}

			allowed, err := m.enforcer.Enforce(claims.Role, object, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
				m.writeError(w, r, http.StatusInternalServerError, err)
				return
			}
			if !allowed {
				logging.Ctx(r.Context()).Debug().
					Str("role", string(claims.Role)).
					Str("object", object).
					Str("action", action).
					Msg("Permission denied")
				m.writeError(w, r, http.StatusForbidden,
					fmt.Errorf("role %q may not %s %s", claims.Role, action, object))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Can reports whether the request's caller may perform action on object.
// Handlers use it for decisions the route alone cannot make, such as an
// admin deleting someone else's recipe.
func (m *Middleware) Can(r *http.Request, object, action string) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return false
	}
	allowed, err := m.enforcer.Enforce(claims.Role, object, action)
	return err == nil && allowed
}
