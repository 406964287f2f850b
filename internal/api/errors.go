// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/pantry/internal/auth"
	"github.com/tomtom215/pantry/internal/lookup"
	"github.com/tomtom215/pantry/internal/store"
	"github.com/tomtom215/pantry/internal/validation"
)

// Error codes of the envelope.
const (
	CodeValidation         = validation.CodeValidationError
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeUpstream           = "UPSTREAM_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrServiceUnavailable is returned when an optional dependency was not wired.
var ErrServiceUnavailable = errors.New("service unavailable")

// apiError is the status, code and client-facing message for an error.
type apiError struct {
	status  int
	code    string
	message string
}

// errorMapping is checked in order with errors.Is. Messages of client
// errors are safe to show; internal failures fall through to
// CodeInternal.
var errorMapping = []struct {
	target error
	apiError
}{
	{store.ErrNotFound, apiError{http.StatusNotFound, CodeNotFound, "Not found"}},
	{lookup.ErrNoMatch, apiError{http.StatusNotFound, CodeNotFound, "No match found for the query"}},
	{store.ErrEmailTaken, apiError{http.StatusConflict, CodeConflict, "Email is already registered"}},
	{store.ErrInvalidRating, apiError{http.StatusBadRequest, CodeValidation, "Rating must be between 1 and 5"}},
	{store.ErrInvalidDocument, apiError{http.StatusBadRequest, CodeValidation, ""}},
	{auth.ErrWeakPassword, apiError{http.StatusBadRequest, CodeValidation, ""}},
	{auth.ErrInvalidEmail, apiError{http.StatusBadRequest, CodeValidation, "A valid email address is required"}},
	{lookup.ErrEmptyQuery, apiError{http.StatusBadRequest, CodeValidation, "Query is required"}},
	{store.ErrForbidden, apiError{http.StatusForbidden, CodeForbidden, "You may not modify this resource"}},
	{auth.ErrAnonymousDisabled, apiError{http.StatusForbidden, CodeForbidden, "Anonymous sign-in is disabled"}},
	{auth.ErrInvalidCredentials, apiError{http.StatusUnauthorized, CodeUnauthorized, "Invalid email or password"}},
	{auth.ErrNoToken, apiError{http.StatusUnauthorized, CodeUnauthorized, "Authentication required"}},
	{auth.ErrInvalidToken, apiError{http.StatusUnauthorized, CodeUnauthorized, "Session is invalid or expired"}},
	{auth.ErrInvalidState, apiError{http.StatusUnauthorized, CodeUnauthorized, "Sign-in request expired, please try again"}},
	{auth.ErrTokenExchangeFailed, apiError{http.StatusUnauthorized, CodeUnauthorized, "Sign-in with the identity provider failed"}},
	{auth.ErrOIDCDisabled, apiError{http.StatusServiceUnavailable, CodeServiceUnavailable, "Single sign-on is not configured"}},
	{lookup.ErrNotConfigured, apiError{http.StatusServiceUnavailable, CodeServiceUnavailable, "This lookup is not configured"}},
	{ErrServiceUnavailable, apiError{http.StatusServiceUnavailable, CodeServiceUnavailable, "Service unavailable"}},
	{gobreaker.ErrOpenState, apiError{http.StatusServiceUnavailable, CodeServiceUnavailable, "Upstream temporarily unavailable"}},
	{gobreaker.ErrTooManyRequests, apiError{http.StatusServiceUnavailable, CodeServiceUnavailable, "Upstream temporarily unavailable"}},
	{context.DeadlineExceeded, apiError{http.StatusGatewayTimeout, CodeUpstream, "Request timed out"}},
}

// classify maps err to its envelope error. Validation-like errors without a
// fixed message expose err's own text.
func classify(err error) apiError {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			e := m.apiError
			if e.message == "" {
				e.message = err.Error()
			}
			return e
		}
	}
	var upErr *lookup.UpstreamError
	if errors.As(err, &upErr) {
		return apiError{http.StatusBadGateway, CodeUpstream, "Upstream " + upErr.Upstream + " failed"}
	}
	return apiError{http.StatusInternalServerError, CodeInternal, "Internal server error"}
}
