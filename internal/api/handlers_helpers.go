// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// sanitizeLogValue escapes control characters so user input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON writes response with status. API responses are per-user and
// never cached by intermediaries.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess writes a success envelope. start is when the handler began
// work; cached marks data served from the catalog cache.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time, cached bool) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// respondError writes an error envelope. err, when set, is logged and never
// sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		e := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			e = logging.Ctx(r.Context()).Error()
		}
		e.Str("code", code).
			Int("status", status).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondAPIError(w, status, &models.APIError{Code: code, Message: message})
}

func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    apiErr,
	})
}

// respondErr classifies err and writes the matching envelope.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	respondError(w, r, e.status, e.code, e.message, err)
}

// writeAuthError adapts respondErr to auth.ErrorWriter for the auth and
// authz middleware. status picks the code when err is not a known sentinel.
func writeAuthError(w http.ResponseWriter, r *http.Request, status int, err error) {
	e := classify(err)
	if e.code == CodeInternal && status < http.StatusInternalServerError {
		switch status {
		case http.StatusUnauthorized:
			e = apiError{status, CodeUnauthorized, "Authentication required"}
		case http.StatusForbidden:
			e = apiError{status, CodeForbidden, "You do not have permission to do this"}
		}
	}
	respondError(w, r, e.status, e.code, e.message, err)
}

// decodeJSON reads a JSON body into v and validates it. On failure the
// response has been written and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondError(w, r, http.StatusRequestEntityTooLarge, CodeBadRequest, "Request body too large", nil)
		case errors.Is(err, io.EOF):
			respondError(w, r, http.StatusBadRequest, CodeBadRequest, "Request body is required", nil)
		default:
			respondError(w, r, http.StatusBadRequest, CodeBadRequest, "Invalid JSON body", err)
		}
		return false
	}
	if apiErr := validateRequest(v); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return false
	}
	return true
}

// validateRequest validates v with go-playground/validator. It returns nil
// when v is valid.
func validateRequest(v interface{}) *models.APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// fieldError builds a single-field VALIDATION_ERROR.
func fieldError(field, message string) *models.APIError {
	return &models.APIError{
		Code:    CodeValidation,
		Message: message,
		Details: map[string]interface{}{"fields": map[string]string{field: message}},
	}
}

// parseCommaSeparated splits a comma-separated query value, dropping empty
// parts.
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
