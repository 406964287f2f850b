// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// AuthEvent describes one sign-in, sign-up or sign-out attempt.
type AuthEvent struct {
	Event    string // "signup", "login", "anonymous", "oidc_callback", "logout"
	Provider string // "password", "oidc", "anonymous"
	UserID   string
	Email    string
	IP       string
	Success  bool
	Reason   string
}

// AuthLogger writes auth events with identifying values masked.
type AuthLogger struct {
	logger zerolog.Logger
}

// NewAuthLogger creates an AuthLogger on top of the global logger.
func NewAuthLogger() *AuthLogger {
	return &AuthLogger{logger: WithComponent("auth")}
}

// NewAuthLoggerWithLogger creates an AuthLogger writing to l.
//
//nolint:gocritic // zerolog.Logger is a value type in the zerolog API
func NewAuthLoggerWithLogger(l zerolog.Logger) *AuthLogger {
	return &AuthLogger{logger: l.With().Str("component", "auth").Logger()}
}

// Log writes the event. Failures are logged at warn level.
func (a *AuthLogger) Log(ev *AuthEvent) {
	e := a.logger.Info()
	status := "success"
	if !ev.Success {
		e = a.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", ev.Event).Str("status", status)
	if ev.Provider != "" {
		e = e.Str("provider", ev.Provider)
	}
	if ev.UserID != "" {
		e = e.Str("user_id", MaskID(ev.UserID))
	}
	if ev.Email != "" {
		e = e.Str("email", MaskEmail(ev.Email))
	}
	if ev.IP != "" {
		e = e.Str("ip", ev.IP)
	}
	if ev.Reason != "" && !ev.Success {
		e = e.Str("reason", truncate(ev.Reason, 200))
	}
	e.Msg("auth event")
}

// MaskToken keeps the first and last 4 characters of a token.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// MaskID keeps the first and last 4 characters of an id.
func MaskID(id string) string {
	if len(id) <= 8 {
		if id == "" {
			return ""
		}
		return "***"
	}
	return id[:4] + "..." + id[len(id)-4:]
}

// MaskEmail keeps two characters of the local part and the domain.
// "john.doe@example.com" -> "jo***@example.com"
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	switch {
	case email == "":
		return ""
	case at <= 0:
		return "***"
	case at <= 2:
		return "***" + email[at:]
	default:
		return email[:2] + "***" + email[at:]
	}
}

// SanitizeValue strips CR/LF and truncates user-supplied text before it is logged.
func SanitizeValue(s string) string {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(s)
	return truncate(s, 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
