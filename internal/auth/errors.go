// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword wraps password policy violations.
	ErrWeakPassword = errors.New("password does not meet policy")

	// ErrInvalidEmail is returned when sign-up is attempted without a usable email.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrAnonymousDisabled is returned when anonymous sign-in is turned off.
	ErrAnonymousDisabled = errors.New("anonymous sign-in is disabled")

	// ErrOIDCDisabled is returned when no OIDC provider is configured.
	ErrOIDCDisabled = errors.New("OIDC sign-in is not configured")

	// ErrInvalidState is returned for an unknown, expired or reused OIDC state.
	ErrInvalidState = errors.New("invalid or expired OIDC state")

	// ErrTokenExchangeFailed is returned when the provider rejects the code.
	ErrTokenExchangeFailed = errors.New("OIDC token exchange failed")

	// ErrNoToken is returned when a request carries no session token.
	ErrNoToken = errors.New("no session token")

	// ErrInvalidToken is returned for a malformed, tampered or expired token.
	ErrInvalidToken = errors.New("invalid session token")
)
