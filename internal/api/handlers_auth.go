// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/pantry/internal/auth"
	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/models"
)

// SessionResponse is returned by every sign-in endpoint. The token is also
// set as an HTTP-only cookie.
type SessionResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      models.UserProfile `json:"user"`
}

func (h *Handler) startSession(w http.ResponseWriter, sess *auth.Session, status int, start time.Time) {
	auth.SetSessionCookie(w, sess, h.cfg.Security.CookieSecure)
	respondSuccess(w, status, SessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User.Profile(),
	}, start, false)
}

// SignUp creates an email/password account and signs it in.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.startSession(w, sess, http.StatusCreated, start)
}

// Login signs in with email and password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.startSession(w, sess, http.StatusOK, start)
}

// Anonymous creates a guest account.
func (h *Handler) Anonymous(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, err := h.auth.SignInAnonymous(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.startSession(w, sess, http.StatusCreated, start)
}

// Logout clears the session cookie. Tokens are stateless, so a bearer token
// stays valid until it expires.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSessionCookie(w, h.cfg.Security.CookieSecure)
	respondSuccess(w, http.StatusOK, map[string]bool{"logged_out": true}, time.Now(), false)
}

// OIDCLogin redirects the browser to the identity provider.
func (h *Handler) OIDCLogin(w http.ResponseWriter, r *http.Request) {
	if h.oidc == nil {
		respondErr(w, r, auth.ErrOIDCDisabled)
		return
	}
	authURL, _, err := h.oidc.AuthorizationURL()
	if err != nil {
		respondErr(w, r, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OIDCCallback finishes the authorization-code flow, sets the session cookie
// and redirects to the post-login page.
func (h *Handler) OIDCCallback(w http.ResponseWriter, r *http.Request) {
	if h.oidc == nil {
		respondErr(w, r, auth.ErrOIDCDisabled)
		return
	}
	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		respondErr(w, r, fmt.Errorf("%w: provider returned %s", auth.ErrTokenExchangeFailed, sanitizeLogValue(providerErr)))
		return
	}

	identity, redirect, err := h.oidc.Exchange(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	sess, err := h.auth.SignInOIDC(r.Context(), identity)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	auth.SetSessionCookie(w, sess, h.cfg.Security.CookieSecure)
	logging.Ctx(r.Context()).Info().Str("user_id", logging.MaskID(sess.User.ID)).Msg("OIDC sign-in complete")
	http.Redirect(w, r, redirect, http.StatusFound)
}

// Me returns the caller's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	u, err := h.auth.CurrentUser(r.Context(), claims(r.Context()))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, u.Profile(), start, false)
}
