// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tomtom215/pantry/internal/cache"
	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/logging"
)

// StateTTL is how long an authorization request may take to come back.
const StateTTL = 10 * time.Minute

// pendingLogin is kept per state value until the callback consumes it.
type pendingLogin struct {
	codeVerifier string
	redirect     string
}

// OIDCFlow runs the authorization-code flow with PKCE against one provider.
type OIDCFlow struct {
	states   *cache.Cache
	redirect string

	authURL  func(state, codeChallenge string) string
	exchange func(ctx context.Context, code, codeVerifier string) (*OIDCIdentity, error)
}

// NewOIDCFlow performs provider discovery and returns a ready flow. The
// context bounds the discovery request only.
func NewOIDCFlow(ctx context.Context, cfg *config.OIDCConfig, httpClient *http.Client) (*OIDCFlow, error) {
	if !cfg.Enabled {
		return nil, ErrOIDCDisabled
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.IssuerURL,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		cfg.Scopes,
		rp.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create relying party: %w", err)
	}

	f := newOIDCFlow(cfg.PostLoginRedirect,
		func(state, challenge string) string {
			return rp.AuthURL(state, relyingParty, rp.WithCodeChallenge(challenge))
		},
		func(ctx context.Context, code, verifier string) (*OIDCIdentity, error) {
			tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, relyingParty, rp.WithCodeVerifier(verifier))
			if err != nil {
				return nil, err
			}
			if tokens.IDTokenClaims == nil {
				return nil, fmt.Errorf("no ID token in response")
			}
			c := tokens.IDTokenClaims
			name := c.Name
			if name == "" {
				name = c.PreferredUsername
			}
			return &OIDCIdentity{Subject: c.Subject, Email: c.Email, Name: name}, nil
		},
	)

	logging.Info().
		Str("issuer", relyingParty.Issuer()).
		Strs("scopes", cfg.Scopes).
		Msg("OIDC relying party initialized")
	return f, nil
}

func newOIDCFlow(
	postLoginRedirect string,
	authURL func(state, codeChallenge string) string,
	exchange func(ctx context.Context, code, codeVerifier string) (*OIDCIdentity, error),
) *OIDCFlow {
	if postLoginRedirect == "" {
		postLoginRedirect = "/"
	}
	return &OIDCFlow{
		states:   cache.NewWithCleanup("oidc_state", StateTTL, time.Minute),
		redirect: postLoginRedirect,
		authURL:  authURL,
		exchange: exchange,
	}
}

// AuthorizationURL returns the provider URL to send the browser to, and the
// state value that must come back on the callback.
func (f *OIDCFlow) AuthorizationURL() (authURL, state string, err error) {
	state, err = generateSecureRandom(32)
	if err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	verifier, err := generateSecureRandom(48)
	if err != nil {
		return "", "", fmt.Errorf("generate code verifier: %w", err)
	}
	f.states.Set(state, &pendingLogin{codeVerifier: verifier, redirect: f.redirect})

	logging.Debug().Str("state", logging.MaskToken(state)).Msg("Generated OIDC authorization URL")
	return f.authURL(state, oidc.NewSHACodeChallenge(verifier)), state, nil
}

// Exchange consumes state and trades code for the user's identity. It
// returns the post-login redirect along with the identity. A state value
// can only be used once.
func (f *OIDCFlow) Exchange(ctx context.Context, code, state string) (*OIDCIdentity, string, error) {
	v, ok := f.states.Take(state)
	if !ok || state == "" {
		return nil, "", ErrInvalidState
	}
	pending, ok := v.(*pendingLogin)
	if !ok {
		return nil, "", ErrInvalidState
	}
	if code == "" {
		return nil, "", fmt.Errorf("%w: missing code", ErrTokenExchangeFailed)
	}

	id, err := f.exchange(ctx, code, pending.codeVerifier)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Token exchange failed")
		return nil, "", fmt.Errorf("%w: %w", ErrTokenExchangeFailed, err)
	}
	return id, pending.redirect, nil
}

// Close stops the state cleanup goroutine.
func (f *OIDCFlow) Close() {
	f.states.Close()
}

func generateSecureRandom(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
