// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/store"
)

// UserStore is the subset of the document store the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByOIDCSubject(ctx context.Context, subject string) (*models.User, error)
	LinkOIDCSubject(ctx context.Context, userID, subject string) error
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"-"`
}

// ServiceConfig holds the sign-in options.
type ServiceConfig struct {
	// AdminEmail gets the admin role on sign-up or first OIDC sign-in.
	AdminEmail     string
	AllowAnonymous bool
	Policy         PasswordPolicy
}

// Service implements sign-up and the sign-in paths on top of a UserStore.
type Service struct {
	users   UserStore
	jwt     *JWTManager
	cfg     ServiceConfig
	authLog *logging.AuthLogger

	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewService creates the auth service.
func NewService(users UserStore, jwtManager *JWTManager, cfg ServiceConfig) (*Service, error) {
	dummy, err := HashPassword("pantry-timing-equalizer")
	if err != nil {
		return nil, err
	}
	cfg.AdminEmail = store.NormalizeEmail(cfg.AdminEmail)
	return &Service{
		users:     users,
		jwt:       jwtManager,
		cfg:       cfg,
		authLog:   logging.NewAuthLogger(),
		dummyHash: dummy,
	}, nil
}

// JWT returns the token manager.
func (s *Service) JWT() *JWTManager {
	return s.jwt
}

// AnonymousAllowed reports whether anonymous sign-in is enabled.
func (s *Service) AnonymousAllowed() bool {
	return s.cfg.AllowAnonymous
}

// SignUp registers an email/password account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	email = store.NormalizeEmail(email)
	ev := &logging.AuthEvent{Event: "signup", Provider: string(models.ProviderPassword), Email: email}

	if !strings.Contains(email, "@") {
		return nil, s.fail(ev, ErrInvalidEmail)
	}
	if err := s.cfg.Policy.Validate(password, email); err != nil {
		return nil, s.fail(ev, err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, s.fail(ev, err)
	}
	u, err := s.users.CreateUser(ctx, &models.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
		Provider:     models.ProviderPassword,
		Role:         s.roleFor(email),
	})
	if err != nil {
		return nil, s.fail(ev, err)
	}
	return s.succeed(ev, u)
}

// SignIn checks an email/password pair.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = store.NormalizeEmail(email)
	ev := &logging.AuthEvent{Event: "login", Provider: string(models.ProviderPassword), Email: email}

	u, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		CheckPassword(s.dummyHash, password)
		return nil, s.fail(ev, ErrInvalidCredentials)
	case err != nil:
		return nil, s.fail(ev, err)
	}
	if u.PasswordHash == "" || !CheckPassword(u.PasswordHash, password) {
		ev.UserID = u.ID
		return nil, s.fail(ev, ErrInvalidCredentials)
	}
	return s.succeed(ev, u)
}

// SignInAnonymous creates a fresh anonymous user.
func (s *Service) SignInAnonymous(ctx context.Context) (*Session, error) {
	ev := &logging.AuthEvent{Event: "anonymous", Provider: string(models.ProviderAnonymous)}
	if !s.cfg.AllowAnonymous {
		return nil, s.fail(ev, ErrAnonymousDisabled)
	}
	u, err := s.users.CreateUser(ctx, &models.User{
		DisplayName: "Guest",
		Provider:    models.ProviderAnonymous,
		Role:        models.RoleAnonymous,
	})
	if err != nil {
		return nil, s.fail(ev, err)
	}
	return s.succeed(ev, u)
}

// OIDCIdentity is what the provider told us about the user.
type OIDCIdentity struct {
	Subject string
	Email   string
	Name    string
}

// SignInOIDC resolves an OIDC identity to a user: by subject first, then by
// email (linking the subject to the existing account), otherwise a new
// member is created.
func (s *Service) SignInOIDC(ctx context.Context, id *OIDCIdentity) (*Session, error) {
	email := store.NormalizeEmail(id.Email)
	ev := &logging.AuthEvent{Event: "oidc_callback", Provider: string(models.ProviderOIDC), Email: email}

	if id.Subject == "" {
		return nil, s.fail(ev, fmt.Errorf("%w: missing subject", ErrTokenExchangeFailed))
	}

	u, err := s.users.GetUserByOIDCSubject(ctx, id.Subject)
	if err == nil {
		return s.succeed(ev, u)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, s.fail(ev, err)
	}

	if email != "" {
		u, err = s.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			if err := s.users.LinkOIDCSubject(ctx, u.ID, id.Subject); err != nil {
				return nil, s.fail(ev, err)
			}
			u.OIDCSubject = id.Subject
			return s.succeed(ev, u)
		case !errors.Is(err, store.ErrNotFound):
			return nil, s.fail(ev, err)
		}
	}

	u, err = s.users.CreateUser(ctx, &models.User{
		Email:       email,
		DisplayName: strings.TrimSpace(id.Name),
		Provider:    models.ProviderOIDC,
		OIDCSubject: id.Subject,
		Role:        s.roleFor(email),
	})
	if err != nil {
		return nil, s.fail(ev, err)
	}
	return s.succeed(ev, u)
}

// CurrentUser loads the user a token was issued to.
func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (*models.User, error) {
	return s.users.GetUser(ctx, claims.UserID)
}

func (s *Service) roleFor(email string) models.Role {
	if s.cfg.AdminEmail != "" && email == s.cfg.AdminEmail {
		return models.RoleAdmin
	}
	return models.RoleMember
}

func (s *Service) succeed(ev *logging.AuthEvent, u *models.User) (*Session, error) {
	token, expires, err := s.jwt.GenerateToken(u)
	if err != nil {
		return nil, s.fail(ev, err)
	}
	ev.UserID = u.ID
	ev.Success = true
	s.authLog.Log(ev)
	metrics.RecordAuthAttempt(ev.Provider, true)
	return &Session{Token: token, ExpiresAt: expires, User: u}, nil
}

func (s *Service) fail(ev *logging.AuthEvent, err error) error {
	ev.Success = false
	ev.Reason = err.Error()
	s.authLog.Log(ev)
	metrics.RecordAuthAttempt(ev.Provider, false)
	return err
}
