// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package auth signs users in and carries their identity through requests.

Three ways in:

  - Email and password. Passwords are checked against a PasswordPolicy and
    stored as bcrypt hashes.
  - Anonymous. A user document with role "anonymous" and no email is created,
    so saved recipes and a shopping list work before sign-up.
  - OIDC authorization-code flow through a zitadel relying party, with PKCE
    and single-use state values held for ten minutes.

Every path ends in a Session: an HS256 JWT carrying the user id, email, role
and anonymous flag. Middleware accepts the token from an
"Authorization: Bearer" header or the "token" cookie and places the claims in
the request context.

	svc := auth.NewService(st, jwtManager, auth.ServiceConfig{AdminEmail: cfg.Security.AdminEmail})
	sess, err := svc.SignUp(ctx, "cook@example.com", "correct horse", "Cook")
*/
package auth
