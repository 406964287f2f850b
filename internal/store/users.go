// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/pantry/internal/models"
)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new user. The email is normalized and must be unique;
// anonymous users have no email. An id and creation time are assigned when
// missing.
func (s *Store) CreateUser(ctx context.Context, in *models.User) (user *models.User, err error) {
	start := time.Now()
	defer func() { observe("create", collUsers, start, err) }()

	u := *in
	u.Email = NormalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = s.newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	if !u.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidDocument, u.Role)
	}
	if u.SavedRecipes == nil {
		u.SavedRecipes = []string{}
	}
	if u.UploadedRecipes == nil {
		u.UploadedRecipes = []string{}
	}
	if u.ShoppingList == nil {
		u.ShoppingList = []models.ShoppingItem{}
	}

	err = s.update(ctx, func(txn *badger.Txn) error {
		if u.Email != "" {
			_, err := getString(txn, userEmailKeyPrefix+u.Email)
			if err == nil {
				return ErrEmailTaken
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			if err := txn.Set([]byte(userEmailKeyPrefix+u.Email), []byte(u.ID)); err != nil {
				return fmt.Errorf("set email index: %w", err)
			}
		}
		if u.OIDCSubject != "" {
			if err := txn.Set([]byte(userOIDCKeyPrefix+u.OIDCSubject), []byte(u.ID)); err != nil {
				return fmt.Errorf("set oidc index: %w", err)
			}
		}
		return setJSON(txn, userKeyPrefix+u.ID, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (user *models.User, err error) {
	start := time.Now()
	defer func() { observe("get", collUsers, start, err) }()

	var u models.User
	err = s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, userKeyPrefix+id, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail looks a user up through the email index.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserByIndex(ctx, "get_by_email", userEmailKeyPrefix+NormalizeEmail(email))
}

// GetUserByOIDCSubject looks a user up through the OIDC subject index.
func (s *Store) GetUserByOIDCSubject(ctx context.Context, subject string) (*models.User, error) {
	if subject == "" {
		return nil, ErrNotFound
	}
	return s.getUserByIndex(ctx, "get_by_oidc", userOIDCKeyPrefix+subject)
}

func (s *Store) getUserByIndex(ctx context.Context, op, indexKey string) (user *models.User, err error) {
	start := time.Now()
	defer func() { observe(op, collUsers, start, err) }()

	var u models.User
	err = s.view(ctx, func(txn *badger.Txn) error {
		id, err := getString(txn, indexKey)
		if err != nil {
			return err
		}
		return getJSON(txn, userKeyPrefix+id, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// LinkOIDCSubject attaches an OIDC subject to an existing user, so a user who
// signed up with a password can later sign in through the provider.
func (s *Store) LinkOIDCSubject(ctx context.Context, userID, subject string) (err error) {
	start := time.Now()
	defer func() { observe("link_oidc", collUsers, start, err) }()

	return s.update(ctx, func(txn *badger.Txn) error {
		var u models.User
		if err := getJSON(txn, userKeyPrefix+userID, &u); err != nil {
			return err
		}
		if u.OIDCSubject == subject {
			return nil
		}
		if u.OIDCSubject != "" {
			if err := deleteKey(txn, userOIDCKeyPrefix+u.OIDCSubject); err != nil {
				return err
			}
		}
		u.OIDCSubject = subject
		if err := txn.Set([]byte(userOIDCKeyPrefix+subject), []byte(u.ID)); err != nil {
			return fmt.Errorf("set oidc index: %w", err)
		}
		return setJSON(txn, userKeyPrefix+u.ID, &u)
	})
}

// SaveRecipe adds recipeID to the user's saved list. Saving twice is a no-op.
func (s *Store) SaveRecipe(ctx context.Context, userID, recipeID string) (err error) {
	start := time.Now()
	defer func() { observe("save_recipe", collUsers, start, err) }()

	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(recipeKeyPrefix + recipeID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		var u models.User
		if err := getJSON(txn, userKeyPrefix+userID, &u); err != nil {
			return err
		}
		if containsString(u.SavedRecipes, recipeID) {
			return nil
		}
		u.SavedRecipes = append(u.SavedRecipes, recipeID)
		return setJSON(txn, userKeyPrefix+u.ID, &u)
	})
}

// UnsaveRecipe removes recipeID from the user's saved list. Removing an id
// that is not saved is a no-op.
func (s *Store) UnsaveRecipe(ctx context.Context, userID, recipeID string) (err error) {
	start := time.Now()
	defer func() { observe("unsave_recipe", collUsers, start, err) }()

	return s.update(ctx, func(txn *badger.Txn) error {
		var u models.User
		if err := getJSON(txn, userKeyPrefix+userID, &u); err != nil {
			return err
		}
		var removed bool
		u.SavedRecipes, removed = removeString(u.SavedRecipes, recipeID)
		if !removed {
			return nil
		}
		return setJSON(txn, userKeyPrefix+u.ID, &u)
	})
}

// SavedRecipes expands the user's saved ids into recipes, in saved order.
func (s *Store) SavedRecipes(ctx context.Context, userID string) ([]models.Recipe, error) {
	return s.expandUserList(ctx, "saved_recipes", userID, func(u *models.User) []string { return u.SavedRecipes })
}

// UploadedRecipes expands the user's uploaded ids into recipes, in upload order.
func (s *Store) UploadedRecipes(ctx context.Context, userID string) ([]models.Recipe, error) {
	return s.expandUserList(ctx, "uploaded_recipes", userID, func(u *models.User) []string { return u.UploadedRecipes })
}

func (s *Store) expandUserList(ctx context.Context, op, userID string, ids func(*models.User) []string) (recipes []models.Recipe, err error) {
	start := time.Now()
	defer func() { observe(op, collUsers, start, err) }()

	err = s.view(ctx, func(txn *badger.Txn) error {
		var u models.User
		if err := getJSON(txn, userKeyPrefix+userID, &u); err != nil {
			return err
		}
		var err error
		recipes, err = expandRecipes(txn, ids(&u))
		return err
	})
	if err != nil {
		return nil, err
	}
	return recipes, nil
}
