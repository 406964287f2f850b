// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/pantry/internal/explorer"
	"github.com/tomtom215/pantry/internal/models"
)

// CreateRecipe stores a new recipe by authorID. The id, author, timestamps
// and rating aggregate are assigned here, whatever the input carries. The id
// is appended to the author's uploaded list in the same transaction.
func (s *Store) CreateRecipe(ctx context.Context, authorID string, in *models.Recipe) (rec *models.Recipe, err error) {
	start := time.Now()
	defer func() { observe("create", collRecipes, start, err) }()

	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: recipe name is required", ErrInvalidDocument)
	}

	now := s.now()
	r := *in
	r.ID = s.newID()
	r.Name = strings.TrimSpace(r.Name)
	r.AuthorID = authorID
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Rating, r.RatingCount, r.RatingSum = 0, 0, 0
	r.Normalize()

	err = s.update(ctx, func(txn *badger.Txn) error {
		var author models.User
		if err := getJSON(txn, userKeyPrefix+authorID, &author); err != nil {
			return fmt.Errorf("load author: %w", err)
		}
		author.UploadedRecipes = append(author.UploadedRecipes, r.ID)
		if err := setJSON(txn, recipeKeyPrefix+r.ID, &r); err != nil {
			return err
		}
		return setJSON(txn, userKeyPrefix+author.ID, &author)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRecipe returns a recipe by id.
func (s *Store) GetRecipe(ctx context.Context, id string) (rec *models.Recipe, err error) {
	start := time.Now()
	defer func() { observe("get", collRecipes, start, err) }()

	var r models.Recipe
	err = s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, recipeKeyPrefix+id, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRecipes returns every recipe ordered by creation time, then id.
func (s *Store) ListRecipes(ctx context.Context) (recipes []models.Recipe, err error) {
	start := time.Now()
	defer func() { observe("list", collRecipes, start, err) }()

	recipes = []models.Recipe{}
	err = s.view(ctx, func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(recipeKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var r models.Recipe
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			recipes = append(recipes, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recipes, func(i, j int) bool {
		if !recipes[i].CreatedAt.Equal(recipes[j].CreatedAt) {
			return recipes[i].CreatedAt.Before(recipes[j].CreatedAt)
		}
		return recipes[i].ID < recipes[j].ID
	})
	return recipes, nil
}

// DeleteRecipe removes a recipe. Only its author or an admin may delete it.
// The id is removed from the author's uploaded list; other users' saved
// lists keep the dangling id and expansion skips it.
func (s *Store) DeleteRecipe(ctx context.Context, id, actorID string, admin bool) (err error) {
	start := time.Now()
	defer func() { observe("delete", collRecipes, start, err) }()

	return s.update(ctx, func(txn *badger.Txn) error {
		var r models.Recipe
		if err := getJSON(txn, recipeKeyPrefix+id, &r); err != nil {
			return err
		}
		if !admin && r.AuthorID != actorID {
			return ErrForbidden
		}
		if err := deleteKey(txn, recipeKeyPrefix+id); err != nil {
			return err
		}

		var author models.User
		err := getJSON(txn, userKeyPrefix+r.AuthorID, &author)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var removed bool
		author.UploadedRecipes, removed = removeString(author.UploadedRecipes, id)
		if !removed {
			return nil
		}
		return setJSON(txn, userKeyPrefix+author.ID, &author)
	})
}

// RateRecipe records userID's vote of 1 to 5 stars. A second vote by the same
// user replaces the first. Returns the updated recipe.
func (s *Store) RateRecipe(ctx context.Context, userID, recipeID string, stars int) (rec *models.Recipe, err error) {
	start := time.Now()
	defer func() { observe("rate", collRecipes, start, err) }()

	if stars < 1 || stars > models.MaxRating {
		return nil, ErrInvalidRating
	}

	var r models.Recipe
	err = s.update(ctx, func(txn *badger.Txn) error {
		r = models.Recipe{}
		if err := getJSON(txn, recipeKeyPrefix+recipeID, &r); err != nil {
			return err
		}
		var u models.User
		if err := getJSON(txn, userKeyPrefix+userID, &u); err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if u.Ratings == nil {
			u.Ratings = map[string]int{}
		}

		r.ApplyVote(stars, u.Ratings[recipeID])
		r.UpdatedAt = s.now()
		u.Ratings[recipeID] = stars

		if err := setJSON(txn, recipeKeyPrefix+r.ID, &r); err != nil {
			return err
		}
		return setJSON(txn, userKeyPrefix+u.ID, &u)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Catalog returns every recipe as the explorer payload.
func (s *Store) Catalog(ctx context.Context) (*models.RecipeList, error) {
	recipes, err := s.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	return &models.RecipeList{Recipes: recipes}, nil
}

// Fetcher returns an explorer.Fetcher reading the catalog from the store.
func (s *Store) Fetcher() explorer.Fetcher {
	return s.Catalog
}

// expandRecipes loads the recipes for ids in order, skipping ids that no
// longer exist.
func expandRecipes(txn *badger.Txn, ids []string) ([]models.Recipe, error) {
	out := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		var r models.Recipe
		err := getJSON(txn, recipeKeyPrefix+id, &r)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
