// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/pantry/internal/models"
)

// ShoppingList returns the user's shopping list in insertion order.
func (s *Store) ShoppingList(ctx context.Context, userID string) ([]models.ShoppingItem, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.ShoppingList == nil {
		return []models.ShoppingItem{}, nil
	}
	return u.ShoppingList, nil
}

// AddShoppingItems appends items to the user's list and returns the new list.
// Items get a fresh id and AddedAt; items without a name are rejected.
func (s *Store) AddShoppingItems(ctx context.Context, userID string, items []models.ShoppingItem) ([]models.ShoppingItem, error) {
	for i := range items {
		if strings.TrimSpace(items[i].Name) == "" {
			return nil, fmt.Errorf("%w: shopping item %d has no name", ErrInvalidDocument, i)
		}
	}
	return s.mutateShoppingList(ctx, "shopping_add", userID, func(txn *badger.Txn, list []models.ShoppingItem) ([]models.ShoppingItem, error) {
		return append(list, s.stampItems(items, "")...), nil
	})
}

// AddRecipeToShoppingList copies every ingredient of a recipe onto the list.
func (s *Store) AddRecipeToShoppingList(ctx context.Context, userID, recipeID string) ([]models.ShoppingItem, error) {
	return s.mutateShoppingList(ctx, "shopping_add_recipe", userID, func(txn *badger.Txn, list []models.ShoppingItem) ([]models.ShoppingItem, error) {
		var r models.Recipe
		if err := getJSON(txn, recipeKeyPrefix+recipeID, &r); err != nil {
			return nil, err
		}
		items := make([]models.ShoppingItem, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				continue
			}
			items = append(items, models.ShoppingItem{Name: ing.Name, Quantity: ing.Quantity})
		}
		return append(list, s.stampItems(items, recipeID)...), nil
	})
}

// SetShoppingItemChecked marks an item as checked or unchecked.
func (s *Store) SetShoppingItemChecked(ctx context.Context, userID, itemID string, checked bool) (models.ShoppingItem, error) {
	var updated models.ShoppingItem
	_, err := s.mutateShoppingList(ctx, "shopping_check", userID, func(txn *badger.Txn, list []models.ShoppingItem) ([]models.ShoppingItem, error) {
		for i := range list {
			if list[i].ID == itemID {
				list[i].Checked = checked
				updated = list[i]
				return list, nil
			}
		}
		return nil, ErrNotFound
	})
	return updated, err
}

// RemoveShoppingItem deletes one item.
func (s *Store) RemoveShoppingItem(ctx context.Context, userID, itemID string) error {
	_, err := s.mutateShoppingList(ctx, "shopping_remove", userID, func(txn *badger.Txn, list []models.ShoppingItem) ([]models.ShoppingItem, error) {
		for i := range list {
			if list[i].ID == itemID {
				return append(list[:i], list[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
	return err
}

// ClearShoppingList removes every item, or only checked ones when
// checkedOnly is set, and returns how many were removed.
func (s *Store) ClearShoppingList(ctx context.Context, userID string, checkedOnly bool) (int, error) {
	removed := 0
	_, err := s.mutateShoppingList(ctx, "shopping_clear", userID, func(txn *badger.Txn, list []models.ShoppingItem) ([]models.ShoppingItem, error) {
		removed = 0
		if !checkedOnly {
			removed = len(list)
			return []models.ShoppingItem{}, nil
		}
		kept := make([]models.ShoppingItem, 0, len(list))
		for _, item := range list {
			if item.Checked {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		return kept, nil
	})
	return removed, err
}

func (s *Store) stampItems(items []models.ShoppingItem, recipeID string) []models.ShoppingItem {
	now := s.now()
	out := make([]models.ShoppingItem, 0, len(items))
	for _, item := range items {
		item.ID = s.newID()
		item.Name = strings.TrimSpace(item.Name)
		item.AddedAt = now
		if recipeID != "" {
			item.RecipeID = recipeID
		}
		out = append(out, item)
	}
	return out
}

func (s *Store) mutateShoppingList(ctx context.Context, op, userID string,
	fn func(txn *badger.Txn, list []models.ShoppingItem) ([]models.ShoppingItem, error),
) (list []models.ShoppingItem, err error) {
	start := time.Now()
	defer func() { observe(op, collUsers, start, err) }()

	err = s.update(ctx, func(txn *badger.Txn) error {
		var u models.User
		if err := getJSON(txn, userKeyPrefix+userID, &u); err != nil {
			return err
		}
		next, err := fn(txn, u.ShoppingList)
		if err != nil {
			return err
		}
		if next == nil {
			next = []models.ShoppingItem{}
		}
		u.ShoppingList = next
		list = next
		return setJSON(txn, userKeyPrefix+u.ID, &u)
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
