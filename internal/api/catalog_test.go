// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/pantry/internal/models"
)

// blockingLoader blocks each load until release is closed or the load's own
// context ends.
type blockingLoader struct {
	started  chan struct{}
	release  chan struct{}
	calls    atomic.Int32
	canceled atomic.Bool
}

func newBlockingLoader() *blockingLoader {
	return &blockingLoader{started: make(chan struct{}, 4), release: make(chan struct{})}
}

func (l *blockingLoader) load(ctx context.Context) (*models.RecipeList, error) {
	l.calls.Add(1)
	l.started <- struct{}{}
	select {
	case <-l.release:
		return &models.RecipeList{Recipes: []models.Recipe{{ID: "r1", Name: "Soup"}}}, nil
	case <-ctx.Done():
		l.canceled.Store(true)
		return nil, ctx.Err()
	}
}

func waitStarted(t *testing.T, l *blockingLoader) {
	t.Helper()
	select {
	case <-l.started:
	case <-time.After(2 * time.Second):
		t.Fatal("catalog load never started")
	}
}

func TestCatalogCache_CanceledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	loader := newBlockingLoader()
	c := newCatalogCache(time.Minute, loader.load)
	t.Cleanup(c.close)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, _, err := c.get(firstCtx)
		firstErr <- err
	}()
	waitStarted(t, loader)

	cancelFirst()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("first caller error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("canceled caller kept waiting")
	}

	type result struct {
		list *models.RecipeList
		err  error
	}
	second := make(chan result, 1)
	go func() {
		list, _, err := c.get(context.Background())
		second <- result{list, err}
	}()
	close(loader.release)

	select {
	case res := <-second:
		if res.err != nil {
			t.Fatalf("second caller error = %v", res.err)
		}
		if len(res.list.Recipes) != 1 || res.list.Recipes[0].ID != "r1" {
			t.Errorf("second caller list = %+v", res.list)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never returned")
	}
	if loader.canceled.Load() {
		t.Error("shared load saw the first caller's cancellation")
	}

	list, hit, err := c.get(context.Background())
	if err != nil || !hit || len(list.Recipes) != 1 {
		t.Errorf("get after load = (%v, hit %v, %v), want cached catalog", list, hit, err)
	}
}

func TestCatalogCache_SharedLoadIsBounded(t *testing.T) {
	t.Parallel()

	loader := newBlockingLoader()
	c := newCatalogCache(time.Minute, loader.load)
	c.timeout = 20 * time.Millisecond
	t.Cleanup(c.close)

	_, _, err := c.get(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("get() error = %v, want context.DeadlineExceeded", err)
	}
	if !loader.canceled.Load() {
		t.Error("load should have been stopped by the timeout")
	}
}

func TestCatalogCache_Disabled(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newCatalogCache(0, func(context.Context) (*models.RecipeList, error) {
		calls.Add(1)
		return &models.RecipeList{}, nil
	})
	for i := 0; i < 2; i++ {
		if _, hit, err := c.get(context.Background()); err != nil || hit {
			t.Fatalf("get() = hit %v, err %v", hit, err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("loads = %d, want 2 with caching disabled", calls.Load())
	}
}
