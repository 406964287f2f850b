// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package lookup

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/metrics"
	"github.com/tomtom215/pantry/internal/models"
)

func newTestService(t *testing.T, f *fakeUpstreams, mutate func(*config.LookupConfig)) *Service {
	t.Helper()
	lc := f.lookupConfig()
	if mutate != nil {
		mutate(lc)
	}
	s := NewService(lc, f.chatConfig())
	t.Cleanup(s.Close)
	return s
}

func TestService_Nutrition(t *testing.T) {
	f := newFakeUpstreams(t)
	s := newTestService(t, f, nil)
	ctx := context.Background()

	facts, err := s.Nutrition(ctx, "  Flour ")
	if err != nil {
		t.Fatalf("Nutrition() error = %v", err)
	}
	if facts.Source != models.SourceUSDA || facts.Ingredient != "flour" {
		t.Errorf("facts = %+v", facts)
	}

	if _, err := s.Nutrition(ctx, "flour"); err != nil {
		t.Fatalf("second Nutrition() error = %v", err)
	}
	if got := f.usdaHits.Load(); got != 1 {
		t.Errorf("USDA hits = %d, want 1 (second call cached)", got)
	}

	if _, err := s.Nutrition(ctx, "   "); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("blank ingredient error = %v", err)
	}
}

func TestService_NutritionFallback(t *testing.T) {
	fallbacks := metrics.LookupFallbacks.WithLabelValues("nutrition")

	t.Run("no match at USDA", func(t *testing.T) {
		f := newFakeUpstreams(t)
		s := newTestService(t, f, nil)
		before := testutil.ToFloat64(fallbacks)

		facts, err := s.Nutrition(context.Background(), "saffron")
		if err != nil {
			t.Fatalf("Nutrition() error = %v", err)
		}
		if facts.Source != models.SourceSpoonacular || facts.FoodID != "2037" {
			t.Errorf("facts = %+v", facts)
		}
		if got := testutil.ToFloat64(fallbacks) - before; got != 1 {
			t.Errorf("fallback delta = %v, want 1", got)
		}
	})

	t.Run("USDA down", func(t *testing.T) {
		f := newFakeUpstreams(t)
		f.usdaStatus = http.StatusInternalServerError
		s := newTestService(t, f, nil)

		facts, err := s.Nutrition(context.Background(), "flour")
		if err != nil {
			t.Fatalf("Nutrition() error = %v", err)
		}
		if facts.Source != models.SourceSpoonacular {
			t.Errorf("Source = %q", facts.Source)
		}
	})

	t.Run("both fail keeps the upstream error", func(t *testing.T) {
		f := newFakeUpstreams(t)
		f.usdaStatus = http.StatusInternalServerError
		s := newTestService(t, f, nil)

		_, err := s.Nutrition(context.Background(), "unobtainium")
		var upErr *UpstreamError
		if !errors.As(err, &upErr) || upErr.Upstream != models.SourceUSDA {
			t.Errorf("error = %v, want USDA UpstreamError", err)
		}
	})

	t.Run("both miss", func(t *testing.T) {
		f := newFakeUpstreams(t)
		s := newTestService(t, f, nil)
		if _, err := s.Nutrition(context.Background(), "unobtainium"); !errors.Is(err, ErrNoMatch) {
			t.Errorf("error = %v, want ErrNoMatch", err)
		}
	})

	t.Run("spoonacular only", func(t *testing.T) {
		f := newFakeUpstreams(t)
		s := newTestService(t, f, func(lc *config.LookupConfig) { lc.USDA.APIKey = "" })
		facts, err := s.Nutrition(context.Background(), "flour")
		if err != nil || facts.Source != models.SourceSpoonacular {
			t.Errorf("Nutrition() = %+v, %v", facts, err)
		}
		if f.usdaHits.Load() != 0 {
			t.Error("unconfigured USDA should not be called")
		}
	})
}

func TestService_NotConfigured(t *testing.T) {
	f := newFakeUpstreams(t)
	s := newTestService(t, f, func(lc *config.LookupConfig) {
		lc.USDA.APIKey = ""
		lc.Spoonacular.APIKey = ""
		lc.ImageSearch.APIKey = ""
	})
	ctx := context.Background()

	if _, err := s.Nutrition(ctx, "salt"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Nutrition error = %v", err)
	}
	if _, err := s.Price(ctx, "salt", "1 tsp"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Price error = %v", err)
	}
	if _, err := s.Image(ctx, "salt"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Image error = %v", err)
	}
	if _, err := s.RecipeNutrition(ctx, &models.Recipe{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("RecipeNutrition error = %v", err)
	}
	up := s.Upstreams()
	if up[models.SourceUSDA] || !up[ChatUpstream] {
		t.Errorf("Upstreams() = %v", up)
	}
}

func TestService_NutritionSharesInflightCalls(t *testing.T) {
	f := newFakeUpstreams(t)
	f.delay = 50 * time.Millisecond
	s := newTestService(t, f, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Nutrition(context.Background(), "sugar")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Nutrition() error = %v", err)
		}
	}
	if got := f.usdaHits.Load(); got != 1 {
		t.Errorf("USDA hits = %d, want 1", got)
	}
}

func TestService_RecipeNutrition(t *testing.T) {
	f := newFakeUpstreams(t)
	s := newTestService(t, f, nil)

	r := &models.Recipe{
		ID: "r1",
		Ingredients: []models.Ingredient{
			{Quantity: "2 cups", Name: "flour"},
			{Quantity: "1 cup", Name: "sugar"},
			{Quantity: "1", Name: "unobtainium"},
			{Quantity: "", Name: " "},
			{Quantity: "1 tsp", Name: "salt"},
		},
	}
	got, err := s.RecipeNutrition(context.Background(), r)
	if err != nil {
		t.Fatalf("RecipeNutrition() error = %v", err)
	}
	if got.RecipeID != "r1" || len(got.Items) != 3 {
		t.Fatalf("result = %+v", got)
	}
	if got.Items[0].Ingredient != "flour" || got.Items[2].Ingredient != "salt" {
		t.Errorf("items out of recipe order: %+v", got.Items)
	}
	if len(got.Missing) != 1 || got.Missing[0] != "unobtainium" {
		t.Errorf("Missing = %v", got.Missing)
	}
	if got.Totals["energy (kcal)"] != 751 {
		t.Errorf("energy total = %v, want 751", got.Totals["energy (kcal)"])
	}
	if got.Totals["sodium, na (mg)"] != 38758 {
		t.Errorf("sodium total = %v", got.Totals["sodium, na (mg)"])
	}
}

func TestService_RecipeNutritionAllFailing(t *testing.T) {
	f := newFakeUpstreams(t)
	f.usdaStatus = http.StatusInternalServerError
	s := newTestService(t, f, func(lc *config.LookupConfig) { lc.Spoonacular.APIKey = "" })

	r := &models.Recipe{Ingredients: []models.Ingredient{{Name: "flour"}, {Name: "salt"}}}
	_, err := s.RecipeNutrition(context.Background(), r)
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Errorf("error = %v, want UpstreamError", err)
	}
}

func TestService_Price(t *testing.T) {
	f := newFakeUpstreams(t)
	s := newTestService(t, f, nil)

	p, err := s.Price(context.Background(), "Flour", "2 cups")
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	want := models.IngredientPrice{Ingredient: "flour", SpoonacularID: 20081, Amount: 2, Unit: "cup", CostCents: 123.45}
	if *p != want {
		t.Errorf("Price() = %+v, want %+v", *p, want)
	}

	if _, err := s.Price(context.Background(), "unobtainium", ""); !errors.Is(err, ErrNoMatch) {
		t.Errorf("unknown ingredient error = %v", err)
	}
}

func TestService_Image(t *testing.T) {
	images := metrics.LookupFallbacks.WithLabelValues("image")

	t.Run("image search", func(t *testing.T) {
		f := newFakeUpstreams(t)
		s := newTestService(t, f, nil)
		img, err := s.Image(context.Background(), "Apple Pie")
		if err != nil || img.Source != models.SourceImageSearch {
			t.Fatalf("Image() = %+v, %v", img, err)
		}
	})

	t.Run("falls back to spoonacular", func(t *testing.T) {
		f := newFakeUpstreams(t)
		f.imageStatus = http.StatusInternalServerError
		s := newTestService(t, f, nil)
		before := testutil.ToFloat64(images)

		img, err := s.Image(context.Background(), "saffron")
		if err != nil {
			t.Fatalf("Image() error = %v", err)
		}
		if img.Source != models.SourceSpoonacular || img.URL != SpoonacularImageBase+"saffron.jpg" {
			t.Errorf("image = %+v", img)
		}
		if got := testutil.ToFloat64(images) - before; got != 1 {
			t.Errorf("fallback delta = %v", got)
		}
	})

	t.Run("nothing anywhere", func(t *testing.T) {
		f := newFakeUpstreams(t)
		s := newTestService(t, f, nil)
		if _, err := s.Image(context.Background(), "unobtainium"); !errors.Is(err, ErrNoMatch) {
			t.Errorf("error = %v", err)
		}
	})
}

func TestService_ChatTrimsHistory(t *testing.T) {
	f := newFakeUpstreams(t)
	f.chatChunks = []string{"ok"}
	s := newTestService(t, f, nil)

	msgs := []models.ChatMessage{
		{Role: "user", Content: "1"},
		{Role: "assistant", Content: "2"},
		{Role: "user", Content: "3"},
		{Role: "assistant", Content: "4"},
		{Role: "user", Content: "5"},
	}
	n, err := s.Chat(context.Background(), msgs, func(string) error { return nil })
	if err != nil || n != 1 {
		t.Fatalf("Chat() = %d, %v", n, err)
	}
	if len(f.lastChat.Messages) != 3 || f.lastChat.Messages[0].Content != "3" {
		t.Errorf("sent messages = %+v", f.lastChat.Messages)
	}

	if _, err := s.Chat(context.Background(), nil, func(string) error { return nil }); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("empty chat error = %v", err)
	}
}

func TestService_CanceledCaller(t *testing.T) {
	f := newFakeUpstreams(t)
	f.delay = 200 * time.Millisecond
	s := newTestService(t, f, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := s.Nutrition(ctx, "salt"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
}
