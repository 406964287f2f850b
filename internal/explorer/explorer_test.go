// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package explorer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/pantry/internal/models"
)

func TestExplorer_InitialState(t *testing.T) {
	t.Parallel()

	ex := New(StaticFetcher(pieAndStew()))
	ex.Toggle("vegan")
	ex.SetQuery("pie")

	v := ex.View()
	if v.State != StateLoading {
		t.Errorf("State = %v, want loading", v.State)
	}
	if len(v.Recipes) != 0 || len(v.Tags) != 0 {
		t.Errorf("filtering before load should see an empty collection: %+v", v)
	}
	if v.Empty {
		t.Error("Empty should only be set once loaded")
	}
}

func TestExplorer_LoadAndFilter(t *testing.T) {
	t.Parallel()

	ex := New(StaticFetcher(pieAndStew()))
	if err := ex.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	v := ex.View()
	if v.State != StateLoaded || v.Total != 2 || len(v.Recipes) != 2 {
		t.Fatalf("after load: %+v", v)
	}
	if !reflect.DeepEqual(v.Tags, []TagToggle{{Name: "vegan", State: None}}) {
		t.Errorf("Tags = %+v", v.Tags)
	}

	ex.Toggle("vegan")
	if got := names(ex.View().Recipes); !reflect.DeepEqual(got, []string{"Apple Pie"}) {
		t.Errorf("include vegan = %v", got)
	}
	ex.Toggle("vegan")
	if got := names(ex.View().Recipes); !reflect.DeepEqual(got, []string{"Beef Stew"}) {
		t.Errorf("exclude vegan = %v", got)
	}
	ex.Toggle("vegan")
	if ex.TagState("vegan") != None {
		t.Error("three toggles should return to none")
	}

	ex.SetQuery("zzz")
	v = ex.View()
	if !v.Empty || len(v.Recipes) != 0 {
		t.Errorf("no-match view should be empty: %+v", v)
	}
	if v.Error != "" {
		t.Errorf("no-match is not an error, got %q", v.Error)
	}

	ex.SetTagQuery("xyz")
	if len(ex.View().Tags) != 0 {
		t.Error("tag query should hide non-matching tags")
	}

	ex.Reset()
	v = ex.View()
	if v.Query != "" || v.TagQuery != "" || len(v.Recipes) != 2 || len(v.Tags) != 1 {
		t.Errorf("after Reset: %+v", v)
	}
}

func TestExplorer_EmptyPayload(t *testing.T) {
	t.Parallel()

	ex := New(func(context.Context) (*models.RecipeList, error) {
		return &models.RecipeList{}, nil
	})
	if err := ex.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	v := ex.View()
	if v.State != StateLoaded || !v.Empty || v.Error != "" {
		t.Errorf("empty payload view = %+v", v)
	}
	if v.Recipes == nil || v.Tags == nil {
		t.Error("slices should be empty, not nil")
	}
}

func TestExplorer_NilListIsEmpty(t *testing.T) {
	t.Parallel()

	ex := New(func(context.Context) (*models.RecipeList, error) { return nil, nil })
	if err := ex.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if st, _ := ex.State(); st != StateLoaded {
		t.Errorf("State = %v", st)
	}
}

func TestExplorer_LoadFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	tests := []struct {
		name    string
		fetch   Fetcher
		wantMsg string
	}{
		{"transport error", func(context.Context) (*models.RecipeList, error) { return nil, boom }, "connection refused"},
		{"panicking fetcher", func(context.Context) (*models.RecipeList, error) { panic("bad payload") }, "panicked"},
		{"no fetcher", nil, "no fetcher"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ex := New(tt.fetch)
			err := ex.Load(context.Background())
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			v := ex.View()
			if v.State != StateFailed {
				t.Errorf("State = %v, want failed", v.State)
			}
			if !strings.Contains(v.Error, tt.wantMsg) {
				t.Errorf("Error = %q, want it to contain %q", v.Error, tt.wantMsg)
			}
			if v.Empty || len(v.Recipes) != 0 {
				t.Errorf("failed view should have no recipes and not be marked empty: %+v", v)
			}
		})
	}
}

func TestExplorer_SingleFetchPerLoad(t *testing.T) {
	t.Parallel()

	calls := 0
	ex := New(func(context.Context) (*models.RecipeList, error) {
		calls++
		return nil, errors.New("down")
	})
	_ = ex.Load(context.Background())
	if calls != 1 {
		t.Errorf("fetch called %d times, want exactly 1 (no retry)", calls)
	}
}

// sequenceFetcher returns one catalog per call, repeating the last.
func sequenceFetcher(catalogs ...[]models.Recipe) Fetcher {
	var mu sync.Mutex
	call := 0
	return func(context.Context) (*models.RecipeList, error) {
		mu.Lock()
		defer mu.Unlock()
		i := call
		if i >= len(catalogs) {
			i = len(catalogs) - 1
		}
		call++
		return &models.RecipeList{Recipes: catalogs[i]}, nil
	}
}

func TestExplorer_Reload(t *testing.T) {
	t.Parallel()

	tofu := recipe("9", "Tofu Bowl", map[string]bool{})
	salad := recipe("7", "Green Salad", map[string]bool{"vegan": true})
	spicyTofu := recipe("9", "Tofu Bowl", map[string]bool{"spicy": true})

	tests := []struct {
		name        string
		first       []models.Recipe
		second      []models.Recipe
		set         FilterState
		wantBefore  []string
		wantAfter   []string
		wantTags    []string
		toggleAfter string
		wantToggled []string
	}{
		{
			name:       "absent tag fails include before and after a change",
			first:      []models.Recipe{tofu},
			second:     []models.Recipe{tofu, salad},
			set:        FilterState{"vegan": Include},
			wantBefore: []string{},
			wantAfter:  []string{"Green Salad"},
			wantTags:   []string{"vegan"},
		},
		{
			name:       "absent tag fails include across an unchanged reload",
			first:      []models.Recipe{tofu},
			second:     []models.Recipe{tofu},
			set:        FilterState{"vegan": Include},
			wantBefore: []string{},
			wantAfter:  []string{},
			wantTags:   []string{},
		},
		{
			name:       "absent tag passes exclude before and after a change",
			first:      []models.Recipe{tofu},
			second:     []models.Recipe{tofu, salad},
			set:        FilterState{"vegan": Exclude},
			wantBefore: []string{"Tofu Bowl"},
			wantAfter:  []string{"Tofu Bowl"},
			wantTags:   []string{"vegan"},
		},
		{
			name:        "vanished tag stops filtering until set again",
			first:       pieAndStew(),
			second:      []models.Recipe{spicyTofu},
			set:         FilterState{"vegan": Include},
			wantBefore:  []string{"Apple Pie"},
			wantAfter:   []string{"Tofu Bowl"},
			wantTags:    []string{"spicy"},
			toggleAfter: "vegan",
			wantToggled: []string{"Tofu Bowl"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			ex := New(sequenceFetcher(tt.first, tt.second))
			for tag, s := range tt.set {
				ex.SetTagState(tag, s)
			}

			if err := ex.Load(ctx); err != nil {
				t.Fatalf("first Load() error = %v", err)
			}
			if got := names(ex.View().Recipes); !reflect.DeepEqual(got, tt.wantBefore) {
				t.Errorf("before reload = %v, want %v", got, tt.wantBefore)
			}

			if err := ex.Load(ctx); err != nil {
				t.Fatalf("second Load() error = %v", err)
			}
			if got := names(ex.View().Recipes); !reflect.DeepEqual(got, tt.wantAfter) {
				t.Errorf("after reload = %v, want %v", got, tt.wantAfter)
			}
			if got := ex.Tags(); !reflect.DeepEqual(got, tt.wantTags) {
				t.Errorf("Tags() = %v, want %v", got, tt.wantTags)
			}
			for tag, s := range tt.set {
				if ex.TagState(tag) != s {
					t.Errorf("TagState(%q) = %v, want %v kept across reload", tag, ex.TagState(tag), s)
				}
			}

			if tt.toggleAfter == "" {
				return
			}
			// include -> exclude: the tag is live again and absent reads as false.
			ex.Toggle(tt.toggleAfter)
			if got := names(ex.View().Recipes); !reflect.DeepEqual(got, tt.wantToggled) {
				t.Errorf("after toggle = %v, want %v", got, tt.wantToggled)
			}
		})
	}
}

func TestExplorer_SetTagStateReactivatesVanishedTag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ex := New(sequenceFetcher(pieAndStew(), []models.Recipe{recipe("9", "Tofu Bowl", nil)}))
	ex.SetTagState("vegan", Include)
	_ = ex.Load(ctx)
	_ = ex.Load(ctx)
	if got := names(ex.View().Recipes); !reflect.DeepEqual(got, []string{"Tofu Bowl"}) {
		t.Fatalf("vanished toggle filtered: %v", got)
	}

	ex.SetTagState("vegan", Include)
	if got := names(ex.View().Recipes); len(got) != 0 {
		t.Errorf("explicit include of an absent tag should hide Tofu Bowl, got %v", got)
	}
}

func TestExplorer_Concurrent(t *testing.T) {
	t.Parallel()

	ex := New(StaticFetcher(pieAndStew()))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch (i + j) % 4 {
				case 0:
					_ = ex.Load(context.Background())
				case 1:
					ex.Toggle("vegan")
				case 2:
					ex.SetQuery("e")
				default:
					_ = ex.View()
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   string
		wantNames []string
	}{
		{"bare payload", 200, `{"recipes":[{"id":"1","name":"Apple Pie","tags":{"vegan":true}}]}`, "", []string{"Apple Pie"}},
		{"enveloped payload", 200, `{"status":"success","data":{"recipes":[{"id":"2","name":"Beef Stew"}]},"metadata":{}}`, "", []string{"Beef Stew"}},
		{"empty payload", 200, `{"recipes":[]}`, "", []string{}},
		{"error envelope", 200, `{"status":"error","data":null,"error":{"code":"INTERNAL_ERROR","message":"store down"}}`, "store down", nil},
		{"server error", 500, `oops`, "unexpected status 500", nil},
		{"malformed body", 200, `<html>`, "decode", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Accept") != "application/json" {
					t.Errorf("Accept = %q", r.Header.Get("Accept"))
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			list, err := HTTPFetcher(srv.Client(), srv.URL)(context.Background())
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := names(list.Recipes); !reflect.DeepEqual(got, tt.wantNames) {
				t.Errorf("names = %v, want %v", got, tt.wantNames)
			}
		})
	}
}

func TestHTTPFetcher_PayloadLimit(t *testing.T) {
	t.Parallel()

	body := `{"recipes":[{"id":"1","name":"Apple Pie"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{"exactly at the limit", int64(len(body)), false},
		{"one byte over", int64(len(body)) - 1, true},
		{"far over", 8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			list, err := httpFetcher(srv.Client(), srv.URL, tt.limit)(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrPayloadTooLarge) {
					t.Fatalf("error = %v, want ErrPayloadTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(list.Recipes) != 1 {
				t.Errorf("recipes = %d, want 1", len(list.Recipes))
			}
		})
	}
}

func TestHTTPFetcher_ContextCancel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ex := New(HTTPFetcher(srv.Client(), srv.URL))
	if err := ex.Load(ctx); err == nil {
		t.Fatal("expected an error after the context deadline")
	}
	if st, _ := ex.State(); st != StateFailed {
		t.Errorf("State = %v, want failed", st)
	}
}
