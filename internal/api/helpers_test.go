// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pantry/internal/auth"
	"github.com/tomtom215/pantry/internal/authz"
	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/events"
	"github.com/tomtom215/pantry/internal/lookup"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/store"
)

const (
	testPassword   = "simmer-and-stir-42"
	testAdminEmail = "admin@example.com"
	testOrigin     = "https://pantry.example"
)

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			CatalogCacheTTL: time.Minute,
			MaxIngredients:  10,
			MaxSteps:        10,
			MaxTags:         5,
		},
		Security: config.SecurityConfig{
			JWTSecret:         "this_is_a_very_long_secret_key_for_testing_purposes_12345",
			SessionTimeout:    time.Hour,
			AllowAnonymous:    true,
			AdminEmail:        testAdminEmail,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: true,
			CORSOrigins:       []string{testOrigin},
		},
	}
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.RecipeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev *events.RecipeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *ev)
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Topic)
	}
	return out
}

// fakeLookup answers from fixed data. Ingredients named "unknown" have no
// match.
type fakeLookup struct {
	err error
}

func (f *fakeLookup) Nutrition(_ context.Context, ingredient string) (*models.NutritionFacts, error) {
	if f.err != nil {
		return nil, f.err
	}
	if ingredient == "unknown" {
		return nil, lookup.ErrNoMatch
	}
	return &models.NutritionFacts{
		Ingredient: ingredient,
		Source:     "usda",
		Nutrients:  []models.Nutrient{{Name: "Energy", Unit: "kcal", Amount: 100}},
	}, nil
}

func (f *fakeLookup) RecipeNutrition(_ context.Context, r *models.Recipe) (*models.RecipeNutrition, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &models.RecipeNutrition{RecipeID: r.ID, Missing: []string{}, Totals: map[string]float64{}}
	for _, ing := range r.Ingredients {
		out.Totals["Energy (kcal)"] += 100
		out.Items = append(out.Items, models.NutritionFacts{Ingredient: ing.Name, Source: "usda"})
	}
	return out, nil
}

func (f *fakeLookup) Price(_ context.Context, ingredient, quantity string) (*models.IngredientPrice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.IngredientPrice{Ingredient: ingredient, Unit: quantity, CostCents: 42}, nil
}

func (f *fakeLookup) Image(_ context.Context, query string) (*models.ImageResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ImageResult{Query: query, URL: "https://img.example/" + query + ".jpg", Source: "fake"}, nil
}

func (f *fakeLookup) Chat(_ context.Context, _ []models.ChatMessage, onChunk func(string) error) (int, error) {
	if err := onChunk("hello"); err != nil {
		return 0, err
	}
	return 1, nil
}

func (f *fakeLookup) Upstreams() map[string]bool {
	return map[string]bool{"usda": true, "spoonacular": false, "image_search": false, "chat": true}
}

type testEnv struct {
	t         *testing.T
	cfg       *config.Config
	store     *store.Store
	handler   *Handler
	router    http.Handler
	published *recordingPublisher
}

// newTestEnv builds the API over an in-memory store. mutate may adjust the
// dependencies before the handler is created.
func newTestEnv(t *testing.T, mutate ...func(*Dependencies)) *testEnv {
	t.Helper()

	cfg := testConfig()
	s, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	svc, err := auth.NewService(s, jwtManager, auth.ServiceConfig{
		AdminEmail:     cfg.Security.AdminEmail,
		AllowAnonymous: cfg.Security.AllowAnonymous,
		Policy:         auth.DefaultPasswordPolicy(),
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)

	pub := &recordingPublisher{}
	deps := Dependencies{
		Config:   cfg,
		Store:    s,
		Auth:     svc,
		Enforcer: enforcer,
		Lookup:   &fakeLookup{},
		Events:   pub,
	}
	for _, m := range mutate {
		m(&deps)
	}

	h, err := NewHandler(deps)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	t.Cleanup(h.Close)

	return &testEnv{
		t:         t,
		cfg:       cfg,
		store:     s,
		handler:   h,
		router:    NewRouter(h, nil).SetupChi(),
		published: pub,
	}
}

// do sends a request through the router. body is JSON-encoded unless it is
// a string.
func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// signUp creates an account and returns its session token.
func (e *testEnv) signUp(email string) string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/v1/auth/signup", "", SignUpRequest{Email: email, Password: testPassword})
	if rec.Code != http.StatusCreated {
		e.t.Fatalf("signup %s: status = %d, body = %s", email, rec.Code, rec.Body.String())
	}
	var sess SessionResponse
	decodeData(e.t, rec, &sess)
	return sess.Token
}

// anonymous starts an anonymous session and returns its token.
func (e *testEnv) anonymous() string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/v1/auth/anonymous", "", nil)
	if rec.Code != http.StatusCreated {
		e.t.Fatalf("anonymous: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var sess SessionResponse
	decodeData(e.t, rec, &sess)
	return sess.Token
}

// createRecipe posts a recipe and returns it.
func (e *testEnv) createRecipe(token, name string, tags map[string]bool) models.Recipe {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/v1/recipes", token, CreateRecipeRequest{
		Name:        name,
		Ingredients: []IngredientInput{{Quantity: "2 cups", Name: "flour"}, {Quantity: "1", Name: "egg"}},
		Steps:       []string{"Mix.", "Bake."},
		Tags:        tags,
	})
	if rec.Code != http.StatusCreated {
		e.t.Fatalf("create %s: status = %d, body = %s", name, rec.Code, rec.Body.String())
	}
	var r models.Recipe
	decodeData(e.t, rec, &r)
	return r
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if env.Status != "success" {
		t.Fatalf("status = %q, error = %+v", env.Status, env.Error)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

// expectError asserts the status and envelope error code.
func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, strings.TrimSpace(rec.Body.String()))
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", env.Error, code)
	}
}
