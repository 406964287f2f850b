// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package lookup

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/pantry/internal/cache"
	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
	"github.com/tomtom215/pantry/internal/models"
)

// CacheName is the name of the lookup result cache in metrics.
const CacheName = "lookup"

// Nutrient amounts are requested per this reference amount so USDA and
// Spoonacular results compare.
const (
	referenceAmount = 100
	referenceUnit   = "g"
)

// Service answers nutrition, price, image and chat requests from the
// configured upstreams. Results other than chat are cached, and concurrent
// requests for the same key share one upstream call.
type Service struct {
	usda   *USDAClient
	spoon  *SpoonacularClient
	images *ImageSearchClient
	chat   *ChatClient

	cache       *cache.Cache
	flights     singleflight.Group
	timeout     time.Duration
	chatTimeout time.Duration
	concurrency int
	maxMessages int
}

// NewService builds the clients from configuration. Upstreams without an API
// key stay disabled and their operations return ErrNotConfigured.
func NewService(lc *config.LookupConfig, cc *config.ChatConfig) *Service {
	return NewServiceWithBreaker(lc, cc, DefaultBreakerSettings())
}

// NewServiceWithBreaker is NewService with custom circuit breaker settings.
func NewServiceWithBreaker(lc *config.LookupConfig, cc *config.ChatConfig, bs BreakerSettings) *Service {
	lookupHTTP := &http.Client{Timeout: lc.Timeout}
	// Streams are bounded by the request context instead of a client timeout.
	chatHTTP := &http.Client{}

	concurrency := lc.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	ttl := lc.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Service{
		usda:        NewUSDAClient(lc.USDA, lookupHTTP, bs),
		spoon:       NewSpoonacularClient(lc.Spoonacular, lookupHTTP, bs),
		images:      NewImageSearchClient(lc.ImageSearch, lookupHTTP, bs),
		chat:        NewChatClient(cc, chatHTTP, bs),
		cache:       cache.New(CacheName, ttl),
		timeout:     lc.Timeout,
		chatTimeout: cc.Timeout,
		concurrency: concurrency,
		maxMessages: cc.MaxMessages,
	}
}

// Close stops the cache sweep.
func (s *Service) Close() {
	s.cache.Close()
}

// Upstreams reports which upstreams have credentials.
func (s *Service) Upstreams() map[string]bool {
	return map[string]bool{
		models.SourceUSDA:        s.usda.Configured(),
		models.SourceSpoonacular: s.spoon.Configured(),
		models.SourceImageSearch: s.images.Configured(),
		ChatUpstream:             s.chat.Configured(),
	}
}

// ChatConfigured reports whether Chat can be used.
func (s *Service) ChatConfigured() bool {
	return s.chat.Configured()
}

// Nutrition returns nutrients per 100 g of ingredient. USDA is asked first
// and Spoonacular answers when USDA fails or finds nothing.
func (s *Service) Nutrition(ctx context.Context, ingredient string) (*models.NutritionFacts, error) {
	q := normalizeQuery(ingredient)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if !s.usda.Configured() && !s.spoon.Configured() {
		return nil, ErrNotConfigured
	}

	return cached(ctx, s, "nutrition:"+q, func(ctx context.Context) (*models.NutritionFacts, error) {
		var primaryErr error
		if s.usda.Configured() {
			facts, err := s.usda.SearchFoods(ctx, q)
			if err == nil {
				return facts, nil
			}
			if !s.spoon.Configured() {
				return nil, err
			}
			primaryErr = err
			metrics.RecordLookupFallback("nutrition")
			logging.Ctx(ctx).Debug().Err(err).Str("ingredient", q).Msg("USDA lookup failed, trying Spoonacular")
		}

		facts, err := s.spoonacularNutrition(ctx, q)
		if err != nil {
			return nil, preferUpstreamError(primaryErr, err)
		}
		return facts, nil
	})
}

func (s *Service) spoonacularNutrition(ctx context.Context, q string) (*models.NutritionFacts, error) {
	ing, err := s.spoon.SearchIngredient(ctx, q)
	if err != nil {
		return nil, err
	}
	info, err := s.spoon.IngredientInformation(ctx, ing.ID, referenceAmount, referenceUnit)
	if err != nil {
		return nil, err
	}
	return info.nutritionFacts(q), nil
}

// RecipeNutrition looks up every ingredient of r with bounded concurrency.
// Ingredients that cannot be resolved are listed in Missing. The call fails
// only when nothing resolved and at least one upstream failed outright.
func (s *Service) RecipeNutrition(ctx context.Context, r *models.Recipe) (*models.RecipeNutrition, error) {
	if !s.usda.Configured() && !s.spoon.Configured() {
		return nil, ErrNotConfigured
	}

	type outcome struct {
		facts *models.NutritionFacts
		err   error
	}
	outcomes := make([]outcome, len(r.Ingredients))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			continue
		}
		g.Go(func() error {
			facts, err := s.Nutrition(ctx, ing.Name)
			outcomes[i] = outcome{facts: facts, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &models.RecipeNutrition{
		RecipeID: r.ID,
		Items:    []models.NutritionFacts{},
		Missing:  []string{},
		Totals:   map[string]float64{},
	}
	var hardErr error
	for i, o := range outcomes {
		name := r.Ingredients[i].Name
		switch {
		case strings.TrimSpace(name) == "":
			continue
		case o.err != nil:
			out.Missing = append(out.Missing, name)
			if !errors.Is(o.err, ErrNoMatch) && hardErr == nil {
				hardErr = o.err
			}
			logging.Ctx(ctx).Debug().Err(o.err).Str("ingredient", name).Msg("Ingredient nutrition unavailable")
		default:
			out.Items = append(out.Items, *o.facts)
			for _, n := range o.facts.Nutrients {
				out.Totals[totalKey(n)] += n.Amount
			}
		}
	}
	if len(out.Items) == 0 && hardErr != nil {
		return nil, hardErr
	}
	for k, v := range out.Totals {
		out.Totals[k] = math.Round(v*1000) / 1000
	}
	return out, nil
}

func totalKey(n models.Nutrient) string {
	if n.Unit == "" {
		return strings.ToLower(n.Name)
	}
	return fmt.Sprintf("%s (%s)", strings.ToLower(n.Name), n.Unit)
}

// Price returns Spoonacular's cost estimate for quantity of ingredient, for
// example Price(ctx, "flour", "2 cups").
func (s *Service) Price(ctx context.Context, ingredient, quantity string) (*models.IngredientPrice, error) {
	q := normalizeQuery(ingredient)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if !s.spoon.Configured() {
		return nil, ErrNotConfigured
	}
	amount, unit := ParseQuantity(quantity)
	key := "price:" + q + "|" + strconv.FormatFloat(amount, 'f', -1, 64) + "|" + unit

	return cached(ctx, s, key, func(ctx context.Context) (*models.IngredientPrice, error) {
		ing, err := s.spoon.SearchIngredient(ctx, q)
		if err != nil {
			return nil, err
		}
		info, err := s.spoon.IngredientInformation(ctx, ing.ID, amount, unit)
		if err != nil {
			return nil, err
		}
		p := &models.IngredientPrice{
			Ingredient:    q,
			SpoonacularID: ing.ID,
			Amount:        amount,
			Unit:          unit,
			CostCents:     info.EstimatedCost.Value,
		}
		if info.Amount > 0 {
			p.Amount = info.Amount
		}
		if info.Unit != "" {
			p.Unit = info.Unit
		}
		return p, nil
	})
}

// Image returns a picture for query from image search, falling back to the
// Spoonacular ingredient image.
func (s *Service) Image(ctx context.Context, query string) (*models.ImageResult, error) {
	q := normalizeQuery(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if !s.images.Configured() && !s.spoon.Configured() {
		return nil, ErrNotConfigured
	}

	return cached(ctx, s, "image:"+q, func(ctx context.Context) (*models.ImageResult, error) {
		var primaryErr error
		if s.images.Configured() {
			img, err := s.images.Search(ctx, q)
			if err == nil {
				return img, nil
			}
			if !s.spoon.Configured() {
				return nil, err
			}
			primaryErr = err
			metrics.RecordLookupFallback("image")
		}

		ing, err := s.spoon.SearchIngredient(ctx, q)
		if err == nil && ing.ImageURL() == "" {
			err = ErrNoMatch
		}
		if err != nil {
			return nil, preferUpstreamError(primaryErr, err)
		}
		return &models.ImageResult{
			Query:  q,
			URL:    ing.ImageURL(),
			Title:  ing.Name,
			Source: models.SourceSpoonacular,
		}, nil
	})
}

// Chat streams a completion for messages to onChunk. Only the most recent
// messages are sent when the conversation is longer than the configured
// maximum.
func (s *Service) Chat(ctx context.Context, messages []models.ChatMessage, onChunk func(string) error) (int, error) {
	if !s.chat.Configured() {
		return 0, ErrNotConfigured
	}
	if len(messages) == 0 {
		return 0, ErrEmptyQuery
	}
	if s.maxMessages > 0 && len(messages) > s.maxMessages {
		messages = messages[len(messages)-s.maxMessages:]
	}
	if s.chatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.chatTimeout)
		defer cancel()
	}
	return s.chat.Stream(ctx, messages, onChunk)
}

// cached serves key from the cache or runs fn once for all concurrent
// callers. The shared call is detached from the first caller's
// cancellation and bounded by the lookup timeout instead.
func cached[T any](ctx context.Context, s *Service, key string, fn func(context.Context) (*T, error)) (*T, error) {
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(*T); ok {
			return t, nil
		}
	}

	ch := s.flights.DoChan(key, func() (interface{}, error) {
		fctx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, s.timeout)
			defer cancel()
		}
		t, err := fn(fctx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, t)
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		t, ok := res.Val.(*T)
		if !ok {
			return nil, fmt.Errorf("lookup: unexpected cached type %T", res.Val)
		}
		return t, nil
	}
}

// preferUpstreamError picks the more informative of two failures: a real
// upstream error wins over "no match".
func preferUpstreamError(primary, fallback error) error {
	if primary == nil {
		return fallback
	}
	if errors.Is(fallback, ErrNoMatch) || errors.Is(fallback, ErrNotConfigured) {
		return primary
	}
	return fallback
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
