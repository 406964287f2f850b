// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package explorer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
	"github.com/tomtom215/pantry/internal/models"
)

// Fetcher loads the recipe catalog. It is called once per Load.
type Fetcher func(ctx context.Context) (*models.RecipeList, error)

// LoadState is the session's load state.
type LoadState string

const (
	StateLoading LoadState = "loading"
	StateLoaded  LoadState = "loaded"
	StateFailed  LoadState = "failed"
)

// ErrNoFetcher is returned by Load when the explorer was built without a Fetcher.
var ErrNoFetcher = errors.New("explorer: no fetcher configured")

// ErrPayloadTooLarge is returned by HTTPFetcher when the catalog body exceeds
// its size limit.
var ErrPayloadTooLarge = errors.New("explorer: recipe payload too large")

// TagToggle is one button of the tag panel.
type TagToggle struct {
	Name  string   `json:"name"`
	State TriState `json:"state"`
}

// View is everything a renderer needs: the visible recipes, the tag panel and
// the load state.
//
// Empty is true only when the catalog loaded and nothing matches, which is
// an expected state and not an error.
type View struct {
	State    LoadState       `json:"state"`
	Error    string          `json:"error,omitempty"`
	Query    string          `json:"query"`
	TagQuery string          `json:"tag_query"`
	Recipes  []models.Recipe `json:"recipes"`
	Tags     []TagToggle     `json:"tags"`
	Total    int             `json:"total"`
	Empty    bool            `json:"empty"`
	Dropped  int             `json:"dropped,omitempty"`
}

// Explorer is one filtering session over a recipe catalog. It is safe for
// concurrent use.
type Explorer struct {
	fetch Fetcher

	mu       sync.RWMutex
	state    LoadState
	err      error
	recipes  []models.Recipe
	tags     []string
	dropped  int
	filter   FilterState
	query    string
	tagQuery string

	// stale holds tags that an earlier load carried and the current one
	// does not. Their toggles keep position but constrain nothing until the
	// tag comes back or the user sets it again.
	stale map[string]struct{}
}

// New creates a session in the loading state.
func New(fetch Fetcher) *Explorer {
	return &Explorer{
		fetch:   fetch,
		state:   StateLoading,
		recipes: []models.Recipe{},
		tags:    []string{},
		filter:  FilterState{},
		stale:   map[string]struct{}{},
	}
}

// Load runs the fetcher once and records the outcome. A fetch error, or a
// panic inside the fetcher, moves the session to StateFailed and is
// returned. Filter state and queries survive a reload; a toggle whose tag
// disappeared from the catalog keeps its position but stops filtering.
func (e *Explorer) Load(ctx context.Context) error {
	start := time.Now()

	e.mu.Lock()
	e.state = StateLoading
	e.err = nil
	e.mu.Unlock()

	list, err := e.runFetch(ctx)
	if err == nil && list == nil {
		list = &models.RecipeList{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.state = StateFailed
		e.err = err
		e.recipes = []models.Recipe{}
		e.retireTags(nil)
		e.dropped = 0
		metrics.RecordExplorerLoad(string(StateFailed), time.Since(start), 0)
		logging.Ctx(ctx).Warn().Err(err).Msg("Recipe catalog load failed")
		return err
	}

	e.recipes = list.Recipes
	if e.recipes == nil {
		e.recipes = []models.Recipe{}
	}
	e.retireTags(DeriveTags(e.recipes))
	e.dropped = list.Dropped
	e.state = StateLoaded
	metrics.RecordExplorerLoad(string(StateLoaded), time.Since(start), len(e.recipes))

	ev := logging.Ctx(ctx).Debug().Int("recipes", len(e.recipes)).Int("tags", len(e.tags))
	if list.Dropped > 0 {
		ev = ev.Int("dropped", list.Dropped)
	}
	ev.Msg("Recipe catalog loaded")
	return nil
}

// retireTags replaces the derived tag set. Caller holds e.mu.
func (e *Explorer) retireTags(next []string) {
	if e.stale == nil {
		e.stale = map[string]struct{}{}
	}
	current := make(map[string]struct{}, len(next))
	for _, tag := range next {
		current[tag] = struct{}{}
		delete(e.stale, tag)
	}
	for _, tag := range e.tags {
		if _, ok := current[tag]; !ok {
			e.stale[tag] = struct{}{}
		}
	}
	if next == nil {
		next = []string{}
	}
	e.tags = next
}

func (e *Explorer) runFetch(ctx context.Context) (list *models.RecipeList, err error) {
	if e.fetch == nil {
		return nil, ErrNoFetcher
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("explorer: fetch panicked: %v", r)
		}
	}()
	return e.fetch(ctx)
}

// State returns the load state and the load error, if any.
func (e *Explorer) State() (LoadState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state, e.err
}

// Toggle advances the tag's filter state and returns the new state.
func (e *Explorer) Toggle(tag string) TriState {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.stale, tag)
	return e.filter.Toggle(tag)
}

// SetTagState sets a tag's filter state directly.
func (e *Explorer) SetTagState(tag string, s TriState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.stale, tag)
	e.filter.Set(tag, s)
}

// TagState returns a tag's filter state.
func (e *Explorer) TagState(tag string) TriState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filter.Get(tag)
}

// SetQuery sets the recipe name search.
func (e *Explorer) SetQuery(q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = q
}

// SetTagQuery sets the search over tag names shown in the tag panel.
func (e *Explorer) SetTagQuery(q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tagQuery = q
}

// Reset clears both queries and every tag toggle. Loaded data is kept.
func (e *Explorer) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = ""
	e.tagQuery = ""
	e.filter = FilterState{}
	e.stale = map[string]struct{}{}
}

// Tags returns the tags derived from the loaded catalog.
func (e *Explorer) Tags() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.tags))
	copy(out, e.tags)
	return out
}

func (e *Explorer) effectiveFilter() FilterState {
	if len(e.stale) == 0 {
		return e.filter
	}
	return e.filter.Without(e.stale)
}

// View computes the current visible set and tag panel.
func (e *Explorer) View() View {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v := View{
		State:    e.state,
		Query:    e.query,
		TagQuery: e.tagQuery,
		Recipes:  Visible(e.recipes, e.query, e.effectiveFilter()),
		Total:    len(e.recipes),
		Dropped:  e.dropped,
	}
	if e.err != nil {
		v.Error = e.err.Error()
	}

	shown := FilterTags(e.tags, e.tagQuery)
	v.Tags = make([]TagToggle, 0, len(shown))
	for _, tag := range shown {
		v.Tags = append(v.Tags, TagToggle{Name: tag, State: e.filter.Get(tag)})
	}
	v.Empty = e.state == StateLoaded && len(v.Recipes) == 0
	return v
}
