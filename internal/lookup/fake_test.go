// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package lookup

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/models"
)

const testKey = "secret-key-123"

// fakeUpstreams serves the USDA, Spoonacular, image search and chat APIs
// from one httptest server. Foods and ingredients unknown to the maps get
// an empty result.
type fakeUpstreams struct {
	srv *httptest.Server

	mu          sync.Mutex
	foods       map[string][]models.Nutrient
	ingredients map[string]int
	images      map[string]string
	usdaStatus  int
	imageStatus int
	chatChunks  []string
	chatDone    bool
	lastChat    chatRequest
	delay       time.Duration

	usdaHits  atomic.Int32
	spoonHits atomic.Int32
	imageHits atomic.Int32
}

func newFakeUpstreams(t *testing.T) *fakeUpstreams {
	t.Helper()
	f := &fakeUpstreams{
		foods: map[string][]models.Nutrient{
			"salt":  {{Name: "Sodium, Na", Amount: 38758, Unit: "mg"}},
			"flour": {{Name: "Energy", Amount: 364, Unit: "kcal"}, {Name: "Protein", Amount: 10.3, Unit: "g"}},
			"sugar": {{Name: "Energy", Amount: 387, Unit: "kcal"}},
		},
		ingredients: map[string]int{"saffron": 2037, "flour": 20081},
		images:      map[string]string{"apple pie": "https://img.example.com/pie.jpg"},
		chatDone:    true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /fdc/v1/foods/search", f.handleUSDA)
	mux.HandleFunc("GET /food/ingredients/search", f.handleSpoonSearch)
	mux.HandleFunc("GET /food/ingredients/{id}/information", f.handleSpoonInfo)
	mux.HandleFunc("GET /images", f.handleImages)
	mux.HandleFunc("POST /chat/completions", f.handleChat)
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeUpstreams) lookupConfig() *config.LookupConfig {
	up := func() config.UpstreamConfig {
		return config.UpstreamConfig{BaseURL: f.srv.URL, APIKey: testKey, RequestsPerSecond: 1000, Burst: 100}
	}
	return &config.LookupConfig{
		Timeout:     5 * time.Second,
		CacheTTL:    time.Hour,
		Concurrency: 2,
		USDA:        up(),
		Spoonacular: up(),
		ImageSearch: config.ImageSearchConfig{
			BaseURL:           f.srv.URL + "/images",
			APIKey:            testKey,
			EngineID:          "engine-1",
			RequestsPerSecond: 1000,
			Burst:             100,
		},
	}
}

func (f *fakeUpstreams) chatConfig() *config.ChatConfig {
	return &config.ChatConfig{
		BaseURL:     f.srv.URL,
		APIKey:      testKey,
		Model:       "test-model",
		Timeout:     5 * time.Second,
		MaxMessages: 3,
	}
}

func (f *fakeUpstreams) checkKey(w http.ResponseWriter, r *http.Request, param string) bool {
	if r.URL.Query().Get(param) != testKey {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
		return false
	}
	return true
}

func (f *fakeUpstreams) handleUSDA(w http.ResponseWriter, r *http.Request) {
	f.usdaHits.Add(1)
	if !f.checkKey(w, r, "api_key") {
		return
	}
	f.mu.Lock()
	status, delay := f.usdaStatus, f.delay
	nutrients, ok := f.foods[r.URL.Query().Get("query")]
	f.mu.Unlock()
	time.Sleep(delay)
	if status != 0 {
		http.Error(w, "upstream broke", status)
		return
	}

	type nutrient struct {
		NutrientName string  `json:"nutrientName"`
		UnitName     string  `json:"unitName"`
		Value        float64 `json:"value"`
	}
	type food struct {
		FdcID         int        `json:"fdcId"`
		Description   string     `json:"description"`
		FoodNutrients []nutrient `json:"foodNutrients"`
	}
	resp := struct {
		TotalHits int    `json:"totalHits"`
		Foods     []food `json:"foods"`
	}{Foods: []food{}}
	if ok {
		fd := food{FdcID: 1000 + len(nutrients), Description: strings.ToUpper(r.URL.Query().Get("query"))}
		for _, n := range nutrients {
			fd.FoodNutrients = append(fd.FoodNutrients, nutrient{NutrientName: n.Name, UnitName: strings.ToUpper(n.Unit), Value: n.Amount})
		}
		resp.Foods = append(resp.Foods, fd)
		resp.TotalHits = 1
	}
	writeTestJSON(w, resp)
}

func (f *fakeUpstreams) handleSpoonSearch(w http.ResponseWriter, r *http.Request) {
	f.spoonHits.Add(1)
	if !f.checkKey(w, r, "apiKey") {
		return
	}
	q := r.URL.Query().Get("query")
	f.mu.Lock()
	id, ok := f.ingredients[q]
	f.mu.Unlock()

	results := []SpoonacularIngredient{}
	if ok {
		results = append(results, SpoonacularIngredient{ID: id, Name: q, Image: q + ".jpg"})
	}
	writeTestJSON(w, map[string]interface{}{"results": results, "number": r.URL.Query().Get("number")})
}

func (f *fakeUpstreams) handleSpoonInfo(w http.ResponseWriter, r *http.Request) {
	f.spoonHits.Add(1)
	if !f.checkKey(w, r, "apiKey") {
		return
	}
	q := r.URL.Query()
	amount := q.Get("amount")
	unit := q.Get("unit")
	fmt.Fprintf(w, `{"id":%s,"name":"ingredient %s","amount":%s,"unit":%q,
		"estimatedCost":{"value":123.45,"unit":"US Cents"},
		"nutrition":{"nutrients":[{"name":"Calories","amount":310,"unit":"kcal"},{"name":"Fat","amount":5.85,"unit":"G"}]}}`,
		r.PathValue("id"), r.PathValue("id"), amount, unit)
}

func (f *fakeUpstreams) handleImages(w http.ResponseWriter, r *http.Request) {
	f.imageHits.Add(1)
	if !f.checkKey(w, r, "key") {
		return
	}
	q := r.URL.Query()
	if q.Get("cx") != "engine-1" || q.Get("searchType") != "image" {
		http.Error(w, "bad params", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	status := f.imageStatus
	link, ok := f.images[q.Get("q")]
	f.mu.Unlock()
	if status != 0 {
		http.Error(w, "image search down", status)
		return
	}
	if !ok {
		writeTestJSON(w, map[string]interface{}{})
		return
	}
	fmt.Fprintf(w, `{"items":[{"title":"A picture","link":%q,"image":{"thumbnailLink":%q}}]}`, link, link+"?thumb")
}

func (f *fakeUpstreams) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+testKey {
		http.Error(w, `{"error":{"message":"invalid key"}}`, http.StatusUnauthorized)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.lastChat = req
	chunks, done := f.chatChunks, f.chatDone
	f.mu.Unlock()

	w.Header().Set("Content-Type", "text/event-stream")
	fl, _ := w.(http.Flusher)
	fmt.Fprint(w, ": keep-alive\n\n")
	fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
	for _, c := range chunks {
		b, _ := json.Marshal(c)
		fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%s}}]}\n\n", b)
		if fl != nil {
			fl.Flush()
		}
	}
	if done {
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func writeTestJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
