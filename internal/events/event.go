// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Topics.
const (
	TopicRecipeCreated = "recipe.created"
	TopicRecipeDeleted = "recipe.deleted"
	TopicRecipeRated   = "recipe.rated"
)

// Topics lists every topic the consumer subscribes to.
var Topics = []string{TopicRecipeCreated, TopicRecipeDeleted, TopicRecipeRated}

// RecipeEvent is the payload of every recipe topic.
type RecipeEvent struct {
	Topic      string    `json:"topic"`
	RecipeID   string    `json:"recipe_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	Rating     float64   `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e *RecipeEvent) validate() error {
	if !knownTopic(e.Topic) {
		return fmt.Errorf("unknown topic %q", e.Topic)
	}
	if e.RecipeID == "" {
		return fmt.Errorf("recipe_id is required")
	}
	return nil
}

func knownTopic(topic string) bool {
	for _, t := range Topics {
		if t == topic {
			return true
		}
	}
	return false
}

func decodeEvent(payload []byte) (*RecipeEvent, error) {
	var ev RecipeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode recipe event: %w", err)
	}
	if err := ev.validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
