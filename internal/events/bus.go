// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
)

// Metadata keys set on every message.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataTopic         = "topic"
)

// Publisher publishes recipe events. The API depends on this rather than on
// Bus so handlers can be tested without a running consumer.
type Publisher interface {
	Publish(ctx context.Context, ev *RecipeEvent) error
}

// Bus is the in-process pub/sub.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
	now    func() time.Time
}

// NewBus creates a bus logging through zerolog.
func NewBus() *Bus {
	return NewBusWithLogger(logging.NewWatermillAdapter())
}

// NewBusWithLogger creates a bus logging to logger.
func NewBusWithLogger(logger watermill.LoggerAdapter) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Publish sends ev on ev.Topic. OccurredAt is filled in when zero.
func (b *Bus) Publish(ctx context.Context, ev *RecipeEvent) (err error) {
	defer func() { metrics.RecordEventPublished(ev.Topic, err) }()

	if err := ev.validate(); err != nil {
		return err
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = b.now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode recipe event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataTopic, ev.Topic)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}

	if err := b.pubsub.Publish(ev.Topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Topic, err)
	}
	logging.Ctx(ctx).Debug().Str("topic", ev.Topic).Str("recipe_id", ev.RecipeID).Msg("Event published")
	return nil
}

// Subscriber returns the subscribing side of the bus.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Logger returns the Watermill logger of the bus.
func (b *Bus) Logger() watermill.LoggerAdapter {
	return b.logger
}

// Close closes the pub/sub. Publishing afterwards fails.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
