// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
)

// Handler reacts to one event. Returning an error makes the router retry.
type Handler func(ctx context.Context, ev *RecipeEvent) error

// ConsumerConfig tunes the router.
type ConsumerConfig struct {
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	CloseTimeout         time.Duration
}

// DefaultConsumerConfig retries a failing handler three times.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		CloseTimeout:         10 * time.Second,
	}
}

// Consumer is a supervised service that dispatches bus events to handlers.
type Consumer struct {
	bus      *Bus
	cfg      ConsumerConfig
	handlers []Handler

	mu      sync.Mutex
	running chan struct{}
}

// NewConsumer creates a consumer calling every handler, in order, for every
// event.
func NewConsumer(bus *Bus, cfg ConsumerConfig, handlers ...Handler) *Consumer {
	return &Consumer{
		bus:      bus,
		cfg:      cfg,
		handlers: handlers,
		running:  make(chan struct{}),
	}
}

// Serve runs the router until ctx is canceled. Each call builds a fresh
// router since a closed Watermill router cannot be restarted.
func (c *Consumer) Serve(ctx context.Context) error {
	logger := c.bus.Logger()
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: c.cfg.CloseTimeout}, logger)
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      c.cfg.RetryMaxRetries,
			InitialInterval: c.cfg.RetryInitialInterval,
			Multiplier:      2,
			Logger:          logger,
		}.Middleware,
	)
	sub := sharedSubscriber{c.bus.Subscriber()}
	for _, topic := range Topics {
		router.AddConsumerHandler("catalog-"+topic, topic, sub, c.handle)
	}

	go func() {
		select {
		case <-router.Running():
			c.mu.Lock()
			close(c.running)
			c.mu.Unlock()
		case <-ctx.Done():
		}
	}()
	defer c.resetRunning()

	if err := router.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

// Running is closed once the router has subscribed to every topic.
func (c *Consumer) Running() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Consumer) resetRunning() {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.running:
		c.running = make(chan struct{})
	default:
	}
}

// String implements fmt.Stringer for suture.
func (c *Consumer) String() string {
	return "event-consumer"
}

func (c *Consumer) handle(msg *message.Message) error {
	ev, err := decodeEvent(msg.Payload)
	if err != nil {
		// A payload that cannot be decoded will not decode on retry either.
		logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping malformed event")
		return nil
	}

	ctx := msg.Context()
	if id := msg.Metadata.Get(MetadataCorrelationID); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	for _, h := range c.handlers {
		if err := h(ctx, ev); err != nil {
			return fmt.Errorf("handle %s: %w", ev.Topic, err)
		}
	}
	metrics.RecordEventConsumed(ev.Topic)
	return nil
}

// sharedSubscriber keeps the router from closing the bus on shutdown, so a
// restarted consumer can subscribe again. Subscriptions still end with the
// router's context.
type sharedSubscriber struct {
	message.Subscriber
}

func (sharedSubscriber) Close() error { return nil }
