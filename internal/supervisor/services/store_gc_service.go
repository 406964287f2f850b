// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package services

import (
	"context"
	"time"

	"github.com/tomtom215/pantry/internal/logging"
)

// GarbageCollector is satisfied by *store.Store.
type GarbageCollector interface {
	RunGC(discardRatio float64) (int, error)
}

// StoreGCService runs value-log garbage collection every interval.
// GC errors are logged and retried on the next tick; they do not restart
// the service.
type StoreGCService struct {
	gc           GarbageCollector
	interval     time.Duration
	discardRatio float64
	name         string
}

// NewStoreGCService creates the service. A non-positive interval means 10m.
func NewStoreGCService(gc GarbageCollector, interval time.Duration, discardRatio float64) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{
		gc:           gc,
		interval:     interval,
		discardRatio: discardRatio,
		name:         "store-gc",
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *StoreGCService) runOnce() {
	start := time.Now()
	rewritten, err := s.gc.RunGC(s.discardRatio)
	if err != nil {
		logging.Warn().Err(err).Msg("Store value-log GC failed")
		return
	}
	if rewritten > 0 {
		logging.Info().
			Int("files_rewritten", rewritten).
			Dur("duration", time.Since(start)).
			Msg("Store value-log GC complete")
	}
}

func (s *StoreGCService) String() string {
	return s.name
}
