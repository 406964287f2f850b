// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package store is Pantry's document store: the Users and Recipes
// collections kept as JSON documents in BadgerDB.
//
// Key layout:
//
//	recipe:<id>          Recipe document
//	user:<id>            User document
//	user_email:<email>   user id (unique, lower-cased)
//	user_oidc:<subject>  user id
//
// Operations that touch several documents (creating a recipe and appending it
// to the author's uploads, rating a recipe) run in a single transaction.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
)

// Key prefixes for BadgerDB storage
const (
	recipeKeyPrefix    = "recipe:"
	userKeyPrefix      = "user:"
	userEmailKeyPrefix = "user_email:"
	userOIDCKeyPrefix  = "user_oidc:"
)

// Collection labels for metrics.
const (
	collRecipes = "recipes"
	collUsers   = "users"
)

// maxConflictRetries bounds how often a transaction is retried after
// badger.ErrConflict.
const maxConflictRetries = 5

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidRating is returned for a vote outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrForbidden is returned when the caller may not modify a document.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidDocument is returned when a document is missing required fields.
	ErrInvalidDocument = errors.New("invalid document")
)

// Config holds the options used to open the store.
type Config struct {
	Path       string
	InMemory   bool
	SyncWrites bool
}

// Store is the badger-backed document store.
type Store struct {
	db    *badger.DB
	now   func() time.Time
	newID func() string
}

// Open opens (or creates) the store.
func Open(cfg Config) (*Store, error) {
	path := cfg.Path
	if cfg.InMemory {
		path = ""
	}
	opts := badger.DefaultOptions(path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(newBadgerLogger())

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Document store opened")

	return &Store{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}, nil
}

// OpenInMemory opens a store that lives only in RAM.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	return nil
}

// Ping reports whether the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("store is closed")
	}
	return s.view(ctx, func(*badger.Txn) error { return nil })
}

// RunGC runs value-log garbage collection until nothing is left to rewrite
// and returns the number of files rewritten. In-memory stores have no value
// log and return 0.
func (s *Store) RunGC(ratio float64) (int, error) {
	if s.db.Opts().InMemory {
		return 0, nil
	}
	rewritten := 0
	for {
		err := s.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			metrics.RecordStoreGC("error")
			return rewritten, fmt.Errorf("run GC: %w", err)
		}
		rewritten++
	}
	if rewritten == 0 {
		metrics.RecordStoreGC("nothing")
	} else {
		metrics.RecordStoreGC("rewritten")
	}
	return rewritten, nil
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

// observe records metrics for one operation.
func observe(operation, collection string, start time.Time, err error) {
	metrics.RecordStoreOp(operation, collection, time.Since(start), err)
}

func getJSON(txn *badger.Txn, key string, v interface{}) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, v); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		return nil
	})
}

func setJSON(txn *badger.Txn, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := txn.Set([]byte(key), data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func getString(txn *badger.Txn, key string) (string, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(val), nil
}

func deleteKey(txn *badger.Txn, key string) error {
	if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func removeString(list []string, v string) ([]string, bool) {
	out := list[:0]
	removed := false
	for _, s := range list {
		if s == v {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out, removed
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
