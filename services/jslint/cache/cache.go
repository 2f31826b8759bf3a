// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache stores analysis results on disk with BadgerDB.
//
// Entries are keyed by file content hash and the engine fingerprint, so an
// edited file or a changed rule set is simply a miss. Every failure is
// logged and reported as a miss; the cache can never fail a run.
//
// A nil *Cache is valid and always misses.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/jslint/services/jslint/analyzer"
)

// keyPrefix versions the entry encoding.
const keyPrefix = "jslint/v2/"

// ErrPathRequired indicates a persistent cache without a directory.
var ErrPathRequired = errors.New("path is required for persistent cache")

// Config holds configuration for a cache.
type Config struct {
	// Path is the cache directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps entries in RAM only. Useful for testing.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// TTL expires entries. 0 keeps them until evicted.
	TTL time.Duration

	// Logger receives cache and BadgerDB messages. nil disables
	// BadgerDB's internal logging and uses slog.Default for the cache.
	Logger *slog.Logger
}

// DefaultConfig returns a persistent configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{
		Path: path,
		TTL:  7 * 24 * time.Hour,
	}
}

// InMemoryConfig returns configuration optimized for testing.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Entry is one cached analysis.
type Entry struct {
	Language        string                `json:"language"`
	HasSyntaxErrors bool                  `json:"has_syntax_errors,omitempty"`
	Diagnostics     []analyzer.Diagnostic `json:"diagnostics"`
}

// Stats counts cache traffic.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Writes int64 `json:"writes"`
	Errors int64 `json:"errors"`
}

// Cache is a BadgerDB-backed result cache.
//
// Thread Safety: Safe for concurrent use.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
	closed atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
	errs   atomic.Int64
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens the cache described by cfg.
//
// Inputs:
//
//	cfg - Cache configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*Cache - The opened cache. Caller must call Close() when done.
//	error  - Non-nil if the directory or database cannot be opened.
func Open(cfg Config) (*Cache, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, ErrPathRequired
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.Default()
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	return &Cache{db: db, ttl: cfg.TTL, logger: logger}, nil
}

// Key builds the cache key for a file content hash parsed as language
// under an engine fingerprint. The same bytes parse differently per
// grammar, so language is part of the identity.
func Key(language, contentHash, fingerprint string) []byte {
	return []byte(keyPrefix + fingerprint + "/" + language + "/" + contentHash)
}

// Get returns the entry stored under key.
func (c *Cache) Get(ctx context.Context, key []byte) (*Entry, bool) {
	if c == nil || c.closed.Load() {
		return nil, false
	}
	if ctx.Err() != nil {
		c.misses.Add(1)
		return nil, false
	}

	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	switch {
	case err == nil:
		c.hits.Add(1)
		return &entry, true
	case errors.Is(err, badger.ErrKeyNotFound):
		c.misses.Add(1)
		return nil, false
	default:
		c.misses.Add(1)
		c.errs.Add(1)
		c.logger.Warn("cache read failed",
			slog.String("key", string(key)),
			slog.String("error", err.Error()))
		return nil, false
	}
}

// Put stores entry under key. Failures are logged and dropped.
func (c *Cache) Put(ctx context.Context, key []byte, entry *Entry) {
	if c == nil || c.closed.Load() || entry == nil || ctx.Err() != nil {
		return
	}

	val, err := json.Marshal(entry)
	if err != nil {
		c.errs.Add(1)
		c.logger.Warn("cache encode failed", slog.String("error", err.Error()))
		return
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, val)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.errs.Add(1)
		c.logger.Warn("cache write failed",
			slog.String("key", string(key)),
			slog.String("error", err.Error()))
		return
	}
	c.writes.Add(1)
}

// Stats returns traffic counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Writes: c.writes.Load(),
		Errors: c.errs.Load(),
	}
}

// Close closes the database. Safe to call multiple times.
func (c *Cache) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.db.Close()
}
