// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/jslint/services/jslint/analyzer"
	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

func sampleEntry() *Entry {
	return &Entry{
		Language: "javascript",
		Diagnostics: []analyzer.Diagnostic{{
			Category: "lint/nursery/noInvalidConstructorSuper",
			Rule:     "noInvalidConstructorSuper",
			Severity: analyzer.SeverityError,
			File:     "a.js",
			Range:    syntax.TextRange{Start: 10, End: 19},
			Start:    syntax.Position{Line: 1, Column: 11},
			End:      syntax.Position{Line: 1, Column: 20},
			Message:  "This class extends another class and a super() call is expected.",
			Details: []analyzer.Detail{{
				Range:   syntax.TextRange{Start: 1, End: 2},
				Message: "here",
			}},
		}},
	}
}

func openInMemory(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_PutGet(t *testing.T) {
	ctx := context.Background()
	c := openInMemory(t)

	key := Key("javascript", "hash1", "fp1")
	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	c.Put(ctx, key, sampleEntry())
	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, sampleEntry(), got)

	_, ok = c.Get(ctx, Key("javascript", "hash1", "fp2"))
	assert.False(t, ok, "other fingerprint must miss")

	_, ok = c.Get(ctx, Key("typescript", "hash1", "fp1"))
	assert.False(t, ok, "other language must miss")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(3), stats.Misses)
	assert.Equal(t, int64(1), stats.Writes)
	assert.Zero(t, stats.Errors)
}

func TestCache_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	c.Put(ctx, Key("javascript", "h", "f"), sampleEntry())
	require.NoError(t, c.Close())

	c, err = Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer c.Close()

	got, ok := c.Get(ctx, Key("javascript", "h", "f"))
	require.True(t, ok)
	assert.Len(t, got.Diagnostics, 1)
}

func TestCache_NilAndClosed(t *testing.T) {
	ctx := context.Background()

	var nilCache *Cache
	_, ok := nilCache.Get(ctx, Key("javascript", "h", "f"))
	assert.False(t, ok)
	nilCache.Put(ctx, Key("javascript", "h", "f"), sampleEntry())
	assert.NoError(t, nilCache.Close())
	assert.Equal(t, Stats{}, nilCache.Stats())

	c, err := Open(InMemoryConfig())
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	c.Put(ctx, Key("javascript", "h", "f"), sampleEntry())
	_, ok = c.Get(ctx, Key("javascript", "h", "f"))
	assert.False(t, ok)
}

func TestCache_CanceledContextMisses(t *testing.T) {
	c := openInMemory(t)
	c.Put(context.Background(), Key("javascript", "h", "f"), sampleEntry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := c.Get(ctx, Key("javascript", "h", "f"))
	assert.False(t, ok)
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c := openInMemory(t)

	require.NoError(t, c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(Key("javascript", "h", "f"), []byte("{not json"))
	}))

	_, ok := c.Get(ctx, Key("javascript", "h", "f"))
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Errors)
}

func TestCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := openInMemory(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := Key("javascript", "shared", "fp")
			c.Put(ctx, key, sampleEntry())
			if got, ok := c.Get(ctx, key); ok {
				assert.Len(t, got.Diagnostics, 1)
			}
		}()
	}
	wg.Wait()
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.True(t, errors.Is(err, ErrPathRequired))
}
