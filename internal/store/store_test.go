// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/metasearch/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "data", "metasearch.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "https://example.com/p/1")
	assert.ErrorIs(t, err, ErrNoRecord)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, Record{Link: "https://example.com/p/1", Value: "$10.00", Rule: "primary_price", FetchedAt: at}))

	got, err := s.Get(ctx, "https://example.com/p/1")
	require.NoError(t, err)
	assert.Equal(t, "$10.00", got.Value)
	assert.Equal(t, "primary_price", got.Rule)
	assert.True(t, at.Equal(got.FetchedAt))

	// Upsert replaces.
	require.NoError(t, s.Put(ctx, Record{Link: "https://example.com/p/1", Value: "$9.00", Rule: "deal_price", FetchedAt: at.Add(time.Hour)}))
	got, err = s.Get(ctx, "https://example.com/p/1")
	require.NoError(t, err)
	assert.Equal(t, "$9.00", got.Value)
	assert.Equal(t, "deal_price", got.Rule)
}

func TestPutRequiresLink(t *testing.T) {
	s := testStore(t)
	assert.Error(t, s.Put(context.Background(), Record{Value: "$1"}))
}

func TestPutStampsTime(t *testing.T) {
	s := testStore(t)
	fixed := time.Date(2026, 5, 5, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Put(context.Background(), Record{Link: "l", Value: "v"}))
	got, err := s.Get(context.Background(), "l")
	require.NoError(t, err)
	assert.True(t, fixed.Equal(got.FetchedAt))
}

func TestListNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, link := range []string{"a", "b", "c"} {
		require.NoError(t, s.Put(ctx, Record{Link: link, Value: "v", FetchedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].Link, all[1].Link, all[2].Link})

	two, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestPrune(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put(ctx, Record{Link: "old", Value: "v", FetchedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, s.Put(ctx, Record{Link: "new", Value: "v", FetchedAt: now.Add(-time.Hour)}))

	n, err := s.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNoRecord)
	_, err = s.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(types.StoreConfig{})
	assert.Error(t, err)
}
