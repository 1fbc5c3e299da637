// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package augment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/metasearch/internal/apperr"
	"github.com/pdiddy/metasearch/internal/fetch"
	"github.com/pdiddy/metasearch/internal/rule"
	"github.com/pdiddy/metasearch/internal/store"
	"github.com/pdiddy/metasearch/pkg/types"
)

// fakeFetcher serves canned pages keyed by URL.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[u]++
	if err, ok := f.errs[u]; ok {
		return "", err
	}
	return f.pages[u], nil
}

func (f *fakeFetcher) count(u string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[u]
}

const pricedPage = `<html><body><span id="priceblock_ourprice"> $24.99 </span></body></html>`
const dealPage = `<html><body><span id="priceblock_dealprice">$19.99</span></body></html>`
const barePage = `<html><body><h1>Out of stock</h1></body></html>`

func TestAugment(t *testing.T) {
	f := newFakeFetcher()
	f.pages["https://shop.example/primary"] = pricedPage
	f.pages["https://shop.example/deal"] = dealPage
	f.pages["https://shop.example/bare"] = barePage
	f.errs["https://shop.example/down"] = apperr.Wrap(apperr.KindFetch, "fetch", "HTTP 503", nil)
	f.errs["https://shop.example/raw"] = errors.New("connection reset")

	svc := NewService(f, nil)

	tests := []struct {
		link     string
		want     string
		wantRule string
		wantErr  error
	}{
		{"https://shop.example/primary", "$24.99", "primary_price", nil},
		{"https://shop.example/deal", "$19.99", "deal_price", nil},
		{"https://shop.example/bare", "", "", apperr.ErrNotFound},
		{"https://shop.example/down", "", "", apperr.ErrFetch},
		{"https://shop.example/raw", "", "", apperr.ErrFetch},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			v, err := svc.Augment(context.Background(), tt.link)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Value)
			assert.Equal(t, tt.wantRule, v.Rule)
			assert.Equal(t, tt.link, v.Link)
		})
	}
}

func TestAugmentFetchErrorKeepsCause(t *testing.T) {
	f := newFakeFetcher()
	cause := errors.New("tls: handshake failure")
	f.errs["https://x.example"] = cause

	_, err := NewService(f, nil).Augment(context.Background(), "https://x.example")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Could not fetch the page.", apperr.UserMessage(err))
}

func TestAugmentCustomRules(t *testing.T) {
	f := newFakeFetcher()
	f.pages["u"] = `<meta itemprop="price" content="7.50">`
	svc := NewService(f, []rule.Rule{{Name: "meta", Selector: `meta[itemprop="price"]`}, {Name: "attr", Pattern: `content="([^"]+)"`}})

	v, err := svc.Augment(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "7.50", v.Value)
	assert.Equal(t, "attr", v.Rule)
}

func TestAugmentEndToEndOverHTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dp/1":
			fmt.Fprint(w, pricedPage)
		case "/dp/2":
			fmt.Fprint(w, barePage)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	svc := NewService(fetch.New(ts.Client(), types.HTTPConfig{}, 0, nil), nil)

	v, err := svc.Augment(context.Background(), ts.URL+"/dp/1")
	require.NoError(t, err)
	assert.Equal(t, "$24.99", v.Value)

	_, err = svc.Augment(context.Background(), ts.URL+"/dp/2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Augment(context.Background(), ts.URL+"/missing")
	assert.ErrorIs(t, err, apperr.ErrFetch)
}

func TestAugmentCache(t *testing.T) {
	s, err := store.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "prices.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := newFakeFetcher()
	f.pages["https://shop.example/p"] = pricedPage

	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(f, nil, WithCache(s, time.Hour))
	svc.now = func() time.Time { return now }

	v, err := svc.Augment(context.Background(), "https://shop.example/p")
	require.NoError(t, err)
	assert.False(t, v.Cached)

	v, err = svc.Augment(context.Background(), "https://shop.example/p")
	require.NoError(t, err)
	assert.True(t, v.Cached)
	assert.Equal(t, "$24.99", v.Value)
	assert.Equal(t, 1, f.count("https://shop.example/p"))

	// Expired entries are re-fetched.
	now = now.Add(2 * time.Hour)
	v, err = svc.Augment(context.Background(), "https://shop.example/p")
	require.NoError(t, err)
	assert.False(t, v.Cached)
	assert.Equal(t, 2, f.count("https://shop.example/p"))
}

func TestAugmentCacheRecordsWithoutServingWhenTTLZero(t *testing.T) {
	s, err := store.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "prices.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := newFakeFetcher()
	f.pages["p"] = dealPage
	svc := NewService(f, nil, WithCache(s, 0))

	for i := 0; i < 2; i++ {
		_, err := svc.Augment(context.Background(), "p")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.count("p"))

	rec, err := s.Get(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "$19.99", rec.Value)
	assert.Equal(t, "deal_price", rec.Rule)
}

func TestAugmentConcurrentSameAndDifferentLinks(t *testing.T) {
	f := newFakeFetcher()
	f.pages["a"] = pricedPage
	f.pages["b"] = dealPage
	svc := NewService(f, nil)

	var wg sync.WaitGroup
	results := make([]Value, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			link := "a"
			if i%2 == 1 {
				link = "b"
			}
			v, err := svc.Augment(context.Background(), link)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	for i, v := range results {
		if i%2 == 1 {
			assert.Equal(t, "$19.99", v.Value)
		} else {
			assert.Equal(t, "$24.99", v.Value)
		}
	}
	assert.Equal(t, 10, f.count("a"))
}

func TestBatchPreservesOrderAndIsolatesFailures(t *testing.T) {
	f := newFakeFetcher()
	f.pages["ok1"] = pricedPage
	f.pages["none"] = barePage
	f.errs["down"] = errors.New("timeout")
	f.pages["ok2"] = dealPage

	out := Batch(context.Background(), NewService(f, nil), []string{"ok1", "none", "down", "ok2"}, 2)
	require.Len(t, out, 4)

	assert.Equal(t, "ok1", out[0].Link)
	assert.NoError(t, out[0].Err)
	assert.Equal(t, "$24.99", out[0].Value.Value)

	assert.ErrorIs(t, out[1].Err, apperr.ErrNotFound)
	assert.ErrorIs(t, out[2].Err, apperr.ErrFetch)

	assert.NoError(t, out[3].Err)
	assert.Equal(t, "$19.99", out[3].Value.Value)
}
