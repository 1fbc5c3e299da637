// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package augment enriches individual search results with a value scraped
// from their target page, typically a displayed price.
package augment

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/metasearch/internal/apperr"
	"github.com/pdiddy/metasearch/internal/logger"
	"github.com/pdiddy/metasearch/internal/rule"
	"github.com/pdiddy/metasearch/internal/store"
)

// PageFetcher returns the raw content of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Cache stores successful augmentations. *store.Store satisfies it.
type Cache interface {
	Get(ctx context.Context, link string) (store.Record, error)
	Put(ctx context.Context, r store.Record) error
}

// Augmenter is implemented by Service; the board and batch helpers accept
// any implementation.
type Augmenter interface {
	Augment(ctx context.Context, link string) (Value, error)
}

// Value is a successful augmentation.
type Value struct {
	Link  string `json:"link" yaml:"link"`
	Value string `json:"value" yaml:"value"`
	Rule  string `json:"rule" yaml:"rule"`
	// Cached is true when the value came from the cache without a fetch.
	Cached bool `json:"cached" yaml:"cached"`
}

// Service fetches a page and applies extraction rules to it. Calls share no
// mutable state, so Augment is safe to call concurrently, including for the
// same link: each call owns its own fetch.
type Service struct {
	fetcher  PageFetcher
	rules    []rule.Rule
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
	log      *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache records successful values in c. When ttl > 0, a cached value
// younger than ttl is returned without fetching.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.log = logger.OrDiscard(l) }
}

// NewService creates a Service. Empty rules select rule.DefaultPriceRules.
func NewService(f PageFetcher, rules []rule.Rule, opts ...Option) *Service {
	if len(rules) == 0 {
		rules = rule.DefaultPriceRules()
	}
	s := &Service{
		fetcher: f,
		rules:   append([]rule.Rule(nil), rules...),
		now:     time.Now,
		log:     logger.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Augment fetches link and returns the first value produced by the rules.
// It fails with a KindFetch error when the page cannot be retrieved and a
// KindNotFound error when no rule matched.
func (s *Service) Augment(ctx context.Context, link string) (Value, error) {
	if v, ok := s.fromCache(ctx, link); ok {
		return v, nil
	}

	body, err := s.fetcher.Fetch(ctx, link)
	if err != nil {
		s.log.Warn("augmentation fetch failed", "link", link, "err", err)
		if apperr.KindOf(err) == apperr.KindFetch {
			return Value{}, err
		}
		return Value{}, apperr.Wrap(apperr.KindFetch, "augment", "fetching page", err)
	}

	m, ok := rule.Extract(body, s.rules)
	if !ok {
		s.log.Info("no rule matched", "link", link, "rules", len(s.rules))
		return Value{}, apperr.New(apperr.KindNotFound, "augment", "no extraction rule matched")
	}

	v := Value{Link: link, Value: m.Value, Rule: m.Rule}
	if s.cache != nil {
		if err := s.cache.Put(ctx, store.Record{Link: link, Value: m.Value, Rule: m.Rule, FetchedAt: s.now()}); err != nil {
			s.log.Warn("caching augmented value", "link", link, "err", err)
		}
	}
	return v, nil
}

func (s *Service) fromCache(ctx context.Context, link string) (Value, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return Value{}, false
	}
	r, err := s.cache.Get(ctx, link)
	if err != nil {
		if !errors.Is(err, store.ErrNoRecord) {
			s.log.Warn("reading cached value", "link", link, "err", err)
		}
		return Value{}, false
	}
	if s.now().Sub(r.FetchedAt) > s.cacheTTL {
		return Value{}, false
	}
	return Value{Link: link, Value: r.Value, Rule: r.Rule, Cached: true}, true
}
