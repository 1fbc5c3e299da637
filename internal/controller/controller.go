// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package controller owns the query box state: the query text, the
// debounced suggestion lookup, the highlighted suggestion and keyboard
// transitions, plus search submission and per-result augmentation.
//
// State is mutated only through Controller methods and published to the
// presentation layer as Snapshot values. Suggestion lookups may resolve in
// any order; each carries the fetch generation current when it was issued
// and is applied only if that generation is still current.
package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/metasearch/internal/apperr"
	"github.com/pdiddy/metasearch/internal/augment"
	"github.com/pdiddy/metasearch/internal/logger"
	"github.com/pdiddy/metasearch/internal/search"
	"github.com/pdiddy/metasearch/internal/suggest"
	"github.com/pdiddy/metasearch/pkg/types"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// suggestion lookup is issued.
const DefaultDebounce = 200 * time.Millisecond

const suggestionsUnavailable = "Suggestions unavailable."

// Key is a keyboard event relevant to the suggestion list.
type Key int

const (
	KeyOther Key = iota
	KeyDown
	KeyUp
	KeyEnter
	KeyEscape
)

// Controller is the query suggestion state machine. It is safe for use from
// multiple goroutines; lookups resolve on their own goroutines.
type Controller struct {
	suggester suggest.Suggester
	searcher  search.Searcher
	board     *augment.Board
	sched     Scheduler
	run       Runner
	debounce  time.Duration
	baseCtx   context.Context
	log       *log.Logger

	mu          sync.Mutex
	query       string
	suggestions []string
	selected    int
	suggestErr  string
	generation  uint64
	pending     Timer

	results   []types.ResultItem
	loading   bool
	errMsg    string
	errKind   apperr.Kind
	image     bool
	searchGen uint64
	lastQuery string
	nextStart int
	total     int64

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the debounce interval. Zero or less issues lookups
// immediately.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithScheduler replaces the timer source used for debouncing.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithRunner replaces how suggestion lookups are started.
func WithRunner(r Runner) Option {
	return func(c *Controller) { c.run = r }
}

// WithAugmenter enables RequestAugmentation.
func WithAugmenter(a augment.Augmenter) Option {
	return func(c *Controller) {
		if a != nil {
			c.board = augment.NewBoard(a, c.notify)
		}
	}
}

// WithContext sets the context suggestion lookups run under.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.baseCtx = ctx }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.log = logger.OrDiscard(l) }
}

// New creates a Controller with an empty query.
func New(s suggest.Suggester, searcher search.Searcher, opts ...Option) *Controller {
	c := &Controller{
		suggester: s,
		searcher:  searcher,
		sched:     clock{},
		run:       goRunner,
		debounce:  DefaultDebounce,
		baseCtx:   context.Background(),
		log:       logger.Discard(),
		selected:  -1,
		total:     -1,
		subs:      make(map[int]func(Snapshot)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs outside the controller's lock. The returned func unsubscribes.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) notify() {
	snap := c.Snapshot()
	c.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{
		Query:           c.query,
		Suggestions:     append([]string(nil), c.suggestions...),
		SelectedIndex:   c.selected,
		SuggestionError: c.suggestErr,
		FetchGeneration: c.generation,
		Results:         append([]types.ResultItem(nil), c.results...),
		Loading:         c.loading,
		Error:           c.errMsg,
		ErrorKind:       c.errKind,
		ImageMode:       c.image,
		NextStart:       c.nextStart,
		TotalResults:    c.total,
	}
	c.mu.Unlock()
	if c.board != nil {
		s.Augmented = c.board.Snapshot()
	} else {
		s.Augmented = map[string]augment.Entry{}
	}
	return s
}

// SetQuery replaces the query text and reschedules the suggestion lookup.
// A blank query clears the suggestions without any lookup.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	c.query = text
	c.invalidateLocked()

	if strings.TrimSpace(text) == "" {
		c.clearSuggestionsLocked()
		c.suggestErr = ""
		c.mu.Unlock()
		c.notify()
		return
	}

	scheduled := c.generation
	immediate := c.debounce <= 0
	if !immediate {
		c.pending = c.sched.AfterFunc(c.debounce, func() { c.issueFetch(scheduled) })
	}
	c.mu.Unlock()
	c.notify()

	if immediate {
		c.issueFetch(scheduled)
	}
}

// issueFetch starts a lookup for the current query if nothing happened since
// it was scheduled.
func (c *Controller) issueFetch(scheduled uint64) {
	c.mu.Lock()
	if c.generation != scheduled {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.generation++
	token := c.generation
	prefix := c.query
	c.mu.Unlock()

	c.run(func() {
		words, err := c.suggester.Suggest(c.baseCtx, prefix)
		if err != nil {
			c.OnFetchFailed(token, err)
			return
		}
		c.OnFetchResolved(token, words)
	})
}

// OnFetchResolved applies words if token is the current fetch generation and
// reports whether it did. Stale results are discarded silently.
func (c *Controller) OnFetchResolved(token uint64, words []string) bool {
	c.mu.Lock()
	if token != c.generation {
		c.mu.Unlock()
		c.log.Debug("discarding stale suggestions", "token", token, "count", len(words))
		return false
	}
	c.suggestions = append([]string(nil), words...)
	c.selected = -1
	c.suggestErr = ""
	c.mu.Unlock()
	c.notify()
	return true
}

// OnFetchFailed flags suggestions as unavailable if token is current. Prior
// suggestions are left untouched.
func (c *Controller) OnFetchFailed(token uint64, err error) bool {
	c.mu.Lock()
	if token != c.generation {
		c.mu.Unlock()
		c.log.Debug("discarding stale suggestion failure", "token", token, "err", err)
		return false
	}
	c.suggestErr = suggestionsUnavailable
	c.mu.Unlock()
	c.log.Warn("suggestion lookup failed", "err", err)
	c.notify()
	return true
}

// OnKey applies a keyboard event to the suggestion list. It is active only
// while suggestions are shown and reports whether the event was consumed.
// Enter with nothing highlighted is not consumed, so it falls through to
// form submission.
func (c *Controller) OnKey(k Key) bool {
	c.mu.Lock()
	n := len(c.suggestions)
	if n == 0 {
		c.mu.Unlock()
		return false
	}
	switch k {
	case KeyDown:
		c.selected = (c.selected + 1) % n
	case KeyUp:
		if c.selected <= 0 {
			c.selected = n - 1
		} else {
			c.selected--
		}
	case KeyEnter:
		if c.selected < 0 {
			c.mu.Unlock()
			return false
		}
		c.commitLocked(c.selected)
	case KeyEscape:
		c.clearSuggestionsLocked()
		c.invalidateLocked()
	default:
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()
	c.notify()
	return true
}

// Hover highlights suggestion i, as if reached with the arrow keys.
func (c *Controller) Hover(i int) bool {
	c.mu.Lock()
	if i < 0 || i >= len(c.suggestions) {
		c.mu.Unlock()
		return false
	}
	c.selected = i
	c.mu.Unlock()
	c.notify()
	return true
}

// Click commits suggestion i, as if highlighted and confirmed with Enter.
func (c *Controller) Click(i int) bool {
	c.mu.Lock()
	if i < 0 || i >= len(c.suggestions) {
		c.mu.Unlock()
		return false
	}
	c.commitLocked(i)
	c.mu.Unlock()
	c.notify()
	return true
}

func (c *Controller) commitLocked(i int) {
	c.query = c.suggestions[i]
	c.clearSuggestionsLocked()
	c.invalidateLocked()
}

func (c *Controller) clearSuggestionsLocked() {
	c.suggestions = nil
	c.selected = -1
}

// invalidateLocked makes every in-flight lookup stale and cancels the
// pending debounce.
func (c *Controller) invalidateLocked() {
	c.generation++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

// SetImageMode switches between text and image search for later submits.
func (c *Controller) SetImageMode(on bool) {
	c.mu.Lock()
	c.image = on
	c.mu.Unlock()
	c.notify()
}

// Submit searches for the current query. A blank query fails with a
// validation error and missing credentials with a configuration error,
// both without any network call. Suggestions are cleared and any lookup
// still in flight is discarded.
func (c *Controller) Submit(ctx context.Context) (search.Page, error) {
	c.mu.Lock()
	q := strings.TrimSpace(c.query)
	if q == "" {
		err := apperr.New(apperr.KindValidation, "submit", "query required")
		c.abandonSearchLocked()
		c.failLocked(err)
		c.mu.Unlock()
		c.notify()
		return search.Page{}, err
	}
	if err := c.searcher.Validate(); err != nil {
		c.abandonSearchLocked()
		c.failLocked(err)
		c.mu.Unlock()
		c.log.Error("search not configured", "err", err)
		c.notify()
		return search.Page{}, err
	}
	c.clearSuggestionsLocked()
	c.invalidateLocked()
	return c.searchLocked(ctx, q, 1)
}

// NextPage loads the page after the last successful search.
func (c *Controller) NextPage(ctx context.Context) (search.Page, error) {
	c.mu.Lock()
	if c.lastQuery == "" || c.nextStart <= 0 || c.loading {
		c.mu.Unlock()
		return search.Page{}, apperr.New(apperr.KindValidation, "next page", "no more results")
	}
	return c.searchLocked(ctx, c.lastQuery, c.nextStart)
}

// searchLocked runs a search. It is entered with c.mu held and releases it.
func (c *Controller) searchLocked(ctx context.Context, q string, start int) (search.Page, error) {
	c.searchGen++
	gen := c.searchGen
	c.loading = true
	c.errMsg = ""
	c.errKind = apperr.KindUnknown
	c.results = nil
	c.lastQuery = q
	req := search.Request{Query: q, Start: start}
	if c.image {
		req.Type = types.SearchImage
	}
	c.mu.Unlock()
	// Prices belong to the list being replaced.
	if c.board != nil {
		c.board.Reset()
	}
	c.notify()

	page, err := c.searcher.Search(ctx, req)

	c.mu.Lock()
	if gen != c.searchGen {
		c.mu.Unlock()
		c.log.Debug("discarding superseded search", "query", q, "start", start)
		return page, err
	}
	c.loading = false
	if err != nil {
		c.failLocked(err)
		c.mu.Unlock()
		c.log.Error("search failed", "query", q, "err", err)
		c.notify()
		return search.Page{}, err
	}
	c.results = page.Items
	c.errMsg = ""
	c.errKind = apperr.KindUnknown
	c.nextStart = page.NextStart
	c.total = page.TotalResults
	c.mu.Unlock()
	c.notify()
	return page, nil
}

// abandonSearchLocked makes any search in flight stale so it cannot land
// on top of a newer failure.
func (c *Controller) abandonSearchLocked() {
	c.searchGen++
	c.loading = false
}

func (c *Controller) failLocked(err error) {
	c.results = nil
	c.nextStart = 0
	c.total = -1
	c.errMsg = apperr.UserMessage(err)
	c.errKind = apperr.KindOf(err)
}

// RequestAugmentation augments one result link. Its outcome is scoped to
// that link and never touches the result list or other links.
func (c *Controller) RequestAugmentation(ctx context.Context, link string) (augment.Entry, error) {
	if c.board == nil {
		return augment.Entry{}, apperr.New(apperr.KindConfiguration, "augment", "augmentation disabled")
	}
	e, err := c.board.Request(ctx, link)
	if err != nil {
		c.log.Warn("augmentation failed", "link", link, "err", err)
	}
	return e, err
}

// Close cancels the pending debounce and discards any lookup in flight.
func (c *Controller) Close() {
	c.mu.Lock()
	c.invalidateLocked()
	c.mu.Unlock()
}
