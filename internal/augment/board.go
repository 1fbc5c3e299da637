// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package augment

import (
	"context"
	"sync"

	"github.com/pdiddy/metasearch/internal/apperr"
)

// Status is the augmentation state of one link.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReady    Status = "ready"
	StatusNotFound Status = "not_found"
	StatusFailed   Status = "failed"
)

// Entry is the per-link augmentation state shown next to a result.
type Entry struct {
	Status Status `json:"status" yaml:"status"`
	// Value is the last successfully augmented value; empty until one exists.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	// Message is the friendly error text for NotFound and Failed.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// HasValue reports whether the entry carries an augmented value.
func (e Entry) HasValue() bool { return e.Value != "" }

type slot struct {
	entry Entry
	token uint64
}

// Board tracks augmentation state keyed by link. Each request gets its own
// token and only the newest request for a link may write that link's entry;
// links never affect each other.
type Board struct {
	svc      Augmenter
	mu       sync.Mutex
	seq      uint64
	slots    map[string]*slot
	onChange func()
}

// NewBoard creates a board over svc. onChange, if set, runs after every
// state change outside the board's lock.
func NewBoard(svc Augmenter, onChange func()) *Board {
	return &Board{
		svc:      svc,
		slots:    make(map[string]*slot),
		onChange: onChange,
	}
}

// Request augments link and records the outcome. It blocks until the
// augmentation finishes and returns the resulting entry and error.
func (b *Board) Request(ctx context.Context, link string) (Entry, error) {
	if link == "" {
		return Entry{}, apperr.New(apperr.KindValidation, "augment", "link required")
	}

	b.mu.Lock()
	b.seq++
	token := b.seq
	s, ok := b.slots[link]
	if !ok {
		s = &slot{}
		b.slots[link] = s
	}
	s.token = token
	s.entry = Entry{Status: StatusPending, Value: s.entry.Value}
	b.mu.Unlock()
	b.changed()

	v, err := b.svc.Augment(ctx, link)

	b.mu.Lock()
	cur := b.slots[link]
	if cur == nil || cur.token != token {
		b.mu.Unlock()
		return b.outcome(v, err), err
	}
	cur.entry = b.merge(cur.entry, v, err)
	out := cur.entry
	b.mu.Unlock()
	b.changed()
	return out, err
}

func (b *Board) outcome(v Value, err error) Entry {
	return b.merge(Entry{}, v, err)
}

func (b *Board) merge(prev Entry, v Value, err error) Entry {
	switch {
	case err == nil:
		return Entry{Status: StatusReady, Value: v.Value}
	case apperr.KindOf(err) == apperr.KindNotFound:
		return Entry{Status: StatusNotFound, Value: prev.Value, Message: apperr.UserMessage(err)}
	default:
		return Entry{Status: StatusFailed, Value: prev.Value, Message: apperr.UserMessage(err)}
	}
}

// Entry returns the state for link.
func (b *Board) Entry(link string) (Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.slots[link]
	if !ok {
		return Entry{}, false
	}
	return s.entry, true
}

// Snapshot returns a copy of all entries.
func (b *Board) Snapshot() map[string]Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]Entry, len(b.slots))
	for link, s := range b.slots {
		out[link] = s.entry
	}
	return out
}

// Reset drops all entries. Requests still in flight are discarded when
// they finish.
func (b *Board) Reset() {
	b.mu.Lock()
	b.slots = make(map[string]*slot)
	b.mu.Unlock()
	b.changed()
}

func (b *Board) changed() {
	if b.onChange != nil {
		b.onChange()
	}
}
