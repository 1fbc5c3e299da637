// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package controller

import (
	"github.com/pdiddy/metasearch/internal/apperr"
	"github.com/pdiddy/metasearch/internal/augment"
	"github.com/pdiddy/metasearch/pkg/types"
)

// Snapshot is a read-only copy of the controller state handed to the
// presentation layer.
type Snapshot struct {
	Query         string
	Suggestions   []string
	SelectedIndex int
	// SuggestionError is set when the latest suggestion lookup failed. It
	// does not block searching.
	SuggestionError string
	// FetchGeneration identifies the most recent suggestion request.
	FetchGeneration uint64

	Results      []types.ResultItem
	Loading      bool
	Error        string
	ErrorKind    apperr.Kind
	ImageMode    bool
	NextStart    int
	TotalResults int64

	// Augmented holds per-link augmentation state.
	Augmented map[string]augment.Entry
}

// SuggestionsVisible reports whether the suggestion list is shown, which is
// also when the list's keyboard handling is active.
func (s Snapshot) SuggestionsVisible() bool {
	return len(s.Suggestions) > 0
}

// Selected returns the highlighted suggestion.
func (s Snapshot) Selected() (string, bool) {
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Suggestions) {
		return "", false
	}
	return s.Suggestions[s.SelectedIndex], true
}

// HasNext reports whether another result page can be loaded.
func (s Snapshot) HasNext() bool {
	return s.NextStart > 0
}

// AugmentedValue returns the augmented value for link, if one exists.
func (s Snapshot) AugmentedValue(link string) (string, bool) {
	e, ok := s.Augmented[link]
	if !ok || !e.HasValue() {
		return "", false
	}
	return e.Value, true
}
