// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the metasearch
// services, the interactive front end and the CLI.
package types

// ResultItem is one ranked record returned by the search API. The core reads
// result items and never mutates them.
type ResultItem struct {
	// Title is the result title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Link is the target URL. It is also the key for augmentation state.
	Link string `json:"link" yaml:"link"`

	// Snippet is the short text excerpt shown under the title.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Image is present only for image-mode results.
	Image *Image `json:"image,omitempty" yaml:"image,omitempty"`
}

// Image holds the optional image metadata of an image-mode result.
type Image struct {
	ThumbnailLink string `json:"thumbnailLink" yaml:"thumbnail_link"`
}

// HasThumbnail reports whether the item carries a usable thumbnail reference.
func (r ResultItem) HasThumbnail() bool {
	return r.Image != nil && r.Image.ThumbnailLink != ""
}

// SearchType selects the provider's search mode.
type SearchType string

const (
	SearchText  SearchType = ""
	SearchImage SearchType = "image"
)

// Credentials identify the caller to the search API.
type Credentials struct {
	APIKey   string `json:"-" yaml:"-"`
	EngineID string `json:"-" yaml:"-"`
}

// Missing returns the names of the credentials that are not set.
func (c Credentials) Missing() []string {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "api key")
	}
	if c.EngineID == "" {
		missing = append(missing, "search engine id")
	}
	return missing
}
