// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/metasearch/pkg/types"
)

// Output is a page of results plus any augmented values keyed by link.
type Output struct {
	Query  string            `json:"query" yaml:"query"`
	Page   Page              `json:"page" yaml:"page"`
	Prices map[string]string `json:"prices,omitempty" yaml:"prices,omitempty"`
	// PriceErrors holds the friendly message for links that failed.
	PriceErrors map[string]string `json:"price_errors,omitempty" yaml:"price_errors,omitempty"`
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Page.Items) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	withPrices := len(out.Prices) > 0 || len(out.PriceErrors) > 0
	if withPrices {
		fmt.Fprintf(w, "%-4s  %-50s  %-14s  %s\n", "Rank", "Title", "Price", "Link")
	} else {
		fmt.Fprintf(w, "%-4s  %-50s  %s\n", "Rank", "Title", "Link")
	}
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range out.Page.Items {
		title := truncate(oneLine(r.Title), 50)
		if withPrices {
			fmt.Fprintf(w, "%-4d  %-50s  %-14s  %s\n", i+1, title, priceCell(out, r.Link), r.Link)
		} else {
			fmt.Fprintf(w, "%-4d  %-50s  %s\n", i+1, title, r.Link)
		}
		if r.Snippet != "" {
			fmt.Fprintf(w, "      %s\n", truncate(oneLine(r.Snippet), 94))
		}
		if r.HasThumbnail() {
			fmt.Fprintf(w, "      thumbnail: %s\n", r.Image.ThumbnailLink)
		}
	}

	fmt.Fprintf(w, "\n%d results", len(out.Page.Items))
	if out.Page.TotalResults >= 0 {
		fmt.Fprintf(w, " (about %d total)", out.Page.TotalResults)
	}
	if out.Page.HasNext() {
		fmt.Fprintf(w, "; next page: --start %d", out.Page.NextStart)
	}
	fmt.Fprintln(w)
}

func priceCell(out Output, link string) string {
	if p, ok := out.Prices[link]; ok {
		return truncate(p, 14)
	}
	if _, ok := out.PriceErrors[link]; ok {
		return "n/a"
	}
	return ""
}

// FormatJSON writes the output as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// FormatYAML writes the output as YAML to w.
func FormatYAML(out Output, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

// Links returns the links of items in order.
func Links(items []types.ResultItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Link)
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
