// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rule extracts a single value from raw page content using an
// ordered list of fallback rules. Extraction is pure: no I/O, and the same
// content and rules always produce the same result.
package rule

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"go.yaml.in/yaml/v3"
)

// Rule is one lookup candidate. Exactly one of Selector or Pattern is set.
type Rule struct {
	// Name labels the rule in logs and in the price cache.
	Name string `json:"name" yaml:"name"`

	// Selector is a CSS selector; the text of the first matching element
	// with non-blank text is the value.
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`

	// Pattern is a regular expression applied to the raw content. The first
	// capture group is the value, or the whole match when there is none.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// Validate checks that the rule has exactly one well-formed lookup.
func (r Rule) Validate() error {
	hasSel := strings.TrimSpace(r.Selector) != ""
	hasPat := r.Pattern != ""
	switch {
	case hasSel && hasPat:
		return fmt.Errorf("rule %q: set either selector or pattern, not both", r.Name)
	case !hasSel && !hasPat:
		return fmt.Errorf("rule %q: selector or pattern required", r.Name)
	case hasSel:
		if _, err := cascadia.Compile(r.Selector); err != nil {
			return fmt.Errorf("rule %q: invalid selector: %w", r.Name, err)
		}
	default:
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("rule %q: invalid pattern: %w", r.Name, err)
		}
	}
	return nil
}

func (r Rule) label() string {
	if r.Name != "" {
		return r.Name
	}
	if r.Selector != "" {
		return r.Selector
	}
	return r.Pattern
}

// Match is a successful extraction.
type Match struct {
	Value string
	Rule  string
}

// DefaultPriceRules returns the built-in price lookups: the primary price
// element, then the deal price element as fallback.
func DefaultPriceRules() []Rule {
	return []Rule{
		{Name: "primary_price", Selector: "#priceblock_ourprice"},
		{Name: "deal_price", Selector: "#priceblock_dealprice"},
	}
}

// Extract applies rules in order and returns the first non-blank value.
// Matched text is trimmed and inner whitespace runs collapse to one space.
// ok is false when no rule produced a value. Malformed rules are skipped.
func Extract(text string, rules []Rule) (m Match, ok bool) {
	var doc *goquery.Document
	for _, r := range rules {
		var v string
		switch {
		case r.Selector != "":
			if doc == nil {
				d, err := goquery.NewDocumentFromReader(strings.NewReader(text))
				if err != nil {
					continue
				}
				doc = d
			}
			v = selectText(doc, r.Selector)
		case r.Pattern != "":
			v = matchPattern(text, r.Pattern)
		}
		if v != "" {
			return Match{Value: v, Rule: r.label()}, true
		}
	}
	return Match{}, false
}

func selectText(doc *goquery.Document, selector string) string {
	if _, err := cascadia.Compile(selector); err != nil {
		return ""
	}
	var out string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = normalize(s.Text())
		return out == ""
	})
	return out
}

func matchPattern(text, pattern string) string {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ""
	}
	sub := re.FindStringSubmatch(text)
	if sub == nil {
		return ""
	}
	if len(sub) > 1 {
		return normalize(sub[1])
	}
	return normalize(sub[0])
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// LoadRules reads a YAML list of rules from path and validates each one.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file %s: %w", path, err)
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("rules file %s: no rules defined", path)
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rules file %s: %w", path, err)
		}
	}
	return rules, nil
}
