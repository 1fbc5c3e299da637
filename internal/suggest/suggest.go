// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package suggest looks up word completions for a query prefix.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/metasearch/internal/apperr"
	"github.com/pdiddy/metasearch/internal/httputil"
	"github.com/pdiddy/metasearch/internal/logger"
	"github.com/pdiddy/metasearch/pkg/types"
)

// DefaultEndpoint is the Datamuse suggestion endpoint.
const DefaultEndpoint = "https://api.datamuse.com/sug"

const suggestRetries = 1

// Suggester returns ordered completions for a prefix.
type Suggester interface {
	Suggest(ctx context.Context, prefix string) ([]string, error)
}

// Client queries a word-suggestion endpoint that answers
// GET ?s=<prefix> with a JSON array of {"word": ...} objects.
type Client struct {
	client    *http.Client
	endpoint  string
	userAgent string
	max       int
	log       *log.Logger
}

// NewClient creates a suggestion client. A nil client gets one with
// cfg.Timeout.
func NewClient(client *http.Client, cfg types.SuggestConfig, l *log.Logger) *Client {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		client:    client,
		endpoint:  endpoint,
		userAgent: cfg.UserAgent,
		max:       cfg.Max,
		log:       logger.OrDiscard(l),
	}
}

// Suggest returns completions in the provider's relevance order. A blank
// prefix yields an empty result without a network call; an empty response is
// an empty result, not an error. Transport and HTTP failures are KindNetwork.
func (c *Client) Suggest(ctx context.Context, prefix string) ([]string, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, nil
	}

	params := url.Values{"s": {prefix}}
	if c.max > 0 {
		params.Set("max", strconv.Itoa(c.max))
	}
	reqURL := c.endpoint + "?" + params.Encode()

	req, err := httputil.NewGetRequest(ctx, reqURL, c.userAgent)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, "suggest", "building request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.client, req, suggestRetries, c.log)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, "suggest", "request failed", err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		body, _ := httputil.ReadLimited(resp.Body, 2048)
		c.log.Warn("suggestion endpoint error", "status", resp.StatusCode, "body", string(body))
		return nil, apperr.Wrap(apperr.KindNetwork, "suggest", fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	var words []wordEntry
	if err := json.NewDecoder(resp.Body).Decode(&words); err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, "suggest", "parsing response", err)
	}

	out := make([]string, 0, len(words))
	for _, w := range words {
		if w.Word != "" {
			out = append(out, w.Word)
		}
	}
	c.log.Debug("suggestions", "prefix", prefix, "count", len(out))
	return out, nil
}

type wordEntry struct {
	Word  string `json:"word"`
	Score int    `json:"score"`
}
