// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves the raw content of a result page. Each call is a
// single attempt: target pages are scraped best-effort and are not retried.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/metasearch/internal/apperr"
	"github.com/pdiddy/metasearch/internal/httputil"
	"github.com/pdiddy/metasearch/internal/logger"
	"github.com/pdiddy/metasearch/pkg/types"
)

const (
	defaultMaxBytes = 4 << 20
	defaultTimeout  = 15 * time.Second
	acceptHTML      = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
)

// Fetcher performs one outbound GET per call. It holds no per-call state and
// is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	log       *log.Logger
}

// New creates a Fetcher from the HTTP settings. A nil client gets one with
// cfg.Timeout.
func New(client *http.Client, cfg types.HTTPConfig, maxBytes int64, l *log.Logger) *Fetcher {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		log:       logger.OrDiscard(l),
	}
}

// Fetch returns the body of rawURL as text. Any failure (bad URL, transport,
// non-2xx status, timeout) is a KindFetch error with the cause attached.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperr.Wrap(apperr.KindFetch, "fetch", "unsupported URL", err)
	}

	req, err := httputil.NewGetRequest(ctx, u.String(), f.userAgent)
	if err != nil {
		return "", apperr.Wrap(apperr.KindFetch, "fetch", "building request", err)
	}
	req.Header.Set("Accept", acceptHTML)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("fetch failed", "url", u.Redacted(), "err", err)
		return "", apperr.Wrap(apperr.KindFetch, "fetch", "request failed", err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		f.log.Debug("fetch rejected", "url", u.Redacted(), "status", resp.StatusCode)
		return "", apperr.Wrap(apperr.KindFetch, "fetch", fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	body, err := httputil.ReadLimited(resp.Body, f.maxBytes)
	if err != nil {
		return "", apperr.Wrap(apperr.KindFetch, "fetch", "reading body", err)
	}
	f.log.Debug("fetched", "url", u.Redacted(), "bytes", len(body), "took", time.Since(start))
	return string(body), nil
}
