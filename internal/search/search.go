// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search submits queries to the external search API and normalises
// its response into result items.
package search

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

// DefaultEndpoint is the Google Custom Search JSON API.
const DefaultEndpoint = "https://www.googleapis.com/customsearch/v1"

const maxErrorBody = 4096

// Searcher runs one search request.
type Searcher interface {
	// Validate reports a configuration error without touching the network.
	Validate() error
	Search(ctx context.Context, req Request) (Page, error)
}

// Request holds the search parameters.
type Request struct {
	Query string
	Type  types.SearchType
	// Start is the 1-based index of the first result. Values <= 1 request
	// the first page.
	Start int
}

// Page is one page of results.
type Page struct {
	Items []types.ResultItem `json:"items" yaml:"items"`
	// NextStart is the Start of the following page, or 0 when there is none.
	NextStart int `json:"next_start,omitempty" yaml:"next_start,omitempty"`
	// TotalResults is the provider's estimate, or -1 when not reported.
	TotalResults int64 `json:"total_results" yaml:"total_results"`
}

// HasNext reports whether another page can be requested.
func (p Page) HasNext() bool { return p.NextStart > 0 }

// Client talks to a Custom Search compatible endpoint.
type Client struct {
	client     *http.Client
	endpoint   string
	creds      types.Credentials
	userAgent  string
	maxRetries int
	log        *log.Logger
}

// NewClient creates a search client. A nil client gets one with cfg.Timeout.
func NewClient(client *http.Client, cfg types.SearchConfig, l *log.Logger) *Client {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		client:     client,
		endpoint:   endpoint,
		creds:      cfg.Credentials,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		log:        logger.OrDiscard(l),
	}
}

// Validate fails with a KindConfiguration error when credentials are missing.
func (c *Client) Validate() error {
	if missing := c.creds.Missing(); len(missing) > 0 {
		return apperr.New(apperr.KindConfiguration, "search", "missing "+strings.Join(missing, " and "))
	}
	return nil
}

// Search submits req and returns the page of results. A response without
// items is an empty page, not an error.
func (c *Client) Search(ctx context.Context, req Request) (Page, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return Page{}, apperr.New(apperr.KindValidation, "search", "query required")
	}
	if err := c.Validate(); err != nil {
		return Page{}, err
	}

	params := url.Values{
		"key": {c.creds.APIKey},
		"cx":  {c.creds.EngineID},
		"q":   {q},
	}
	if req.Type == types.SearchImage {
		params.Set("searchType", string(types.SearchImage))
	}
	if req.Start > 1 {
		params.Set("start", strconv.Itoa(req.Start))
	}

	httpReq, err := httputil.NewGetRequest(ctx, c.endpoint+"?"+params.Encode(), c.userAgent)
	if err != nil {
		return Page{}, apperr.Wrap(apperr.KindNetwork, "search", "building request", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.client, httpReq, c.maxRetries, c.log)
	if err != nil {
		c.log.Error("search request failed", "err", err)
		return Page{}, apperr.Wrap(apperr.KindNetwork, "search", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := httputil.ReadLimited(resp.Body, 0)
	if err != nil {
		return Page{}, apperr.Wrap(apperr.KindNetwork, "search", "reading response", err)
	}

	var sr cseResponse
	decodeErr := json.Unmarshal(body, &sr)

	if !httputil.IsSuccess(resp.StatusCode) {
		c.log.Error("search endpoint error", "status", resp.StatusCode, "body", clip(body))
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if decodeErr == nil && sr.Error != nil && sr.Error.Message != "" {
			msg = sr.Error.Message
		}
		return Page{}, apperr.New(apperr.KindSearch, "search", msg)
	}
	if decodeErr != nil {
		c.log.Error("search response unreadable", "err", decodeErr, "body", clip(body))
		return Page{}, apperr.Wrap(apperr.KindSearch, "search", "malformed response", decodeErr)
	}
	if sr.Error != nil {
		c.log.Error("search API error", "code", sr.Error.Code, "message", sr.Error.Message)
		return Page{}, apperr.New(apperr.KindSearch, "search", sr.Error.Message)
	}

	return sr.page(), nil
}

func clip(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}

// Custom Search JSON structures. Every field the provider may omit is a
// pointer or slice so that absence is handled explicitly.
type cseResponse struct {
	Items             []cseItem      `json:"items"`
	Queries           *cseQueries    `json:"queries"`
	SearchInformation *cseSearchInfo `json:"searchInformation"`
	Error             *cseError      `json:"error"`
}

type cseItem struct {
	Title   string    `json:"title"`
	Link    string    `json:"link"`
	Snippet string    `json:"snippet"`
	Image   *cseImage `json:"image"`
}

type cseImage struct {
	ThumbnailLink string `json:"thumbnailLink"`
}

type cseQueries struct {
	NextPage []cseQuery `json:"nextPage"`
}

type cseQuery struct {
	StartIndex int `json:"startIndex"`
}

type cseSearchInfo struct {
	TotalResults string `json:"totalResults"`
}

type cseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (r cseResponse) page() Page {
	p := Page{Items: make([]types.ResultItem, 0, len(r.Items)), TotalResults: -1}
	for _, it := range r.Items {
		item := types.ResultItem{
			Title:   it.Title,
			Link:    it.Link,
			Snippet: it.Snippet,
		}
		if it.Image != nil {
			item.Image = &types.Image{ThumbnailLink: it.Image.ThumbnailLink}
		}
		p.Items = append(p.Items, item)
	}
	if r.Queries != nil && len(r.Queries.NextPage) > 0 {
		p.NextStart = r.Queries.NextPage[0].StartIndex
	}
	if r.SearchInformation != nil {
		if n, err := strconv.ParseInt(r.SearchInformation.TotalResults, 10, 64); err == nil {
			p.TotalResults = n
		}
	}
	return p
}
