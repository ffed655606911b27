package source

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/tracegantt/pkg/cache"
	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

// SearchPath is the trace search endpoint, relative to the base URL.
const SearchPath = "/api/traces/ganttchart"

// Default search window, in the relative syntax of the search service.
const (
	DefaultStartEpoch = "now-3h"
	DefaultEndEpoch   = "now"
)

// SearchRequest is the body posted to the search endpoint.
type SearchRequest struct {
	SearchText string `json:"searchText"`
	StartEpoch string `json:"startEpoch"`
	EndEpoch   string `json:"endEpoch"`
}

// Search fetches span trees from a trace search service. The service
// answers a POST to SearchPath with the root span of the matching trace.
//
// Search is safe for concurrent use.
type Search struct {
	*Client
	baseURL string
	keyer   cache.Keyer
	start   string
	end     string
	refresh bool
}

// SearchOption configures a Search.
type SearchOption func(*searchConfig)

type searchConfig struct {
	cache   cache.Cache
	ttl     time.Duration
	keyer   cache.Keyer
	headers map[string]string
	http    *http.Client
	start   string
	end     string
	refresh bool
}

// WithCache caches responses in backend for ttl.
func WithCache(backend cache.Cache, ttl time.Duration) SearchOption {
	return func(c *searchConfig) { c.cache, c.ttl = backend, ttl }
}

// WithKeyer sets the cache keyer (default cache.NewDefaultKeyer).
func WithKeyer(k cache.Keyer) SearchOption { return func(c *searchConfig) { c.keyer = k } }

// WithHeaders adds headers to every request, e.g. Authorization.
func WithHeaders(h map[string]string) SearchOption { return func(c *searchConfig) { c.headers = h } }

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) SearchOption { return func(c *searchConfig) { c.http = h } }

// WithWindow sets the search window (default now-3h to now).
func WithWindow(start, end string) SearchOption {
	return func(c *searchConfig) { c.start, c.end = start, end }
}

// WithRefresh bypasses cached responses.
func WithRefresh(refresh bool) SearchOption { return func(c *searchConfig) { c.refresh = refresh } }

// NewSearch creates a Search for the service at baseURL.
func NewSearch(baseURL string, opts ...SearchOption) (*Search, error) {
	if err := errs.ValidateURL(baseURL); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "search base URL %q", baseURL)
	}
	cfg := searchConfig{
		ttl:   cache.TTLHTTP,
		keyer: cache.NewDefaultKeyer(),
		start: DefaultStartEpoch,
		end:   DefaultEndEpoch,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	client := NewClient(cfg.cache, cfg.ttl, cfg.headers)
	if cfg.http != nil {
		client.http = cfg.http
	}
	return &Search{
		Client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		keyer:   cfg.keyer,
		start:   cfg.start,
		end:     cfg.end,
		refresh: cfg.refresh,
	}, nil
}

func (s *Search) Name() string { return "search" }

// Fetch posts a trace_id query and decodes the returned span tree.
func (s *Search) Fetch(ctx context.Context, traceID string) (*trace.Span, error) {
	if err := errs.ValidateTraceID(traceID); err != nil {
		return nil, err
	}
	req := SearchRequest{
		SearchText: "trace_id=" + traceID,
		StartEpoch: s.start,
		EndEpoch:   s.end,
	}
	key := s.keyer.HTTPKey("search", req.SearchText+"|"+s.start+"|"+s.end)
	data, err := s.Cached(ctx, key, s.refresh, func() ([]byte, error) {
		return s.PostJSON(ctx, s.baseURL+SearchPath, req)
	})
	if err != nil {
		return nil, err
	}
	root, err := trace.Parse(data)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errs.New(errs.ErrCodeTraceNotFound, "trace %s not found", traceID)
	}
	return root, nil
}

var _ Source = (*Search)(nil)
