package source

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/tracegantt/pkg/buildinfo"
	"github.com/matzehuels/tracegantt/pkg/cache"
	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/httputil"
)

const httpTimeout = 10 * time.Second

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// Client provides the HTTP plumbing shared by remote sources: default
// headers, retries and response caching.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client. A nil backend disables caching.
func NewClient(backend cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   backend,
		ttl:     ttl,
		headers: headers,
	}
}

// Cached returns the raw value stored under key, or runs fetch with retries
// and stores its result. If refresh is true the cache is bypassed.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			return data, nil
		}
	}
	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, key, data, c.ttl)
	return data, nil
}

// PostJSON sends body as JSON and returns the response body.
func (c *Client) PostJSON(ctx context.Context, url string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errs.Wrap(errs.ErrCodeTimeout, err, "POST %s", url)
		}
		return nil, httputil.Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "POST %s", url))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, url); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "read response of %s", url))
	}
	return data, nil
}

func checkStatus(code int, url string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodeTraceNotFound, "%s: status %d", url, code)
	case httputil.RetryableStatus(code):
		return httputil.Retryable(errs.New(errs.ErrCodeNetwork, "%s: status %d", url, code))
	default:
		return errs.New(errs.ErrCodeNetwork, "%s: status %d", url, code)
	}
}

