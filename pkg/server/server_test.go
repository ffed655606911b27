package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/pipeline"
	"github.com/matzehuels/tracegantt/pkg/timeline"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

const treeJSON = `{
  "trace_id": "abc",
  "span_id": "root", "service_name": "frontend", "operation_name": "GET /",
  "start_time": 0, "end_time": 160,
  "children": [
    {"span_id": "a", "service_name": "cart", "operation_name": "load", "start_time": 110, "end_time": 150},
    {"span_id": "b", "service_name": "db", "operation_name": "query", "start_time": 50, "end_time": 90},
    {"span_id": "c", "service_name": "search", "operation_name": "find", "start_time": 10, "end_time": 40}
  ]
}`

type mapSource map[string]string

func (m mapSource) Name() string { return "map" }

func (m mapSource) Fetch(ctx context.Context, traceID string) (*trace.Span, error) {
	doc, ok := m[traceID]
	if !ok {
		return nil, errs.New(errs.ErrCodeTraceNotFound, "trace %s not found", traceID)
	}
	return trace.Parse([]byte(doc))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	logger.SetLevel(log.FatalLevel)
	s := New(Options{
		Source: mapSource{"abc": treeJSON},
		Logger: logger,
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func noRedirect(req *http.Request, via []*http.Request) error { return http.ErrUseLastResponse }

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)
	const id = "0f8fad5b-d9cb-469f-a165-70867728950e"
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))

	req.Header.Set(RequestIDHeader, "<script>")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, "<script>", resp.Header.Get(RequestIDHeader))
}

func TestRenderTree(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/timeline", "application/json", strings.NewReader(treeJSON))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	var buf strings.Builder
	_, _ = io.Copy(&buf, resp.Body)
	assert.Contains(t, buf.String(), `id="bar-3"`)
}

func TestRenderTreeJSON(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/timeline?format=json&width=800", "application/json", strings.NewReader(treeJSON))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var l timeline.Layout
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&l))
	assert.Equal(t, 4, l.RowCount)
	assert.Equal(t, 800.0, l.Width)
	ids := []string{l.Spans[0].SpanID, l.Spans[1].SpanID, l.Spans[2].SpanID, l.Spans[3].SpanID}
	assert.Equal(t, []string{"root", "c", "b", "a"}, ids)
}

func TestRenderTreeErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   errs.Code
	}{
		{"bad json", "", "{", http.StatusBadRequest, errs.ErrCodeInvalidTrace},
		{"null body", "", "null", http.StatusBadRequest, errs.ErrCodeInvalidTrace},
		{"missing start", "", `{"span_id":"r","service_name":"s","end_time":1}`, http.StatusBadRequest, errs.ErrCodeInvalidTrace},
		{"bad format", "?format=gif", treeJSON, http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"bad theme", "?theme=neon", treeJSON, http.StatusBadRequest, errs.ErrCodeInvalidTheme},
		{"bad width", "?width=abc", treeJSON, http.StatusBadRequest, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/timeline"+tt.query, "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestRenderTrace(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/traces/abc/timeline.dot")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/vnd.graphviz", resp.Header.Get("Content-Type"))

	resp, err = http.Get(ts.URL + "/api/traces/missing/timeline.svg")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/traces/abc/timeline.gif")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNoSource(t *testing.T) {
	logger := log.New(io.Discard)
	logger.SetLevel(log.FatalLevel)
	ts := httptest.NewServer(New(Options{Logger: logger}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/traces/abc/timeline.svg")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestTracePage(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/trace?trace_id=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf strings.Builder
	_, _ = io.Copy(&buf, resp.Body)
	page := buf.String()
	assert.Contains(t, page, `href="search-traces.html"`)
	assert.Contains(t, page, `data-theme="light"`)
	assert.Contains(t, page, `<svg xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, page, `value="dark"`)

	resp2, err := http.Get(ts.URL + "/trace")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestThemeCookie(t *testing.T) {
	ts := newTestServer(t)
	client := &http.Client{CheckRedirect: noRedirect}

	resp, err := client.PostForm(ts.URL+"/theme", url.Values{"theme": {"dark"}, "return_to": {"/trace?trace_id=abc"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/trace?trace_id=abc", resp.Header.Get("Location"))

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == ThemeCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, "dark", cookie.Value)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/trace?trace_id=abc", nil)
	req.AddCookie(cookie)
	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf strings.Builder
	_, _ = io.Copy(&buf, resp.Body)
	assert.Contains(t, buf.String(), `data-theme="dark"`)
}

func TestThemeRejectsUnknown(t *testing.T) {
	ts := newTestServer(t)
	client := &http.Client{CheckRedirect: noRedirect}
	resp, err := client.PostForm(ts.URL+"/theme", url.Values{"theme": {"neon"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestThemeIgnoresForeignReturnTo(t *testing.T) {
	ts := newTestServer(t)
	client := &http.Client{CheckRedirect: noRedirect}
	resp, err := client.PostForm(ts.URL+"/theme", url.Values{"theme": {"light"}, "return_to": {"https://evil.example/"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errs.Code
		want int
	}{
		{errs.ErrCodeInvalidTrace, http.StatusBadRequest},
		{errs.ErrCodeCyclicTrace, http.StatusBadRequest},
		{errs.ErrCodeTraceNotFound, http.StatusNotFound},
		{errs.ErrCodeNetwork, http.StatusBadGateway},
		{errs.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errs.ErrCodeRenderTarget, http.StatusServiceUnavailable},
		{errs.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(errs.New(tt.code, "x")), string(tt.code))
	}
}

func TestRunnerIsShared(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, nil)
	s := New(Options{Runner: runner})
	assert.Same(t, runner, s.runner)
}
