package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/tracegantt/pkg/cache"
	errs "github.com/matzehuels/tracegantt/pkg/errors"
)

func TestNewSearchValidation(t *testing.T) {
	for _, base := range []string{"", "ftp://host", "localhost:8080"} {
		if _, err := NewSearch(base); !errs.Is(err, errs.ErrCodeInvalidConfig) {
			t.Errorf("NewSearch(%q) error = %v", base, err)
		}
	}
}

func TestSearchFetch(t *testing.T) {
	var got SearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != SearchPath {
			t.Errorf("path = %s, want %s", r.URL.Path, SearchPath)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Error("Authorization header missing")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(treeJSON))
	}))
	defer server.Close()

	s, err := NewSearch(server.URL+"/", WithHTTPClient(server.Client()), WithHeaders(map[string]string{"Authorization": "Bearer token"}))
	if err != nil {
		t.Fatalf("NewSearch() error: %v", err)
	}
	root, err := s.Fetch(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if root.SpanID != "root" || len(root.Children) != 1 {
		t.Errorf("root = %+v", root)
	}
	want := SearchRequest{SearchText: "trace_id=abc", StartEpoch: "now-3h", EndEpoch: "now"}
	if got != want {
		t.Errorf("request = %+v, want %+v", got, want)
	}
}

func TestSearchWindow(t *testing.T) {
	var got SearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(treeJSON))
	}))
	defer server.Close()

	s, _ := NewSearch(server.URL, WithWindow("now-24h", "now-1h"))
	if _, err := s.Fetch(context.Background(), "abc"); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got.StartEpoch != "now-24h" || got.EndEpoch != "now-1h" {
		t.Errorf("window = %s..%s", got.StartEpoch, got.EndEpoch)
	}
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		traceID string
		want    errs.Code
	}{
		{"not found", http.StatusNotFound, "", "abc", errs.ErrCodeTraceNotFound},
		{"bad request", http.StatusBadRequest, "", "abc", errs.ErrCodeNetwork},
		{"null body", http.StatusOK, "null", "abc", errs.ErrCodeTraceNotFound},
		{"bad body", http.StatusOK, "<html>", "abc", errs.ErrCodeInvalidTrace},
		{"bad trace id", http.StatusOK, treeJSON, "a b", errs.ErrCodeInvalidTraceID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			s, _ := NewSearch(server.URL)
			_, err := s.Fetch(context.Background(), tt.traceID)
			if !errs.Is(err, tt.want) {
				t.Errorf("Fetch() error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestSearchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(treeJSON))
	}))
	defer server.Close()

	s, _ := NewSearch(server.URL)
	if _, err := s.Fetch(context.Background(), "abc"); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestSearchCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(treeJSON))
	}))
	defer server.Close()

	fc, _ := cache.NewFileCache(t.TempDir())
	s, _ := NewSearch(server.URL, WithCache(fc, time.Hour))
	for range 2 {
		if _, err := s.Fetch(context.Background(), "abc"); err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}

	fresh, _ := NewSearch(server.URL, WithCache(fc, time.Hour), WithRefresh(true))
	if _, err := fresh.Fetch(context.Background(), "abc"); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("refresh should bypass the cache")
	}
}

func TestSearchKeyer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(treeJSON))
	}))
	defer server.Close()

	fc, _ := cache.NewFileCache(t.TempDir())
	keyer := cache.NewScopedKeyer(nil, "env:staging:")
	s, _ := NewSearch(server.URL, WithCache(fc, time.Hour), WithKeyer(keyer), WithWindow("now-1h", "now"))
	if _, err := s.Fetch(context.Background(), "abc"); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	key := keyer.HTTPKey("search", "trace_id=abc|now-1h|now")
	if _, ok, _ := fc.Get(context.Background(), key); !ok {
		t.Errorf("response not cached under scoped key %q", key)
	}
}
