// Package cache stores fetched traces, computed layouts and rendered
// artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: shared cache with a TTL index on expires_at
//   - [NullCache]: disables caching
//
// # Keys
//
// Keys are produced by a [Keyer]. Layout and artifact keys hash the input
// content together with every option that changes the output, so a key
// identifies a result exactly and entries never need invalidation; they only
// expire. Use [NewScopedKeyer] to give several tenants separate namespaces.
package cache

import (
	"context"
	"time"
)

// Entry lifetimes.
const (
	// TTLTrace bounds how long a fetched trace is reused. Traces are still
	// being written for a while after their root span ends.
	TTLTrace = 10 * time.Minute
	// TTLHTTP applies to raw responses of the trace search endpoint.
	TTLHTTP = 10 * time.Minute
	// TTLLayout and TTLArtifact are content addressed and can live long.
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the value for key and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases connections held by the backend.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a raw HTTP response.
	HTTPKey(namespace, key string) string
	// TraceKey keys a trace fetched from a source.
	TraceKey(source, traceID string) string
	// LayoutKey keys the layout of the trace with the given content hash.
	LayoutKey(traceHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered output of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists the options that change a computed layout.
type LayoutKeyOpts struct {
	MaxDepth int `json:"max_depth"`
	MaxSpans int `json:"max_spans"`
}

// ArtifactKeyOpts lists the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Theme       string  `json:"theme"`
	Width       float64 `json:"width"`
	TickCount   int     `json:"tick_count"`
	LabelGutter float64 `json:"label_gutter"`
	RightMargin float64 `json:"right_margin"`
	Tooltips    bool    `json:"tooltips"`
	Detailed    bool    `json:"detailed,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// TraceKey returns "trace:<source>:<traceID>".
func (DefaultKeyer) TraceKey(source, traceID string) string {
	return "trace:" + source + ":" + traceID
}

// LayoutKey hashes traceHash with opts.
func (DefaultKeyer) LayoutKey(traceHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", traceHash, opts)
}

// ArtifactKey hashes layoutHash with opts.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
