package cache

// ScopedKeyer wraps a Keyer with a prefix for tenant isolation.
// Servers sharing one Redis or MongoDB cache across environments give each
// its own prefix.
//
// Example usage:
//
//	// Keys of the staging search backend
//	staging := NewScopedKeyer(NewDefaultKeyer(), "env:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// TraceKey generates a prefixed key for fetched traces.
func (k *ScopedKeyer) TraceKey(source, traceID string) string {
	return k.prefix + k.inner.TraceKey(source, traceID)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(traceHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(traceHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
