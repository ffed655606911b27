// Package source fetches span trees.
//
// A [Source] returns the root span of one trace. Three implementations are
// provided:
//
//   - [File] reads a span-tree JSON document from disk
//   - [OTLP] reads an OTLP/JSON export and assembles the tree from parent IDs
//   - [Search] asks a trace search service over HTTP
//
// [Search] retries transient failures and can cache responses in any
// [cache.Cache]. Fetched trees are cached by the pipeline runner.
package source
