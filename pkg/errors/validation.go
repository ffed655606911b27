package errors

import (
	"regexp"
	"strings"
)

// traceIDRegex accepts hex trace IDs (W3C / OTLP use 32 chars, Zipkin 16)
// as well as the dashed and alphanumeric IDs some backends emit.
var traceIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// ValidateTraceID validates a trace ID before it is interpolated into a
// search query or a cache key.
func ValidateTraceID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTraceID, "trace ID cannot be empty")
	}
	if !traceIDRegex.MatchString(id) {
		return New(ErrCodeInvalidTraceID, "invalid trace ID: %q", id)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
