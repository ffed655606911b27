package errors

import (
	"strings"
	"testing"
)

func TestValidateTraceID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"otlp hex", "4bf92f3577b34da6a3ce929d0e0e4736", false},
		{"zipkin hex", "463ac35c9f6413ad", false},
		{"dashed", "trace-123_a", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"query injection", "abc&trace_id=def", true},
		{"space", "abc def", true},
		{"leading dash", "-abc", true},
		{"newline", "abc\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTraceID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTraceID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTraceID) {
				t.Errorf("ValidateTraceID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidTraceID)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"http://localhost:5122", false},
		{"https://siglens.example.com", false},
		{"", true},
		{"ftp://example.com", true},
		{"localhost:5122", true},
	}

	for _, tt := range tests {
		if err := ValidateURL(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
