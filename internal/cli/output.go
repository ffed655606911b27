package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/tracegantt/pkg/pipeline"
)

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path. "-" selects w.
func openOutput(path string, w io.Writer) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{w}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

// basePath derives the base output path. An empty output strips the input's
// extension (and a trailing ".layout" left by the layout command); an output
// ending in a format extension loses it.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactWriteParams holds the parameters of writeArtifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	stdout    io.Writer
}

// writeArtifacts writes rendered outputs to disk and returns the written
// paths. A single format goes to output verbatim when set; several formats go
// to <base>.<format>.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	formats := p.formats
	if len(formats) == 0 {
		for f := range p.artifacts {
			formats = append(formats, f)
		}
		sort.Strings(formats)
	}

	var written []string
	for _, format := range formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := basePath(p.output, p.input) + "." + format
		if len(formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := writeFile(path, data, p.stdout); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, data []byte, stdout io.Writer) error {
	out, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}


