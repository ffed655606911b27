// Package config loads tracegantt configuration files.
//
// A configuration file is TOML (.toml) or YAML (.yaml, .yml):
//
//	[render]
//	width = 1110
//	theme = "dark"
//
//	[source]
//	endpoint = "https://traces.example.com"
//	timeout = "15s"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//
//	[telemetry]
//	endpoint = "localhost:4318"
//	insecure = true
//
// Values not set in the file keep their defaults. Command-line flags take
// precedence over both.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tracegantt/pkg/cache"
	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/observability"
	"github.com/matzehuels/tracegantt/pkg/render"
	"github.com/matzehuels/tracegantt/pkg/render/styles"
	"github.com/matzehuels/tracegantt/pkg/source"
	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// DefaultAddr is the default listen address of the HTTP server.
const DefaultAddr = ":8080"

// Config is the complete configuration.
type Config struct {
	Render    Render                         `toml:"render" yaml:"render"`
	Source    Source                         `toml:"source" yaml:"source"`
	Cache     cache.Options                  `toml:"cache" yaml:"cache"`
	Server    Server                         `toml:"server" yaml:"server"`
	Telemetry observability.TelemetryOptions `toml:"telemetry" yaml:"telemetry"`
}

// Render holds chart geometry and theme.
type Render struct {
	Width       float64 `toml:"width" yaml:"width"`
	TickCount   int     `toml:"tick_count" yaml:"tick_count"`
	Theme       string  `toml:"theme" yaml:"theme"`
	LabelGutter float64 `toml:"label_gutter" yaml:"label_gutter"`
	RightMargin float64 `toml:"right_margin" yaml:"right_margin"`
}

// Source configures the trace search service.
type Source struct {
	Endpoint   string        `toml:"endpoint" yaml:"endpoint"`
	StartEpoch string        `toml:"start_epoch" yaml:"start_epoch"`
	EndEpoch   string        `toml:"end_epoch" yaml:"end_epoch"`
	Timeout    time.Duration `toml:"timeout" yaml:"timeout"`
}

// Server configures the HTTP server.
type Server struct {
	Addr string `toml:"addr" yaml:"addr"`
	// SearchPage is the href of the "back to search" link.
	SearchPage string `toml:"search_page" yaml:"search_page"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render: Render{
			Width:       timeline.DefaultWidth,
			TickCount:   render.DefaultTickCount,
			Theme:       styles.ThemeLight,
			LabelGutter: render.DefaultLabelGutter,
			RightMargin: render.DefaultRightMargin,
		},
		Source: Source{
			StartEpoch: source.DefaultStartEpoch,
			EndEpoch:   source.DefaultEndEpoch,
			Timeout:    10 * time.Second,
		},
		Cache: cache.Options{Backend: cache.BackendFile},
		Server: Server{
			Addr:       DefaultAddr,
			SearchPage: "search-traces.html",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/tracegantt/config.toml or its
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tracegantt", "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path loads
// DefaultPath if it exists and the defaults otherwise.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if os.IsNotExist(err) {
		return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a configuration document over the defaults. ext selects the
// format: ".toml", ".yaml" or ".yml".
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode toml config")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode yaml config")
		}
	default:
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	if c.Render.Width < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "render.width must not be negative")
	}
	if c.Render.TickCount < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "render.tick_count must not be negative")
	}
	if _, err := styles.ByName(c.Render.Theme); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendNull, cache.BackendRedis, cache.BackendMongo:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Source.Timeout < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "source.timeout must not be negative")
	}
	if r := c.Telemetry.SampleRatio; r < 0 || r > 1 {
		return errs.New(errs.ErrCodeInvalidConfig, "telemetry.sample_ratio must be within [0, 1]")
	}
	return nil
}
