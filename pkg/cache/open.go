package cache

import (
	"context"
	"fmt"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendNull  = "null"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string `json:"backend" yaml:"backend" toml:"backend"`
	Dir       string `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir"`
	RedisAddr string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" toml:"redis_addr"`
	MongoURI  string `json:"mongo_uri,omitempty" yaml:"mongo_uri,omitempty" toml:"mongo_uri"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty" toml:"prefix"`
}

// Clearer is implemented by backends that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Open creates the configured backend. The empty backend selects the file
// cache in DefaultDir.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, fmt.Errorf("cache dir: %w", err)
			}
			dir = d
		}
		return NewFileCache(dir)
	case BackendNull:
		return NewNullCache(), nil
	case BackendRedis:
		prefix := opts.Prefix
		if prefix == "" {
			prefix = "tracegantt:"
		}
		return NewRedisCache(ctx, RedisOptions{Addr: opts.RedisAddr, Prefix: prefix})
	case BackendMongo:
		return NewMongoCache(ctx, MongoOptions{URI: opts.MongoURI})
	}
	return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", opts.Backend)
}

// Clear empties c if the backend supports it.
func Clear(ctx context.Context, c Cache) error {
	cl, ok := c.(Clearer)
	if !ok {
		return errs.New(errs.ErrCodeUnsupported, "cache backend %T cannot be cleared", c)
	}
	return cl.Clear(ctx)
}
