package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegantt/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the trace, layout and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries of the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			backend, err := cache.Open(cmd.Context(), cfg.Cache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer backend.Close()

			if err := cache.Clear(cmd.Context(), backend); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			out := c.screen(cmd)
			out.success("Cache cleared")
			if fc, ok := backend.(*cache.FileCache); ok {
				out.detail("Directory: %s", fc.Dir())
			} else {
				out.detail("Backend: %s", backendName(cfg.Cache))
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir := cfg.Cache.Dir
			if dir == "" {
				if dir, err = cache.DefaultDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(c.out(cmd), dir)
			return nil
		},
	}
}

func backendName(o cache.Options) string {
	if o.Backend == "" {
		return cache.BackendFile
	}
	return o.Backend
}
