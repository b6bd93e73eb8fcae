package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout and artifact",
		Long: `Remove every cached layout and artifact.

Only the file backend can be cleared from here. Redis and MongoDB entries
expire on their own TTL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			if cfg.Cache.Backend != cache.BackendFile {
				printWarning("Cache backend %q cannot be cleared locally", cfg.Cache.Backend)
				return nil
			}
			dir, err := cacheDir(cfg.Cache.Dir)
			if err != nil {
				return err
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			defer fc.Close()
			if err := fc.Clear(); err != nil {
				return err
			}
			printSuccess("Cache cleared")
			printDetail("%s", dir)
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured cache backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			printKeyValue("backend", cfg.Cache.Backend)
			printKeyValue("ttl", cfg.CacheTTL().String())
			switch cfg.Cache.Backend {
			case cache.BackendFile:
				dir, err := cacheDir(cfg.Cache.Dir)
				if err != nil {
					return err
				}
				printKeyValue("dir", dir)
			case cache.BackendRedis:
				printKeyValue("addr", cfg.Cache.RedisAddr)
			case cache.BackendMongo:
				printKeyValue("uri", cfg.Cache.MongoURI)
				printKeyValue("database", cfg.Cache.MongoDB)
			}
			return nil
		},
	}
}

// cacheDir returns dir, or the per-user cache directory when it is empty.
func cacheDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return cache.DefaultDir()
}

