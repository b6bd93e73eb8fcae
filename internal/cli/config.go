package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/config"
)

// configCommand creates the config command for inspecting the config file.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the config file",
		Long: fmt.Sprintf(`Inspect and create the config file.

The file is looked up in $%s, then in the user config directory.
Flags given on the command line override its values.`, config.EnvDir),
	}

	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())

	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := config.FilePath()
			if p == "" {
				return fmt.Errorf("no config directory available")
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			source := cfg.Path
			if source == "" {
				source = "(defaults)"
			}
			wall := cfg.WallOptions()
			read, write := cfg.ServerTimeouts()

			printKeyValue("file", source)
			printKeyValue("column width", fmt.Sprintf("%gpx", wall.Width))
			printKeyValue("padding", fmt.Sprintf("%gpx", wall.Padding.Resolve(0)))
			throttle := wall.Throttle.String()
			if wall.Throttle < 0 {
				throttle = "off"
			}
			printKeyValue("throttle", throttle)
			printKeyValue("ssr columns", fmt.Sprint(cfg.SSR.Columns))
			printKeyValue("viewport", fmt.Sprintf("%gx%g", cfg.Viewport.Width, cfg.Viewport.Height))
			printKeyValue("cache", cfg.Cache.Backend)
			printKeyValue("server", cfg.Server.Addr)
			printKeyValue("timeouts", fmt.Sprintf("read %s, write %s", read, write))
			return nil
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := config.FilePath()
			if p == "" {
				return fmt.Errorf("no config directory available")
			}
			if _, err := os.Stat(p); err == nil && !force {
				printWarning("%s already exists (use --force to overwrite)", p)
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := os.WriteFile(p, config.DefaultTOML(), 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			printSuccess("Config written")
			printFile(p)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
