// Package cli implements the chartkit command-line interface.
//
// The commands render chart descriptions to images and manage the image
// download cache:
//   - render: draw a bar chart, map, legend or month from a TOML or YAML file
//   - fetch: download an image into the cache
//   - cache: print the cache directory or clear it
//   - completion: generate shell completion scripts
//
// All commands accept --config to read a configuration file and
// --verbose (-v) for debug logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartkit/pkg/buildinfo"
	"github.com/matzehuels/chartkit/pkg/config"
)

// appName is the application name used for display.
const appName = "chartkit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Chartkit composes charts, maps and legends into images",
		Long:         `Chartkit renders bar charts, region maps, legends and month calendars described in TOML or YAML files, and keeps a local cache of downloaded images.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "configuration file (TOML)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or starts from the defaults, and installs the
// result as the process configuration with the CLI's logger.
func (c *CLI) loadConfig() error {
	cfg := config.Default()
	if c.configPath != "" {
		var err error
		if cfg, err = config.Load(c.configPath); err != nil {
			return err
		}
	}
	cfg.Logger = c.Logger
	config.SetDefault(cfg)
	c.cfg = cfg
	c.Logger.Debug("configuration loaded", "file", c.configPath, "cache", cfg.CacheDir)
	return nil
}

// config returns the loaded configuration.
func (c *CLI) config() *config.Config {
	return config.Or(c.cfg)
}
