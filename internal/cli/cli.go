// Package cli implements the mdaograph command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mdaograph/internal/config"
	"github.com/matzehuels/mdaograph/pkg/buildinfo"
	"github.com/matzehuels/mdaograph/pkg/cache"
	"github.com/matzehuels/mdaograph/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	// out receives documents and reports written to stdout.
	out    io.Writer
	logOut io.Writer

	configPath string
	verbose    bool
	logFormat  string
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	logger, _ := newLogger(w, level, logFormatText)
	return &CLI{
		Logger: logger,
		Config: config.Default(),
		out:    os.Stdout,
		logOut: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mdaograph",
		Short: "mdaograph turns problem graphs into MDAO workflows",
		Long: `mdaograph assigns problem roles to a fundamental problem graph, synthesizes
the data graph of an MDAO architecture and schedules its process graph.

Problems are read from HCL problem definitions (.hcl) or JSON graph documents.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", logFormatText, "log format: text, json")

	root.AddCommand(c.rolesCommand())
	root.AddCommand(c.synthesizeCommand())
	root.AddCommand(c.scheduleCommand())
	root.AddCommand(c.processCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and rebuilds the logger from the flags.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	level := LogInfo
	if c.verbose {
		level = LogDebug
	}
	logger, err := newLogger(c.logOut, level, c.logFormat)
	if err != nil {
		return err
	}
	c.Logger = logger

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := c.openCache(noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cc, nil, c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

func (c *CLI) openCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return c.Config.Cache.Open()
}
