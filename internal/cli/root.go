package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/dpvalidate/internal/config"
)

// RootOptions holds global flags for all commands and the configuration
// resolved from them.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
	Format     string // "json" | "text"
	LogLevel   string
	LogFormat  string
	Database   string

	// Set by the root PersistentPreRunE.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dpvalidate CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dpvalidate",
		Short: "dpvalidate - static property checks for DP pipelines",
		Long: `Propagate data properties through a differentially private computation
graph without touching real data.

Graphs are CUE descriptors of source, literal and bin nodes. Every node's
output properties (shape, data type, bounds, categories, stability) are
derived from its inputs, and failures are reported per node.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (YAML)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.LogFormat, "log-format", "text", "log format (json|text)")
	flags.StringVar(&opts.Database, "db", "", "path to the SQLite run ledger")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewInferCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewSGDCommand(opts))

	return cmd
}

// resolve layers defaults, the config file, DPVALIDATE_* environment
// variables and flags into opts.Config and builds the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	v := config.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	cfg, err := config.Load(v, o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if !isValidFormat(cfg.Output.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", cfg.Output.Format, ValidFormats))
	}

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log configuration", err)
	}

	o.Config = cfg
	o.Logger = logger
	o.Format = cfg.Output.Format
	o.Verbose = cfg.Output.Verbose
	o.Database = cfg.Store.Path
	return nil
}

// settings returns the resolved configuration, loading defaults when a
// command runs without the root command.
func (o *RootOptions) settings() (*config.Config, error) {
	if o.Config != nil {
		return o.Config, nil
	}
	cfg, err := config.Load(config.New(), "")
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if o.Database != "" {
		cfg.Store.Path = o.Database
	}
	o.Config = cfg
	return cfg, nil
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
