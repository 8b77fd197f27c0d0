// Package cli implements the syaroho command line.
package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/okian/syaroho/internal/config"
	"github.com/okian/syaroho/pkg/logger"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatYAML} //nolint:gochecknoglobals // read-only

// RootOptions holds global flags for all commands and the configuration
// they resolve to.
type RootOptions struct {
	ConfigPath string
	Format     string

	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "syaroho",
		Short: "Daily rating engine for the しゃろほー timing competition",
		Long: `Rates the daily midnight timing competition.

Each day the posts closest to local midnight are ranked, converted into a
performance and folded into every participant's rating. Days must be rated
in order; backfill does that for a range of archived days.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json|yaml)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewBackfillCommand(opts))
	cmd.AddCommand(NewPreviewCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// load resolves the configuration and initialises logging on stderr.
func (o *RootOptions) load(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if o.ConfigPath == "" {
		o.ConfigPath = os.Getenv(config.EnvConfigPath)
	}
	cfg, err := config.LoadFile(ctx, o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize logging", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
	}
	o.Config = cfg
	return nil
}

func (o *RootOptions) printer(cmd *cobra.Command) *printer {
	return &printer{format: o.Format, w: cmd.OutOrStdout()}
}
