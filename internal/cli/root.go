package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/odataq/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded in PersistentPreRunE. Commands that run without the
	// root (tests) fall back to config.Default().
	Config *config.Config

	// Logger writes diagnostics to stderr. Nil discards them.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Execute runs the CLI with args and returns the process exit code.
// Errors a command has not already reported are written as an error
// envelope: JSON on stdout with --format json, text on stderr otherwise.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{Format: "text"}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	// Anything that is not an ExitError comes from cobra's flag and
	// argument checks.
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitCommandError, "invalid usage", err)
	}
	if !exitErr.Reported {
		f := &OutputFormatter{Format: opts.Format, Writer: stderr, Verbose: opts.Verbose}
		if opts.Format == "json" {
			f.Writer = stdout
		} else {
			f.Format = "text"
		}
		_ = f.Error(ErrorCode(exitErr), exitErr.Error(), nil)
	}
	return exitErr.Code
}

// NewRootCommand creates the root command for the odataq CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "odataq",
		Short: "odataq - OData to document query translator",
		Long: `Translate OData query strings into document-store query specifications.

A request such as "/People?$filter=Age gt 30&$orderby=Name&$top=10" becomes a
filter predicate, a sort, paging bounds and one nested specification per
$expand item.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a CUE config file")

	// Add subcommands
	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewFilterCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// init loads the config file and sets up logging. An explicit --format
// wins over the config file.
func (o *RootOptions) init(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		exitErr := WrapExitError(ExitCommandError, "failed to load config", err)
		exitErr.Reason = CodeConfig
		return exitErr
	}
	o.Config = cfg

	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		o.Format = cfg.Format
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	o.Logger = newLogger(cmd.ErrOrStderr(), o.Verbose)
	return nil
}

// loadConfig returns the loaded config, or the defaults when the command runs
// without the root.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.Config != nil {
		return o.Config, nil
	}
	cfg, err := config.Default()
	if err != nil {
		return nil, err
	}
	o.Config = cfg
	return cfg, nil
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// newLogger returns a text logger at Info, or Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
