package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/odataq/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List cached translations",
		Long: `List translations cached by translate, filter and serve, newest first.

Examples:
  odataq history --db ./odataq.db
  odataq history --db ./odataq.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum entries to list (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database
	}
	if dbPath == "" {
		return NewExitError(ExitCommandError, "no database: pass --db or set database in the config file")
	}

	st, err := store.Open(dbPath)
	if err != nil {
		exitErr := WrapExitError(ExitCommandError, "failed to open database", err)
		exitErr.Reason = CodeStore
		return exitErr
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing database", "error", closeErr)
		}
	}()

	entries, err := st.List(cmd.Context(), opts.Limit)
	if err != nil {
		exitErr := WrapExitError(ExitCommandError, "failed to list translations", err)
		exitErr.Reason = CodeStore
		return exitErr
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No translations cached.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%4d  %-6s  %s  %s\n", e.Seq, e.Mode, shortHash(e.OutputHash), e.Input)
	}
	return nil
}

// shortHash trims a hex hash for display.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
