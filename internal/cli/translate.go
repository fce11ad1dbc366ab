package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/odataq"
	"github.com/roach88/odataq/internal/ast"
	"github.com/roach88/odataq/internal/doc"
	"github.com/roach88/odataq/internal/store"
)

// TranslateOptions holds flags for the translate and filter commands.
type TranslateOptions struct {
	*RootOptions
	Database string // SQLite cache; overrides the config file
	Inspect  bool   // print structural warnings for the parsed tree
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <query>",
		Short: "Translate a full OData request",
		Long: `Translate an OData request (optional entity set path plus system query
options) into a query specification.

Exit codes:
  0 - Translation succeeded
  1 - Parse error, unsupported method or query too complex
  2 - Command error (bad config, database not accessible, etc.)

Examples:
  odataq translate "/People?$filter=Age gt 30&$orderby=Name&$top=10"
  odataq translate "People?$expand=Trips($select=Name)" --format json
  odataq translate "People?$filter=Name eq 'Ann'" --db ./odataq.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, store.ModeQuery, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "cache translations in this SQLite database")
	cmd.Flags().BoolVar(&opts.Inspect, "inspect", false, "print structural warnings for the parsed tree")

	return cmd
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter <expr>",
		Short: "Translate a bare $filter expression",
		Long: `Translate a $filter expression into a filter predicate.

Examples:
  odataq filter "Age gt 30 and contains(Name,'an')"
  odataq filter "not (Price le 10)" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, store.ModeFilter, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "cache translations in this SQLite database")
	cmd.Flags().BoolVar(&opts.Inspect, "inspect", false, "print structural warnings for the parsed tree")

	return cmd
}

func runTranslate(opts *TranslateOptions, mode, input string, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	f := opts.formatter(cmd)
	logger := opts.logger()

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database
	}
	tr := &translator{maxDepth: cfg.MaxDepth, logger: logger}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			exitErr := WrapExitError(ExitCommandError, "failed to open database", err)
			exitErr.Reason = CodeStore
			return exitErr
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		tr.store = st
	}

	if opts.Inspect {
		// Parse errors are reported by the translation below.
		if node, err := tr.parse(mode, input); err == nil {
			report := ast.Inspect(node)
			for _, w := range report.Warnings {
				fmt.Fprintf(f.GetErrWriter(), "warning: %s\n", w)
			}
			f.VerboseLog("inspected %d nodes, %d warnings", report.Nodes, len(report.Warnings))
		}
	}

	out, cached, err := tr.run(cmd.Context(), mode, input)
	if err != nil {
		return translationError(err)
	}
	if cached {
		f.VerboseLog("cache hit: %s", input)
	}
	return f.Success(out)
}

// translationError maps a failed translation to an ExitError.
// Store failures are command errors; everything else means the input
// could not be translated.
func translationError(err error) *ExitError {
	var storeErr *cacheError
	if errors.As(err, &storeErr) {
		exitErr := WrapExitError(ExitCommandError, "translation cache failed", storeErr.err)
		exitErr.Reason = CodeStore
		return exitErr
	}
	exitErr := WrapExitError(ExitFailure, "translation failed", err)
	exitErr.Reason = ErrorCode(err)
	return exitErr
}

// translator runs translations for the CLI and the HTTP server, consulting
// the store when one is open.
type translator struct {
	maxDepth int
	logger   *slog.Logger
	store    *store.Store
}

func (t *translator) options() []odataq.Option {
	return []odataq.Option{odataq.WithMaxDepth(t.maxDepth), odataq.WithLogger(t.logger)}
}

func (t *translator) parse(mode, input string) (*ast.Node, error) {
	if mode == store.ModeFilter {
		return odataq.ParseFilter(input, t.options()...)
	}
	return odataq.ParseQuery(input, t.options()...)
}

// translate returns the output document for one request.
func (t *translator) translate(mode, input string) (doc.Value, error) {
	if mode == store.ModeFilter {
		filter, err := odataq.TranslateFilter(input, t.options()...)
		if err != nil {
			return nil, err
		}
		return filter, nil
	}
	res, err := odataq.TranslateQuery(input, t.options()...)
	if err != nil {
		return nil, err
	}
	return res.Document(), nil
}

// run translates input and returns its JSON. cached is true when the
// output came from the store.
func (t *translator) run(ctx context.Context, mode, input string) (json.RawMessage, bool, error) {
	logger := t.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if t.store != nil {
		e, ok, err := t.store.Get(ctx, mode, input)
		if err != nil {
			return nil, false, &cacheError{err: err}
		}
		if ok {
			logger.Debug("translation cache hit", "mode", mode, "id", e.ID)
			return json.RawMessage(e.Output), true, nil
		}
	}

	v, err := t.translate(mode, input)
	if err != nil {
		return nil, false, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("marshal translation: %w", err)
	}

	if t.store != nil {
		e, inserted, err := t.store.Put(ctx, store.Entry{Mode: mode, Input: input, Output: string(data)})
		if err != nil {
			return nil, false, &cacheError{err: err}
		}
		logger.Debug("translation cached", "mode", mode, "id", e.ID, "seq", e.Seq, "inserted", inserted)
	}
	return json.RawMessage(data), false, nil
}

// cacheError marks a store failure during translation.
type cacheError struct {
	err error
}

func (e *cacheError) Error() string { return "translation cache: " + e.err.Error() }

func (e *cacheError) Unwrap() error { return e.err }
