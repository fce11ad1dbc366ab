package cli

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/roach88/odataq/internal/parser"
	"github.com/roach88/odataq/internal/store"
	"github.com/roach88/odataq/internal/translate"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve translations over HTTP",
		Long: `Serve translations over HTTP.

Routes:
  GET /translate/{resource}?<options>   full request; the raw query string holds the OData options
  GET /filter?$filter=<expr>            bare filter expression

Responses use the {status, data | error} envelope. Syntax errors return 400,
unsupported methods and over-nested queries return 422.

Examples:
  odataq serve
  odataq serve --addr :9000 --db ./odataq.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "cache translations in this SQLite database")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := opts.logger()

	addr := opts.Addr
	if addr == "" {
		addr = cfg.Addr
	}
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

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Handler:           newHandler(tr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	logger.Info("serving translations", "addr", ln.Addr().String(), "db", dbPath)
	opts.formatter(cmd).VerboseLog("listening on http://%s", ln.Addr())

	select {
	case err := <-errc:
		return WrapExitError(ExitFailure, "server error", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}

// newHandler routes translation requests.
func newHandler(tr *translator) http.Handler {
	if tr.logger == nil {
		tr.logger = slog.New(slog.DiscardHandler)
	}
	h := &handler{tr: tr}
	r := mux.NewRouter()
	r.HandleFunc("/translate/{resource:.+}", h.translate).Methods(http.MethodGet)
	r.HandleFunc("/filter", h.filter).Methods(http.MethodGet)
	return r
}

type handler struct {
	tr *translator
}

// translate handles GET /translate/{resource}. The resource path and the
// raw query string are passed to the parser unchanged.
func (h *handler) translate(w http.ResponseWriter, r *http.Request) {
	input := "/" + mux.Vars(r)["resource"]
	if r.URL.RawQuery != "" {
		input += "?" + r.URL.RawQuery
	}
	h.respond(w, r, store.ModeQuery, input)
}

// filter handles GET /filter?$filter=<expr>.
func (h *handler) filter(w http.ResponseWriter, r *http.Request) {
	expr, ok := rawParam(r.URL.RawQuery, "$filter")
	if !ok {
		writeJSON(w, http.StatusBadRequest, CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: CodeGeneric, Message: "missing $filter parameter"},
		})
		return
	}
	h.respond(w, r, store.ModeFilter, expr)
}

func (h *handler) respond(w http.ResponseWriter, r *http.Request, mode, input string) {
	out, cached, err := h.tr.run(r.Context(), mode, input)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.tr.logger.Error("translation failed", "mode", mode, "input", input, "error", err)
		}
		writeJSON(w, status, CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: translationError(err).Reason, Message: err.Error()},
		})
		return
	}
	h.tr.logger.Debug("request translated", "mode", mode, "input", input, "cached", cached)
	writeJSON(w, http.StatusOK, CLIResponse{Status: "ok", Data: out})
}

// statusFor maps a translation error to an HTTP status.
func statusFor(err error) int {
	switch {
	case parser.IsParseError(err):
		return http.StatusBadRequest
	case translate.IsUnsupportedMethod(err), translate.IsTooComplex(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// rawParam returns the percent-decoded value of key from a raw query
// string. '+' is kept literally, matching the parser's handling of
// option values.
func rawParam(rawQuery, key string) (string, bool) {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if name, err := url.PathUnescape(k); err != nil || name != key {
			continue
		}
		value, err := url.PathUnescape(v)
		if err != nil {
			return v, true
		}
		return value, true
	}
	return "", false
}

func writeJSON(w http.ResponseWriter, status int, resp CLIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Debug("write response", "error", err)
	}
}
