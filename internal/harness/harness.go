package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/odataq/internal/doc"
	"github.com/roach88/odataq/internal/parser"
	"github.com/roach88/odataq/internal/translate"
)

// Options tunes a scenario run.
type Options struct {
	// Concurrency bounds the number of cases translated at once.
	// Zero means GOMAXPROCS.
	Concurrency int

	// MaxDepth is passed to parser and translator. Zero keeps their default.
	MaxDepth int

	// Logger receives per-case debug output. Nil discards it.
	Logger *slog.Logger
}

// Result is the outcome of a scenario.
type Result struct {
	Scenario string       `json:"scenario"`
	Pass     bool         `json:"pass"`
	Cases    []CaseResult `json:"cases"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name string `json:"name"`
	Pass bool   `json:"pass"`

	// Output is the translated document; nil when translation failed.
	Output doc.Value `json:"output,omitempty"`

	// ErrorCode classifies a translation failure (see ErrorParse etc.).
	ErrorCode string `json:"error_code,omitempty"`

	// Message explains a failing case.
	Message string `json:"message,omitempty"`
}

// Failures returns the failing cases in order.
func (r *Result) Failures() []CaseResult {
	var failed []CaseResult
	for _, c := range r.Cases {
		if !c.Pass {
			failed = append(failed, c)
		}
	}
	return failed
}

// Run translates every case of the scenario and checks it against its
// expectation.
//
// A returned error means the run itself failed (context cancelled, an
// expectation that cannot be encoded); case failures are reported in
// Result.
func Run(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cases := make([]CaseResult, len(scenario.Cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range scenario.Cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := runCase(c, opts, logger)
			if err != nil {
				return fmt.Errorf("case %q: %w", c.Name, err)
			}
			cases[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Scenario: scenario.Name, Pass: true, Cases: cases}
	for _, c := range cases {
		if !c.Pass {
			result.Pass = false
		}
	}
	return result, nil
}

func runCase(c Case, opts Options, logger *slog.Logger) (CaseResult, error) {
	res := CaseResult{Name: c.Name}
	output, err := Translate(c.Mode(), c.Input(), opts.MaxDepth, logger)
	if err != nil {
		res.ErrorCode = ErrorCode(err)
		switch {
		case c.ExpectError == "":
			res.Message = fmt.Sprintf("unexpected error: %v", err)
		case c.ExpectError != res.ErrorCode:
			res.Message = fmt.Sprintf("expected %s error, got %s: %v", c.ExpectError, res.ErrorCode, err)
		default:
			res.Pass = true
		}
		logger.Debug("case finished", "case", c.Name, "pass", res.Pass, "error", err)
		return res, nil
	}

	res.Output = output
	if c.ExpectError != "" {
		res.Message = fmt.Sprintf("expected %s error, got a result", c.ExpectError)
		return res, nil
	}

	expected, err := doc.FromAny(c.Expect)
	if err != nil {
		return CaseResult{}, fmt.Errorf("convert expectation: %w", err)
	}
	diff, err := Diff(expected, output)
	if err != nil {
		return CaseResult{}, err
	}
	if diff != "" {
		res.Message = "output mismatch (-want +got):\n" + diff
	} else {
		res.Pass = true
	}
	logger.Debug("case finished", "case", c.Name, "pass", res.Pass)
	return res, nil
}

// Translate runs one query or filter translation and returns its document.
func Translate(mode, input string, maxDepth int, logger *slog.Logger) (doc.Value, error) {
	var popts []parser.Option
	topts := []translate.Option{translate.WithLogger(logger)}
	if maxDepth > 0 {
		popts = append(popts, parser.WithMaxDepth(maxDepth))
		topts = append(topts, translate.WithMaxDepth(maxDepth))
	}

	if mode == "query" {
		node, err := parser.ParseQuery(input, popts...)
		if err != nil {
			return nil, err
		}
		res, err := translate.Query(node, topts...)
		if err != nil {
			return nil, err
		}
		return res.Document(), nil
	}

	node, err := parser.ParseFilter(input, popts...)
	if err != nil {
		return nil, err
	}
	filter, err := translate.Filter(node, topts...)
	if err != nil {
		return nil, err
	}
	return filter, nil
}

// ErrorCode classifies a translation error.
func ErrorCode(err error) string {
	switch {
	case parser.IsParseError(err):
		return ErrorParse
	case translate.IsUnsupportedMethod(err):
		return ErrorUnsupportedMethod
	case translate.IsTooComplex(err):
		return ErrorTooComplex
	default:
		return "internal"
	}
}

// Diff compares two documents by their canonical form and returns a
// human-readable diff, or "" when they are equal.
func Diff(want, got doc.Value) (string, error) {
	wantJSON, err := doc.MarshalCanonical(want)
	if err != nil {
		return "", fmt.Errorf("marshal expected: %w", err)
	}
	gotJSON, err := doc.MarshalCanonical(got)
	if err != nil {
		return "", fmt.Errorf("marshal actual: %w", err)
	}
	if string(wantJSON) == string(gotJSON) {
		return "", nil
	}

	var wantAny, gotAny any
	if err := json.Unmarshal(wantJSON, &wantAny); err != nil {
		return "", fmt.Errorf("decode expected: %w", err)
	}
	if err := json.Unmarshal(gotJSON, &gotAny); err != nil {
		return "", fmt.Errorf("decode actual: %w", err)
	}
	if diff := cmp.Diff(wantAny, gotAny); diff != "" {
		return diff, nil
	}
	return fmt.Sprintf("want %s\ngot  %s", wantJSON, gotJSON), nil
}
