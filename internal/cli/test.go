package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/odataq/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Cases  int      `json:"cases"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run translation scenarios",
		Long: `Run YAML translation scenarios through the translator.

Each case's output (or error code) is checked against its expectation. When
a scenario has a golden file under <scenarios-dir>/golden/, the canonical
snapshot of the run must match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  odataq test ./scenarios
  odataq test ./scenarios --filter "people-*"
  odataq test ./scenarios --update
  odataq test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	// Validate directory
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	scenarioFiles, err := harness.FindScenarios(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{
				Scenarios: []ScenarioResult{},
				Total:     0,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	runOpts := harness.Options{
		Concurrency: cfg.Concurrency,
		MaxDepth:    cfg.MaxDepth,
		Logger:      opts.logger(),
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, runOpts, opts, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}

	return outputTestText(cmd, result)
}

// runScenario executes a single scenario file and returns the result.
func runScenario(scenarioFile string, runOpts harness.Options, opts *TestOptions, cmd *cobra.Command) ScenarioResult {
	w := cmd.OutOrStdout()
	text := opts.Format != "json"

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		if text {
			fmt.Fprintf(w, "✗ %s\n", filepath.Base(scenarioFile))
			fmt.Fprintf(w, "  Load error: %v\n", err)
		}
		return ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			File:   scenarioFile,
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	scenResult := ScenarioResult{Name: scenario.Name, File: scenarioFile, Cases: len(scenario.Cases)}

	result, err := harness.Run(cmd.Context(), scenario, runOpts)
	if err != nil {
		if text {
			fmt.Fprintf(w, "✗ %s\n", scenario.Name)
			fmt.Fprintf(w, "  Execution error: %v\n", err)
		}
		scenResult.Errors = []string{fmt.Sprintf("execution error: %v", err)}
		return scenResult
	}

	for _, c := range result.Failures() {
		scenResult.Errors = append(scenResult.Errors, fmt.Sprintf("case %s: %s", c.Name, c.Message))
	}

	if opts.Update {
		if err := harness.UpdateGolden(scenarioFile, result); err != nil {
			scenResult.Errors = append(scenResult.Errors, fmt.Sprintf("failed to update golden: %v", err))
		} else if opts.Verbose && text {
			fmt.Fprintf(w, "  Updated golden file: %s\n", harness.GoldenPath(scenarioFile))
		}
	} else {
		match, found, err := harness.CompareGolden(scenarioFile, result)
		switch {
		case err != nil:
			scenResult.Errors = append(scenResult.Errors, fmt.Sprintf("golden comparison error: %v", err))
		case found && !match:
			scenResult.Errors = append(scenResult.Errors, "snapshot does not match golden file (run with --update to regenerate)")
		}
	}

	scenResult.Pass = len(scenResult.Errors) == 0

	if text {
		if scenResult.Pass {
			fmt.Fprintf(w, "✓ %s (%d cases)\n", scenario.Name, scenResult.Cases)
		} else {
			fmt.Fprintf(w, "✗ %s\n", scenario.Name)
			for _, e := range scenResult.Errors {
				fmt.Fprintf(w, "  %s\n", indent(e, "    "))
			}
		}
	}
	return scenResult
}

// indent prefixes every line after the first.
func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    CodeGeneric,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return failedScenarios(result.Failed)
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return failedScenarios(result.Failed)
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}

// failedScenarios is the exit error for a run whose failures were already
// written out.
func failedScenarios(n int) *ExitError {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", n))
	exitErr.Reported = true
	return exitErr
}
