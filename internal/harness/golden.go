package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/odataq/internal/doc"
)

// Snapshot returns the canonical JSON of every case outcome, in case order.
// Golden files store these bytes.
func Snapshot(result *Result) ([]byte, error) {
	cases := make(doc.Array, len(result.Cases))
	for i, c := range result.Cases {
		entry := doc.Object{"name": doc.String(c.Name)}
		if c.ErrorCode != "" {
			entry["error"] = doc.String(c.ErrorCode)
		} else {
			entry["output"] = c.Output
		}
		cases[i] = entry
	}

	data, err := doc.MarshalCanonical(doc.Object{
		"scenario": doc.String(result.Scenario),
		"cases":    cases,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// GoldenPath returns the golden file for a scenario file:
// <dir>/golden/<basename>.golden.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes the result snapshot as the scenario's golden file.
func UpdateGolden(scenarioFile string, result *Result) error {
	data, err := Snapshot(result)
	if err != nil {
		return err
	}

	goldenPath := GoldenPath(scenarioFile)
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the result matches the scenario's golden
// file. found is false when no golden file exists.
func CompareGolden(scenarioFile string, result *Result) (match, found bool, err error) {
	golden, err := os.ReadFile(GoldenPath(scenarioFile))
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, true, fmt.Errorf("failed to read golden file: %w", err)
	}

	current, err := Snapshot(result)
	if err != nil {
		return false, true, err
	}
	return bytes.Equal(golden, current), true, nil
}

// RunWithGolden runs a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the run fails. Test failure (via goldie) occurs if the
// snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts Options) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario, opts)
	if err != nil {
		return nil, err
	}

	data, err := Snapshot(result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
