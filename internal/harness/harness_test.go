package harness

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/odataq/internal/doc"
)

func TestRun_PassingScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/people.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario, Options{Concurrency: 2})
	require.NoError(t, err)

	assert.True(t, result.Pass, "failures: %+v", result.Failures())
	assert.Equal(t, "people", result.Scenario)
	require.Len(t, result.Cases, 4)
	for i, c := range scenario.Cases {
		assert.Equal(t, c.Name, result.Cases[i].Name, "case order must be preserved")
	}
	assert.Equal(t, ErrorUnsupportedMethod, result.Cases[3].ErrorCode)
	assert.Nil(t, result.Cases[3].Output)
}

func TestRun_ReportsMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "wrong expectation",
		Cases: []Case{
			{Name: "wrong_op", Filter: "Age gt 3", Expect: map[string]any{"Age": map[string]any{"$lt": 3}}},
			{Name: "right", Filter: "Age gt 3", Expect: map[string]any{"Age": map[string]any{"$gt": 3}}},
		},
	}

	result, err := Run(context.Background(), scenario, Options{})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	failures := result.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "wrong_op", failures[0].Name)
	assert.Contains(t, failures[0].Message, "output mismatch")
	assert.True(t, result.Cases[1].Pass)
}

func TestRun_ErrorExpectations(t *testing.T) {
	scenario := &Scenario{
		Name:        "errors",
		Description: "error classification",
		Cases: []Case{
			{Name: "parse", Filter: "Name eq", ExpectError: ErrorParse},
			{Name: "too_complex", Query: "People?$expand=Trips($filter=((((((A eq 1))))))", ExpectError: ErrorTooComplex},
			{Name: "wrong_code", Filter: "length(A) eq 1", ExpectError: ErrorParse},
			{Name: "missing_error", Filter: "A eq 1", ExpectError: ErrorParse},
			{Name: "unexpected_error", Filter: "A eq", Expect: map[string]any{}},
		},
	}

	result, err := Run(context.Background(), scenario, Options{MaxDepth: 6})
	require.NoError(t, err)

	got := map[string]bool{}
	for _, c := range result.Cases {
		got[c.Name] = c.Pass
	}
	assert.Equal(t, map[string]bool{
		"parse":            true,
		"too_complex":      true,
		"wrong_code":       false,
		"missing_error":    false,
		"unexpected_error": false,
	}, got)
	assert.Contains(t, result.Cases[2].Message, "expected parse error, got unsupported_method")
	assert.Contains(t, result.Cases[3].Message, "got a result")
	assert.Contains(t, result.Cases[4].Message, "unexpected error")
}

func TestRun_ManyCasesKeepOrder(t *testing.T) {
	scenario := &Scenario{Name: "many", Description: "ordering"}
	for i := range 50 {
		scenario.Cases = append(scenario.Cases, Case{
			Name:   fmt.Sprintf("case_%02d", i),
			Filter: fmt.Sprintf("N eq %d", i),
			Expect: map[string]any{"N": map[string]any{"$eq": i}},
		})
	}

	result, err := Run(context.Background(), scenario, Options{Concurrency: 8})
	require.NoError(t, err)
	assert.True(t, result.Pass)
	for i, c := range result.Cases {
		assert.Equal(t, fmt.Sprintf("case_%02d", i), c.Name)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scenario := &Scenario{
		Name:        "cancelled",
		Description: "cancelled run",
		Cases:       []Case{{Name: "a", Filter: "A eq 1", Expect: map[string]any{}}},
	}
	_, err := Run(ctx, scenario, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiff(t *testing.T) {
	a := doc.Object{"x": doc.Int(1), "y": doc.CaseInsensitive("a")}
	b := doc.Object{"y": doc.CaseInsensitive("a"), "x": doc.Int(1)}

	diff, err := Diff(a, b)
	require.NoError(t, err)
	assert.Empty(t, diff)

	diff, err = Diff(a, doc.Object{"x": doc.Int(2)})
	require.NoError(t, err)
	assert.NotEmpty(t, diff)
}
