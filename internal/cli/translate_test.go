package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/odataq/internal/store"
	"github.com/roach88/odataq/internal/testutil"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	code = Execute(context.Background(), args, out, errOut)
	return out.String(), errOut.String(), code
}

func decodeData(t *testing.T, stdout string) map[string]any {
	t.Helper()
	var resp struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestTranslateCommand_Query(t *testing.T) {
	stdout, stderr, code := runCLI(t, "--format", "json", "translate",
		"/People?$filter=Age gt 30&$orderby=Name desc&$top=10&$skip=5&$select=Name")
	require.Equal(t, ExitSuccess, code, stderr)

	data := decodeData(t, stdout)
	assert.Equal(t, "People", data["collection"])
	assert.Equal(t, map[string]any{"Age": map[string]any{"$gt": float64(30)}}, data["query"])
	assert.Equal(t, map[string]any{"Name": float64(-1)}, data["sort"])
	assert.Equal(t, map[string]any{"Name": float64(1)}, data["projection"])
	assert.Equal(t, float64(10), data["limit"])
	assert.Equal(t, float64(5), data["skip"])
}

func TestTranslateCommand_Expand(t *testing.T) {
	stdout, stderr, code := runCLI(t, "--format", "json", "translate",
		"People?$expand=Trips($filter=Budget lt 3000;$select=Name)")
	require.Equal(t, ExitSuccess, code, stderr)

	data := decodeData(t, stdout)
	includes, ok := data["includes"].([]any)
	require.True(t, ok, "includes missing: %v", data)
	require.Len(t, includes, 1)
	trip := includes[0].(map[string]any)
	assert.Equal(t, "Trips", trip["navigationProperty"])
	assert.Equal(t, map[string]any{"Budget": map[string]any{"$lt": float64(3000)}}, trip["query"])
}

func TestTranslateCommand_TextOutput(t *testing.T) {
	stdout, stderr, code := runCLI(t, "translate", "People?$top=1")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, `"collection": "People"`)
	assert.Contains(t, stdout, `"limit": 1`)
}

func TestFilterCommand_Methods(t *testing.T) {
	stdout, stderr, code := runCLI(t, "--format", "json", "filter", "contains(Name,'an')")
	require.Equal(t, ExitSuccess, code, stderr)

	data := decodeData(t, stdout)
	assert.Equal(t, map[string]any{
		"Name": map[string]any{
			"$regularExpression": map[string]any{"pattern": "an", "options": "i"},
		},
	}, data)
}

func TestTranslateCommand_Inspect(t *testing.T) {
	stdout, stderr, code := runCLI(t, "--verbose", "filter", "--inspect", "A eq 1 and B ne 'x'")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.NotContains(t, stderr, "warning:")
	assert.Contains(t, stderr, "inspected")
	assert.Contains(t, stdout, "$and")
}

func TestTranslateCommand_InspectParseError(t *testing.T) {
	_, stderr, code := runCLI(t, "filter", "--inspect", "A eq")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "Error [E002]")
}

func TestFilterCommand_NestedParens(t *testing.T) {
	stdout, _, code := runCLI(t, "--format", "json", "filter", "((((((((A eq 1))))))))")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, `"status":"ok"`)
}

func TestTranslateCommand_Cache(t *testing.T) {
	dbPath := testutil.TempDB(t)
	query := "People?$filter=Name eq 'Ann'"

	first, stderr, code := runCLI(t, "--format", "json", "translate", "--db", dbPath, query)
	require.Equal(t, ExitSuccess, code, stderr)

	second, stderr, code := runCLI(t, "--format", "json", "--verbose", "translate", "--db", dbPath, query)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stderr, "cache hit")
	assert.JSONEq(t, first, second)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	entries, err := st.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.ModeQuery, entries[0].Mode)
	assert.Equal(t, query, entries[0].Input)
}

func TestTranslateCommand_BadDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing", "dir", "odataq.db")
	stdout, _, code := runCLI(t, "--format", "json", "filter", "--db", dbPath, "A eq 1")
	assert.Equal(t, ExitCommandError, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeStore, resp.Error.Code)
}

func TestErrorCode(t *testing.T) {
	_, err := (&translator{maxDepth: 256}).translate(store.ModeFilter, "A eq")
	assert.Equal(t, CodeParse, ErrorCode(err))

	_, err = (&translator{maxDepth: 256}).translate(store.ModeFilter, "length(A) eq 1")
	assert.Equal(t, CodeUnsupported, ErrorCode(err))

	assert.Equal(t, CodeGeneric, ErrorCode(assert.AnError))

	exitErr := WrapExitError(ExitFailure, "wrapped", assert.AnError)
	exitErr.Reason = CodeStore
	assert.Equal(t, CodeStore, ErrorCode(exitErr))
}
