package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/odataq/internal/testutil"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "odataq", cmd.Use)
	assert.Contains(t, cmd.Long, "document-store query")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"translate", "filter", "test", "serve", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestTranslateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"translate", "filter"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)

		dbFlag := sub.Flags().Lookup("db")
		require.NotNil(t, dbFlag, name)
		assert.Equal(t, "", dbFlag.DefValue)

		inspectFlag := sub.Flags().Lookup("inspect")
		require.NotNil(t, inspectFlag, name)
		assert.Equal(t, "false", inspectFlag.DefValue)
	}
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	require.NotNil(t, serveCmd.Flags().Lookup("addr"))
	require.NotNil(t, serveCmd.Flags().Lookup("db"))
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	require.NotNil(t, historyCmd.Flags().Lookup("db"))
	limitFlag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "20", limitFlag.DefValue)
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "invalid", "filter", "A eq 1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExecute_Success(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := Execute(context.Background(), []string{"--format", "json", "filter", "Name eq 'Ann'"}, stdout, stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	var resp struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"Name": map[string]any{"$eq": "Ann"}}, resp.Data)
}

func TestExecute_TranslationErrorJSON(t *testing.T) {
	tests := []struct {
		name string
		expr string
		code string
	}{
		{"parse", "Name eq", CodeParse},
		{"unsupported", "length(Name) eq 3", CodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
			code := Execute(context.Background(), []string{"--format", "json", "filter", tt.expr}, stdout, stderr)
			assert.Equal(t, ExitFailure, code)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestExecute_TranslationErrorText(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := Execute(context.Background(), []string{"filter", "Name eq"}, stdout, stderr)
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Error [E002]")
}

func TestExecute_UsageError(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := Execute(context.Background(), []string{"filter"}, stdout, stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "accepts 1 arg")
}

func TestExecute_ConfigFile(t *testing.T) {
	cfgPath := testutil.WriteFile(t, t.TempDir(), "odataq.cue", "format: \"json\"\nmax_depth: 4\n")

	t.Run("format from config", func(t *testing.T) {
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		code := Execute(context.Background(), []string{"--config", cfgPath, "filter", "A eq 1"}, stdout, stderr)
		require.Equal(t, ExitSuccess, code, stderr.String())

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
	})

	t.Run("explicit format wins", func(t *testing.T) {
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		code := Execute(context.Background(), []string{"--config", cfgPath, "--format", "text", "filter", "A eq 1"}, stdout, stderr)
		require.Equal(t, ExitSuccess, code, stderr.String())
		assert.Contains(t, stdout.String(), `"$eq": 1`)
	})

	t.Run("max depth from config", func(t *testing.T) {
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		code := Execute(context.Background(), []string{"--config", cfgPath, "filter", "((((((A eq 1))))))"}, stdout, stderr)
		assert.Equal(t, ExitFailure, code)
		assert.Contains(t, stdout.String(), `"status":"error"`)
	})
}

func TestExecute_InvalidConfig(t *testing.T) {
	cfgPath := testutil.WriteFile(t, t.TempDir(), "bad.cue", "max_depth: 0\n")

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := Execute(context.Background(), []string{"--config", cfgPath, "filter", "A eq 1"}, stdout, stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "Error [E005]")
	assert.Contains(t, stderr.String(), "max_depth")
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	newLogger(buf, false).Debug("hidden")
	newLogger(buf, false).Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")

	buf.Reset()
	newLogger(buf, true).Debug("detail", "key", "value")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "key=value")
}
