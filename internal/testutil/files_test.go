package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := WriteFile(t, dir, "nested/case.yaml", "name: x\n")

	assert.Equal(t, filepath.Join(dir, "nested", "case.yaml"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name: x\n", string(data))
}

func TestTempDB(t *testing.T) {
	a, b := TempDB(t), TempDB(t)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "odataq.db", filepath.Base(a))

	_, err := os.Stat(a)
	assert.True(t, os.IsNotExist(err))
}
