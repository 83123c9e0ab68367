package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithOutputCapturesCombined(t *testing.T) {
	r := NewRunner()
	out, err := r.RunShell(context.Background(), "echo stdout; echo stderr 1>&2")
	require.NoError(t, err)
	assert.Contains(t, out, "stdout")
	assert.Contains(t, out, "stderr")
}

func TestRunWithOutputReturnsOutputOnFailure(t *testing.T) {
	r := NewRunner()
	out, err := r.RunShell(context.Background(), "echo diagnostics; exit 3")
	require.Error(t, err)
	assert.Contains(t, out, "diagnostics")
}

func TestRunnerWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner(WithDir(dir))
	out, err := r.RunWithOutput(context.Background(), "pwd")
	require.NoError(t, err)
	assert.Equal(t, dir, out)
}

func TestFirstExisting(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0600))

	path, found := FirstExisting(filepath.Join(dir, "missing"), present)
	assert.True(t, found)
	assert.Equal(t, present, path)

	_, found = FirstExisting(filepath.Join(dir, "a"), filepath.Join(dir, "b"))
	assert.False(t, found)
}
