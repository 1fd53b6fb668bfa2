package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "trustroute version")
}

func TestSimulateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
steps:
  - frame: {src: "00:00:00:00:00:01", dst: "00:00:00:00:00:02", in_port: 1}
    repeat: 3
`), 0o644))

	out, err := execute(t, "simulate", path, "--format", "yaml", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "3 decisions, 0 outcomes, 0 feedback errors")
	assert.Contains(t, out, "q_table:")
	assert.Contains(t, out, "00:00:00:00:00:01")
}

func TestInspectCommand_NeedsRedis(t *testing.T) {
	_, err := execute(t, "inspect", "--log-level", "error")
	assert.ErrorContains(t, err, "store.backend: redis")
}
