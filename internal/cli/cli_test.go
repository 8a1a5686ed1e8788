package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and captures its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Reset flag-bound state from previous executions.
	cfgFile = ""
	logLevel = "info"
	newExperiment = ""
	newDataDir = ""
	newConfigs = nil
	newCellFile = ""
	newResults = nil
	newBackend = ""
	newSaveFiles = false
	listExperiment = ""
	listDataDir = ""
	evalVarsFile = ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

// writeTestFile writes content to path, creating parent directories.
func writeTestFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeTestSettings writes a minimal settings file rooted in dir.
func writeTestSettings(t *testing.T, dir string) string {
	t.Helper()
	return writeTestFile(t, filepath.Join(dir, "labrec.json"),
		`{"data_dir": "`+filepath.Join(dir, "data")+`"}`)
}
