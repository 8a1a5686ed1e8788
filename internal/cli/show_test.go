package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowCmd_DumpsContainerAsYAML(t *testing.T) {
	dir := t.TempDir()
	settings := writeTestSettings(t, dir)

	out, err := executeCommand(t,
		"new",
		"--config-file", settings,
		"--experiment", "ramsey",
		"--result", "shots=1024",
	)
	require.NoError(t, err)
	path := strings.TrimSpace(out)

	out, err = executeCommand(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "useful: true")
	assert.Contains(t, out, "shots: 1024")
}

func TestShowCmd_MissingFileFails(t *testing.T) {
	_, err := executeCommand(t, "show", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestEvalCmd_AnnotatesDrift(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestFile(t, filepath.Join(dir, "laser.cfg"),
		"threshold = \"5\"\nname = \"bob\"\n")
	vars := writeTestFile(t, filepath.Join(dir, "vars.json"),
		`{"threshold": 5, "name": "bob"}`)

	out, err := executeCommand(t, "eval", cfg, "--vars", vars)
	require.NoError(t, err)
	assert.Contains(t, out, `threshold = "5"  # value: 5`)
	assert.Contains(t, out, "name = \"bob\"\n")
	assert.NotContains(t, out, `name = "bob"  #`)
}

func TestEvalCmd_MissingVarsFileFails(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestFile(t, filepath.Join(dir, "laser.cfg"), "x = 1")

	_, err := executeCommand(t, "eval", cfg, "--vars", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
