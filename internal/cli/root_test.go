package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Version(t *testing.T) {
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "labrec version "+version)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"new", "list", "show", "eval"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestBackendOpen(t *testing.T) {
	open, ext, err := backendOpen("file")
	require.NoError(t, err)
	assert.NotNil(t, open)
	assert.Equal(t, ".json", ext)

	open, ext, err = backendOpen("sqlite")
	require.NoError(t, err)
	assert.NotNil(t, open)
	assert.Equal(t, ".db", ext)

	_, _, err = backendOpen("postgres")
	assert.Error(t, err)
}
