package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistration(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	assert.True(t, names["serve"])
	assert.True(t, names["backup"])
	assert.True(t, names["version"])
}

func TestBackupSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range backupCmd.Commands() {
		names[cmd.Name()] = true
	}

	assert.True(t, names["create"])
	assert.True(t, names["verify"])
	assert.True(t, names["restore"])
	assert.True(t, names["list"])
}

func TestInitGlobals_Defaults(t *testing.T) {
	configPath = ""
	require.NoError(t, initGlobals())
	assert.Equal(t, ":3000", cfg.Server.Listen)
}
