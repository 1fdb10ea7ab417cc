package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "talhybrid", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	expected := []string{
		"init", "schematic", "image", "vswitch", "net", "lb", "infra",
		"install", "render", "backup", "version",
	}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, subcommands[name], "Expected subcommand %s not found", name)
	}
}

func TestRoot_GlobalFlagDefaults(t *testing.T) {
	cmd := Root()

	tests := map[string]string{
		"config-dir":     "config",
		"template-dir":   "config_templates",
		"env-file":       ".env",
		"metrics-file":   "",
		"failure-policy": "abort",
	}
	for name, def := range tests {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "%s flag should exist", name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestRoot_GlobalFlagsReachSubcommands(t *testing.T) {
	cmd := Root()
	cmd.SetArgs([]string{"--config-dir", "elsewhere", "version"})
	require.NoError(t, cmd.Execute())

	flag := cmd.PersistentFlags().Lookup("config-dir")
	assert.Equal(t, "elsewhere", flag.Value.String())
}
