package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/talhybrid/cmd/talhybrid/handlers"
)

func TestInit_InteractiveFlag(t *testing.T) {
	cmd := Init(&handlers.Options{})

	flag := cmd.Flags().Lookup("interactive")
	require.NotNil(t, flag)
	assert.Equal(t, "i", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)
}

func TestInstall_Flags(t *testing.T) {
	cmd := Install(&handlers.Options{})

	tests := map[string]string{
		"ip":                "",
		"index":             "0",
		"user":              "root",
		"key":               "",
		"disk":              "[]",
		"reboot":            "false",
		"insecure-host-key": "false",
	}
	for name, def := range tests {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, "%s flag should exist", name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestInstall_RequiresTarget(t *testing.T) {
	cmd := Install(&handlers.Options{})
	cmd.SetArgs([]string{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ip")
}

func TestInstall_TargetsAreExclusive(t *testing.T) {
	cmd := Install(&handlers.Options{})
	cmd.SetArgs([]string{"--ip", "203.0.113.10", "--index", "3"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestResourceCommands(t *testing.T) {
	opts := &handlers.Options{}

	tests := []struct {
		cmd     *cobra.Command
		use     string
		aliases []string
	}{
		{Image(opts), "image", nil},
		{VSwitch(opts), "vswitch", nil},
		{Network(opts), "net", []string{"network"}},
		{LoadBalancer(opts), "lb", []string{"load-balancer"}},
		{Infra(opts), "infra", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.use, tt.cmd.Use)
		assert.Equal(t, tt.aliases, tt.cmd.Aliases, tt.use)
		assert.NotNil(t, tt.cmd.RunE, tt.use)
	}

	attach := VSwitch(opts).Flags().Lookup("attach")
	require.NotNil(t, attach)
	assert.Equal(t, "false", attach.DefValue)
}

func TestCommands_RejectArguments(t *testing.T) {
	opts := &handlers.Options{}
	for _, cmd := range []*cobra.Command{Init(opts), Schematic(opts), Render(opts), Backup(opts), Infra(opts)} {
		assert.Error(t, cmd.ValidateArgs([]string{"extra"}), cmd.Name())
	}
}
