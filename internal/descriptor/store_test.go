package descriptor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storeDescriptor = `cluster:
  name: demo
  endpoint: https://10.12.1.10:6443
  networking:
    private-node-cidr: 10.12.0.0/16
    subnet-virtual: 10.12.1.0/24
    subnet-metal: 10.12.2.0/24
talos:
  version: v1.10.3
  schematicId: null          # set after 'schematic'
hetzner:
  hcloud-zone: eu-central
  hcloud-network-id:   null   # set after 'net'
  robot-vlan-tag: 4000
  cp-lb-ip: null             # set after 'lb'
`

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cluster_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
	return path
}

func TestStore_SetReloads(t *testing.T) {
	t.Parallel()

	path := writeDescriptor(t, storeDescriptor)
	s, err := Open(path)
	require.NoError(t, err)
	assert.Zero(t, s.Descriptor().Hetzner.NetworkID)

	require.NoError(t, s.Set("hcloud-network-id", int64(12345)))
	assert.Equal(t, int64(12345), s.Descriptor().Hetzner.NetworkID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "  hcloud-network-id:   12345   # set after 'net'\n")
	assert.Equal(t, strings.Count(storeDescriptor, "\n"), strings.Count(string(data), "\n"))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())
}

func TestStore_SetString(t *testing.T) {
	t.Parallel()

	s, err := Open(writeDescriptor(t, storeDescriptor))
	require.NoError(t, err)

	require.NoError(t, s.Set("cp-lb-ip", "198.51.100.7"))
	assert.Equal(t, "198.51.100.7", s.Descriptor().Hetzner.LoadBalancerIP)
}

func TestStore_SetUnknownField(t *testing.T) {
	t.Parallel()

	path := writeDescriptor(t, storeDescriptor)
	s, err := Open(path)
	require.NoError(t, err)

	err = s.Set("robot-vswitch-id", 1)
	require.ErrorIs(t, err, ErrDescriptorFieldNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, storeDescriptor, string(data), "file untouched on failure")
}

func TestStore_ReloadFailure(t *testing.T) {
	t.Parallel()

	path := writeDescriptor(t, storeDescriptor)
	s, err := Open(path)
	require.NoError(t, err)

	// A value that breaks validation is rejected before anything is written.
	err = s.Set("robot-vlan-tag", 12)
	require.ErrorIs(t, err, ErrDescriptorParseFailure)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, storeDescriptor, string(data), "file untouched on failure")

	reopened, err := Open(path)
	require.NoError(t, err, "a later run can still load the descriptor")
	assert.Equal(t, 4000, reopened.Descriptor().Hetzner.VLANTag)
}

func TestOpen_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Open(writeDescriptor(t, "cluster: ["))
	assert.ErrorIs(t, err, ErrDescriptorParseFailure)

	_, err = Open(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrDescriptorParseFailure)
}
