package talos

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecrets(t *testing.T) {
	talosVersion := "v1.10.3"
	secretsFile := filepath.Join(t.TempDir(), "secrets", "secrets.yaml")

	sb, err := NewSecrets(talosVersion)
	require.NoError(t, err)
	require.NotNil(t, sb)

	require.NoError(t, SaveSecrets(secretsFile, sb))

	info, err := os.Stat(secretsFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadSecrets(secretsFile)
	require.NoError(t, err)
	assert.NotNil(t, loaded.Clock)
	assert.Equal(t, sb.Cluster.ID, loaded.Cluster.ID)
}

func TestNewSecrets_InvalidVersion(t *testing.T) {
	_, err := NewSecrets("not-a-version")
	assert.Error(t, err)
}

func TestLoadSecrets_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := LoadSecrets(path)
	assert.Error(t, err)
}

func TestGetOrGenerateSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")

	first, created, err := GetOrGenerateSecrets(path, "v1.10.3")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := GetOrGenerateSecrets(path, "v1.10.3")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Cluster.ID, second.Cluster.ID)
}
