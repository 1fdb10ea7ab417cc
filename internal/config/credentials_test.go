package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCredentials_EnvFile(t *testing.T) {
	t.Setenv(EnvHCloudToken, "from-env")
	t.Setenv(EnvRobotUser, "")
	t.Setenv(EnvRobotPassword, "")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"HCLOUD_TOKEN=from-file\nHETZNER_ROBOT_USER=robot\nHETZNER_ROBOT_PASSWORD=\"s3cret\"\n"), 0o600))

	creds, err := LoadCredentials(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", creds.HCloudToken, "environment wins over file")
	assert.Equal(t, "robot", creds.RobotUser)
	assert.Equal(t, "s3cret", creds.RobotPassword)
	assert.NoError(t, creds.RequireRobot())
}

func TestLoadCredentials_MissingFileIsFine(t *testing.T) {
	t.Setenv(EnvHCloudToken, "")

	creds, err := LoadCredentials(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	err = creds.RequireHCloud()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvHCloudToken)
}

func TestCredentials_RequireS3(t *testing.T) {
	t.Parallel()

	c := &Credentials{S3: S3Settings{Endpoint: "https://s3.example", Bucket: "b", AccessKey: "a"}}
	assert.Error(t, c.RequireS3())

	c.S3.SecretKey = "s"
	assert.NoError(t, c.RequireS3())
}
