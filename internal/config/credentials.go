package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-envparse"
)

// Environment variables consumed by talhybrid.
const (
	EnvHCloudToken   = "HCLOUD_TOKEN"
	EnvRobotUser     = "HETZNER_ROBOT_USER"
	EnvRobotPassword = "HETZNER_ROBOT_PASSWORD"
	EnvS3Endpoint    = "TALHYBRID_S3_ENDPOINT"
	EnvS3Region      = "TALHYBRID_S3_REGION"
	EnvS3Bucket      = "TALHYBRID_S3_BUCKET"
	EnvS3AccessKey   = "TALHYBRID_S3_ACCESS_KEY"
	EnvS3SecretKey   = "TALHYBRID_S3_SECRET_KEY"
)

// Credentials carries API secrets resolved from the environment.
type Credentials struct {
	HCloudToken   string
	RobotUser     string
	RobotPassword string
	S3            S3Settings
}

// S3Settings configures the backup target.
type S3Settings struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// LoadCredentials resolves credentials from the process environment. When
// envFile exists it is parsed first; variables already set in the
// environment take precedence over the file; empty variables count as unset.
func LoadCredentials(envFile string) (*Credentials, error) {
	fileVars := map[string]string{}
	if envFile != "" {
		f, err := os.Open(envFile) // #nosec G304
		switch {
		case err == nil:
			defer func() { _ = f.Close() }()
			if fileVars, err = envparse.Parse(f); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", envFile, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to open %s: %w", envFile, err)
		}
	}

	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fileVars[key]
	}

	return &Credentials{
		HCloudToken:   lookup(EnvHCloudToken),
		RobotUser:     lookup(EnvRobotUser),
		RobotPassword: lookup(EnvRobotPassword),
		S3: S3Settings{
			Endpoint:  lookup(EnvS3Endpoint),
			Region:    lookup(EnvS3Region),
			Bucket:    lookup(EnvS3Bucket),
			AccessKey: lookup(EnvS3AccessKey),
			SecretKey: lookup(EnvS3SecretKey),
		},
	}, nil
}

// RequireHCloud fails when no Hetzner Cloud token is available.
func (c *Credentials) RequireHCloud() error {
	if c.HCloudToken == "" {
		return fmt.Errorf("%s environment variable is not set", EnvHCloudToken)
	}
	return nil
}

// RequireRobot fails when Robot webservice credentials are missing.
func (c *Credentials) RequireRobot() error {
	if c.RobotUser == "" || c.RobotPassword == "" {
		return fmt.Errorf("%s and %s environment variables must be set", EnvRobotUser, EnvRobotPassword)
	}
	return nil
}

// RequireS3 fails when the backup target is incomplete.
func (c *Credentials) RequireS3() error {
	s := c.S3
	if s.Endpoint == "" || s.Bucket == "" || s.AccessKey == "" || s.SecretKey == "" {
		return fmt.Errorf("%s, %s, %s and %s must be set for backups", EnvS3Endpoint, EnvS3Bucket, EnvS3AccessKey, EnvS3SecretKey)
	}
	return nil
}
