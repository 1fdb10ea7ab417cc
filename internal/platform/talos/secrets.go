package talos

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/siderolabs/talos/pkg/machinery/config"
	"github.com/siderolabs/talos/pkg/machinery/config/generate/secrets"
	"gopkg.in/yaml.v3"

	"github.com/imamik/talhybrid/internal/util/fileutil"
)

// SecretsBundle is a type alias for the Talos secrets bundle.
type SecretsBundle = secrets.Bundle

// LoadSecrets loads Talos secrets from a file.
func LoadSecrets(path string) (*secrets.Bundle, error) {
	sb, err := secrets.LoadBundle(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets bundle: %w", err)
	}

	if sb == nil {
		return nil, fmt.Errorf("loaded secrets bundle is nil")
	}

	// Re-inject clock
	sb.Clock = secrets.NewFixedClock(time.Now())
	return sb, nil
}

// SaveSecrets saves Talos secrets to a file readable only by the owner.
// Uses YAML format to match what Talos machinery's LoadBundle expects.
func SaveSecrets(path string, sb *secrets.Bundle) error {
	data, err := yaml.Marshal(sb)
	if err != nil {
		return fmt.Errorf("failed to marshal secrets bundle: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}

	return nil
}

// NewSecrets creates a new Talos secrets bundle for the given Talos version.
func NewSecrets(talosVersion string) (*secrets.Bundle, error) {
	vc, err := config.ParseContractFromVersion(talosVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to parse version contract: %w", err)
	}

	sb, err := secrets.NewBundle(secrets.NewFixedClock(time.Now()), vc)
	if err != nil {
		return nil, fmt.Errorf("failed to create secrets bundle: %w", err)
	}

	return sb, nil
}

// GetOrGenerateSecrets loads secrets from path, or generates and saves them
// if the file does not exist. The boolean reports whether a new bundle was
// written.
func GetOrGenerateSecrets(path string, talosVersion string) (*SecretsBundle, bool, error) {
	if _, err := os.Stat(path); err == nil {
		sb, err := LoadSecrets(path)
		return sb, false, err
	}

	sb, err := NewSecrets(talosVersion)
	if err != nil {
		return nil, false, err
	}

	if err := SaveSecrets(path, sb); err != nil {
		return nil, false, err
	}

	return sb, true, nil
}
