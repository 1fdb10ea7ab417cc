package discovery

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/imamik/talhybrid/internal/util/fileutil"
)

// Record holds the facts collected about a node during install.
type Record struct {
	PrimaryDiskID string `yaml:"PRIMARY_DISK_ID"`
	SecondaryDisk string `yaml:"SECONDARY_DISK,omitempty"`
}

// LoadRecord reads the record at path.
func LoadRecord(path string) (*Record, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("invalid discovery record: %w", err)
	}
	return &r, nil
}

// WriteRecord writes r as dir/<ip>.yaml.
func WriteRecord(dir, ip string, r Record) (string, error) {
	if _, err := netip.ParseAddr(ip); err != nil {
		return "", fmt.Errorf("invalid node address %q: %w", ip, err)
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode discovery record: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create discovery directory: %w", err)
	}
	path := filepath.Join(dir, ip+".yaml")
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write discovery record: %w", err)
	}
	return path, nil
}

// addressFromFilename returns the node address a record file name encodes.
func addressFromFilename(name string) (string, bool) {
	stem := name
	for _, ext := range []string{".yaml", ".yml"} {
		if strings.HasSuffix(stem, ext) {
			stem = strings.TrimSuffix(stem, ext)
			break
		}
	}
	addr, err := netip.ParseAddr(stem)
	if err != nil || !addr.Is4() {
		return "", false
	}
	return addr.String(), true
}
