package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDescriptor reads, parses and validates the descriptor at path.
func LoadDescriptor(path string) (*Descriptor, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	return ParseDescriptor(data)
}

// ParseDescriptor parses descriptor bytes, applies defaults and validates the result.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal descriptor: %w", err)
	}

	d.applyDefaults()

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("descriptor validation failed: %w", err)
	}
	return &d, nil
}

func (d *Descriptor) applyDefaults() {
	if d.Cluster.KubernetesVersion == "" {
		d.Cluster.KubernetesVersion = DefaultKubernetesVersion
	}
	if d.Hetzner.Zone == "" {
		d.Hetzner.Zone = DefaultZone
	}
	if d.Hetzner.LoadBalancerType == "" {
		d.Hetzner.LoadBalancerType = DefaultLoadBalancerType
	}
	if d.Hetzner.LoadBalancerCount == 0 {
		d.Hetzner.LoadBalancerCount = DefaultLoadBalancerCount
	}
}
