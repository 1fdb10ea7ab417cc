package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/hashicorp/go-multierror"
	"k8s.io/apimachinery/pkg/util/validation"
)

// Validate checks the descriptor for structural errors. All problems are
// reported together.
func (d *Descriptor) Validate() error {
	var result *multierror.Error

	if d.Cluster.Name == "" {
		result = multierror.Append(result, fmt.Errorf("cluster.name is required"))
	} else if errs := validation.IsDNS1123Label(d.Cluster.Name); len(errs) > 0 {
		result = multierror.Append(result, fmt.Errorf("cluster.name %q: %s", d.Cluster.Name, strings.Join(errs, "; ")))
	}

	if d.Cluster.Endpoint == "" {
		result = multierror.Append(result, fmt.Errorf("cluster.endpoint is required"))
	} else if u, err := url.Parse(d.Cluster.Endpoint); err != nil || u.Scheme != "https" || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("cluster.endpoint %q must be an https URL", d.Cluster.Endpoint))
	}

	if err := d.Cluster.Networking.validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if d.Talos.Version == "" {
		result = multierror.Append(result, fmt.Errorf("talos.version is required"))
	} else if _, err := semver.ParseTolerant(d.Talos.Version); err != nil {
		result = multierror.Append(result, fmt.Errorf("talos.version %q: %w", d.Talos.Version, err))
	}

	if _, err := semver.ParseTolerant(d.Cluster.KubernetesVersion); err != nil {
		result = multierror.Append(result, fmt.Errorf("cluster.kubernetes-version %q: %w", d.Cluster.KubernetesVersion, err))
	}

	if tag := d.Hetzner.VLANTag; tag != 0 && (tag < MinVLANTag || tag > MaxVLANTag) {
		result = multierror.Append(result, fmt.Errorf("hetzner.robot-vlan-tag %d must be between %d and %d", tag, MinVLANTag, MaxVLANTag))
	}

	if d.Hetzner.LoadBalancerCount < 1 {
		result = multierror.Append(result, fmt.Errorf("hetzner.cp-lb-count must be at least 1"))
	}

	return result.ErrorOrNil()
}

func (n Networking) validate() error {
	cluster, virtual, metal, err := n.Prefixes()
	if err != nil {
		return fmt.Errorf("cluster.networking: %w", err)
	}

	var result *multierror.Error
	if !containsPrefix(cluster, virtual) {
		result = multierror.Append(result, fmt.Errorf("subnet-virtual %s is outside private-node-cidr %s", virtual, cluster))
	}
	if !containsPrefix(cluster, metal) {
		result = multierror.Append(result, fmt.Errorf("subnet-metal %s is outside private-node-cidr %s", metal, cluster))
	}
	if virtual.Overlaps(metal) {
		result = multierror.Append(result, fmt.Errorf("subnet-virtual %s overlaps subnet-metal %s", virtual, metal))
	}
	return result.ErrorOrNil()
}
