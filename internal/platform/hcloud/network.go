package hcloud

import (
	"context"
	"fmt"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ListNetworks returns all networks matching the label selector.
func (c *RealClient) ListNetworks(ctx context.Context, selector string) ([]*hcloud.Network, error) {
	networks, err := c.client.Network.AllWithOpts(ctx, hcloud.NetworkListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: selector},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	return networks, nil
}

// CreateNetwork creates a network spanning ipRange.
func (c *RealClient) CreateNetwork(ctx context.Context, name, ipRange string, labels map[string]string) (*hcloud.Network, error) {
	_, ipNet, err := net.ParseCIDR(ipRange)
	if err != nil {
		return nil, fmt.Errorf("invalid network ip range %q: %w", ipRange, err)
	}

	network, _, err := c.client.Network.Create(ctx, hcloud.NetworkCreateOpts{
		Name:    name,
		IPRange: ipNet,
		Labels:  labels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create network %s: %w", name, err)
	}
	return network, nil
}

// AddSubnet adds a subnet to the network. A subnet with the same range
// that is already present is left alone.
func (c *RealClient) AddSubnet(ctx context.Context, network *hcloud.Network, subnet SubnetSpec) error {
	for _, existing := range network.Subnets {
		if existing.IPRange != nil && existing.IPRange.String() == subnet.IPRange {
			return nil
		}
	}

	_, ipNet, err := net.ParseCIDR(subnet.IPRange)
	if err != nil {
		return fmt.Errorf("invalid subnet ip range %q: %w", subnet.IPRange, err)
	}

	opts := hcloud.NetworkAddSubnetOpts{
		Subnet: hcloud.NetworkSubnet{
			Type:        subnet.Type,
			IPRange:     ipNet,
			NetworkZone: hcloud.NetworkZone(subnet.Zone),
		},
	}
	if subnet.Type == hcloud.NetworkSubnetTypeVSwitch {
		if subnet.VSwitchID == 0 {
			return fmt.Errorf("vswitch subnet %s requires a vswitch id", subnet.IPRange)
		}
		opts.Subnet.VSwitchID = subnet.VSwitchID
	}

	action, _, err := c.client.Network.AddSubnet(ctx, network, opts)
	if err != nil {
		return fmt.Errorf("failed to add %s subnet %s: %w", subnet.Type, subnet.IPRange, err)
	}
	return c.waitFor(ctx, "subnet creation", action)
}

// ExposeRoutesToVSwitch makes the network's routes reachable from the
// attached Robot vSwitch.
func (c *RealClient) ExposeRoutesToVSwitch(ctx context.Context, network *hcloud.Network) error {
	if network.ExposeRoutesToVSwitch {
		return nil
	}
	_, _, err := c.client.Network.Update(ctx, network, hcloud.NetworkUpdateOpts{
		ExposeRoutesToVSwitch: hcloud.Ptr(true),
	})
	if err != nil {
		return fmt.Errorf("failed to expose routes to vswitch: %w", err)
	}
	return nil
}
