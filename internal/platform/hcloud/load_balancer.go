package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ListLoadBalancers returns all load balancers matching the label selector.
func (c *RealClient) ListLoadBalancers(ctx context.Context, selector string) ([]*hcloud.LoadBalancer, error) {
	lbs, err := c.client.LoadBalancer.AllWithOpts(ctx, hcloud.LoadBalancerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: selector},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list load balancers: %w", err)
	}
	return lbs, nil
}

// CreateLoadBalancer creates a load balancer in a network zone and waits
// until it is running. The returned object is re-read so it carries the
// assigned public address.
// Note: Load balancer creation can take several minutes depending on Hetzner Cloud backend load.
func (c *RealClient) CreateLoadBalancer(ctx context.Context, spec LoadBalancerSpec) (*hcloud.LoadBalancer, error) {
	lbType, _, err := c.client.LoadBalancerType.Get(ctx, spec.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to get lb type: %w", err)
	}
	if lbType == nil {
		return nil, fmt.Errorf("load balancer type %q not found", spec.Type)
	}

	res, _, err := c.client.LoadBalancer.Create(ctx, hcloud.LoadBalancerCreateOpts{
		Name:             spec.Name,
		LoadBalancerType: lbType,
		NetworkZone:      hcloud.NetworkZone(spec.Zone),
		Labels:           spec.Labels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lb %s: %w", spec.Name, err)
	}
	if err := c.waitFor(ctx, "lb creation", res.Action); err != nil {
		return nil, err
	}

	lb, _, err := c.client.LoadBalancer.GetByID(ctx, res.LoadBalancer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lb %s: %w", spec.Name, err)
	}
	if lb == nil {
		return res.LoadBalancer, nil
	}
	return lb, nil
}

// AddTCPService adds a TCP service unless one already listens on listenPort.
func (c *RealClient) AddTCPService(ctx context.Context, lb *hcloud.LoadBalancer, listenPort, destinationPort int) error {
	for _, s := range lb.Services {
		if s.ListenPort == listenPort {
			return nil
		}
	}

	action, _, err := c.client.LoadBalancer.AddService(ctx, lb, hcloud.LoadBalancerAddServiceOpts{
		Protocol:        hcloud.LoadBalancerServiceProtocolTCP,
		ListenPort:      hcloud.Ptr(listenPort),
		DestinationPort: hcloud.Ptr(destinationPort),
	})
	if err != nil {
		return fmt.Errorf("failed to add service: %w", err)
	}
	return c.waitFor(ctx, "service creation", action)
}

// AddLabelSelectorTarget targets all servers matching selector.
func (c *RealClient) AddLabelSelectorTarget(ctx context.Context, lb *hcloud.LoadBalancer, selector string) error {
	for _, target := range lb.Targets {
		if target.Type == hcloud.LoadBalancerTargetTypeLabelSelector && target.LabelSelector != nil && target.LabelSelector.Selector == selector {
			return nil
		}
	}

	action, _, err := c.client.LoadBalancer.AddLabelSelectorTarget(ctx, lb, hcloud.LoadBalancerAddLabelSelectorTargetOpts{
		Selector: selector,
	})
	if err != nil {
		return fmt.Errorf("failed to add target: %w", err)
	}
	return c.waitFor(ctx, "target creation", action)
}
