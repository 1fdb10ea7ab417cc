package hcloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// MockClient is a mock implementation of InfrastructureManager.
// Unset function fields fall back to empty successful results.
type MockClient struct {
	// Network
	ListNetworksFunc          func(ctx context.Context, selector string) ([]*hcloud.Network, error)
	CreateNetworkFunc         func(ctx context.Context, name, ipRange string, labels map[string]string) (*hcloud.Network, error)
	AddSubnetFunc             func(ctx context.Context, network *hcloud.Network, subnet SubnetSpec) error
	ExposeRoutesToVSwitchFunc func(ctx context.Context, network *hcloud.Network) error

	// LoadBalancer
	ListLoadBalancersFunc      func(ctx context.Context, selector string) ([]*hcloud.LoadBalancer, error)
	CreateLoadBalancerFunc     func(ctx context.Context, spec LoadBalancerSpec) (*hcloud.LoadBalancer, error)
	AddTCPServiceFunc          func(ctx context.Context, lb *hcloud.LoadBalancer, listenPort, destinationPort int) error
	AddLabelSelectorTargetFunc func(ctx context.Context, lb *hcloud.LoadBalancer, selector string) error

	// Snapshot
	ListSnapshotsFunc func(ctx context.Context, selector string) ([]*hcloud.Image, error)
}

// Ensure interface compliance
var _ InfrastructureManager = (*MockClient)(nil)

// ListNetworks mocks network listing.
func (m *MockClient) ListNetworks(ctx context.Context, selector string) ([]*hcloud.Network, error) {
	if m.ListNetworksFunc != nil {
		return m.ListNetworksFunc(ctx, selector)
	}
	return nil, nil
}

// CreateNetwork mocks network creation.
func (m *MockClient) CreateNetwork(ctx context.Context, name, ipRange string, labels map[string]string) (*hcloud.Network, error) {
	if m.CreateNetworkFunc != nil {
		return m.CreateNetworkFunc(ctx, name, ipRange, labels)
	}
	return &hcloud.Network{ID: 1, Name: name, Labels: labels}, nil
}

// AddSubnet mocks subnet creation.
func (m *MockClient) AddSubnet(ctx context.Context, network *hcloud.Network, subnet SubnetSpec) error {
	if m.AddSubnetFunc != nil {
		return m.AddSubnetFunc(ctx, network, subnet)
	}
	return nil
}

// ExposeRoutesToVSwitch mocks the route exposure update.
func (m *MockClient) ExposeRoutesToVSwitch(ctx context.Context, network *hcloud.Network) error {
	if m.ExposeRoutesToVSwitchFunc != nil {
		return m.ExposeRoutesToVSwitchFunc(ctx, network)
	}
	return nil
}

// ListLoadBalancers mocks load balancer listing.
func (m *MockClient) ListLoadBalancers(ctx context.Context, selector string) ([]*hcloud.LoadBalancer, error) {
	if m.ListLoadBalancersFunc != nil {
		return m.ListLoadBalancersFunc(ctx, selector)
	}
	return nil, nil
}

// CreateLoadBalancer mocks load balancer creation.
func (m *MockClient) CreateLoadBalancer(ctx context.Context, spec LoadBalancerSpec) (*hcloud.LoadBalancer, error) {
	if m.CreateLoadBalancerFunc != nil {
		return m.CreateLoadBalancerFunc(ctx, spec)
	}
	return &hcloud.LoadBalancer{ID: 1, Name: spec.Name, Labels: spec.Labels}, nil
}

// AddTCPService mocks service creation.
func (m *MockClient) AddTCPService(ctx context.Context, lb *hcloud.LoadBalancer, listenPort, destinationPort int) error {
	if m.AddTCPServiceFunc != nil {
		return m.AddTCPServiceFunc(ctx, lb, listenPort, destinationPort)
	}
	return nil
}

// AddLabelSelectorTarget mocks target creation.
func (m *MockClient) AddLabelSelectorTarget(ctx context.Context, lb *hcloud.LoadBalancer, selector string) error {
	if m.AddLabelSelectorTargetFunc != nil {
		return m.AddLabelSelectorTargetFunc(ctx, lb, selector)
	}
	return nil
}

// ListSnapshots mocks snapshot listing.
func (m *MockClient) ListSnapshots(ctx context.Context, selector string) ([]*hcloud.Image, error) {
	if m.ListSnapshotsFunc != nil {
		return m.ListSnapshotsFunc(ctx, selector)
	}
	return nil, nil
}
