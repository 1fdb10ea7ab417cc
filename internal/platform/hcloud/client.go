package hcloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// SubnetSpec describes a subnet to add to a network.
type SubnetSpec struct {
	Type      hcloud.NetworkSubnetType
	IPRange   string
	Zone      string
	VSwitchID int64 // only for NetworkSubnetTypeVSwitch
}

// LoadBalancerSpec holds the parameters for creating a load balancer.
type LoadBalancerSpec struct {
	Name   string
	Type   string
	Zone   string
	Labels map[string]string
}

// NetworkManager defines the interface for managing networks.
type NetworkManager interface {
	ListNetworks(ctx context.Context, selector string) ([]*hcloud.Network, error)
	CreateNetwork(ctx context.Context, name, ipRange string, labels map[string]string) (*hcloud.Network, error)
	AddSubnet(ctx context.Context, network *hcloud.Network, subnet SubnetSpec) error
	ExposeRoutesToVSwitch(ctx context.Context, network *hcloud.Network) error
}

// LoadBalancerManager defines the interface for managing load balancers.
type LoadBalancerManager interface {
	ListLoadBalancers(ctx context.Context, selector string) ([]*hcloud.LoadBalancer, error)
	CreateLoadBalancer(ctx context.Context, spec LoadBalancerSpec) (*hcloud.LoadBalancer, error)
	AddTCPService(ctx context.Context, lb *hcloud.LoadBalancer, listenPort, destinationPort int) error
	AddLabelSelectorTarget(ctx context.Context, lb *hcloud.LoadBalancer, selector string) error
}

// SnapshotManager defines the interface for looking up snapshots.
type SnapshotManager interface {
	ListSnapshots(ctx context.Context, selector string) ([]*hcloud.Image, error)
}

// InfrastructureManager combines all infrastructure interfaces.
type InfrastructureManager interface {
	NetworkManager
	LoadBalancerManager
	SnapshotManager
}
