package infrastructure

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/talhybrid/internal/config"
	hcloudplatform "github.com/imamik/talhybrid/internal/platform/hcloud"
	"github.com/imamik/talhybrid/internal/util/labels"
	"github.com/imamik/talhybrid/internal/util/naming"
)

// NetworkResource reconciles the Hetzner Cloud network spanning the
// private node range. A new network gets the vSwitch subnet for the
// bare-metal workers, the server subnet for cloud nodes, and its routes
// exposed to the vSwitch, in that order.
type NetworkResource struct {
	client     hcloudplatform.NetworkManager
	cluster    string
	zone       string
	networking config.Networking
	vswitchID  int64
}

// NewNetworkResource validates the descriptor inputs for the network kind.
// The vSwitch must have been reconciled first.
func NewNetworkResource(client hcloudplatform.NetworkManager, d *config.Descriptor) (*NetworkResource, error) {
	if d.Hetzner.VSwitchID == 0 {
		return nil, fmt.Errorf("%w: network needs %s (run vswitch first)", ErrMissingDependency, config.FieldVSwitchID)
	}
	return &NetworkResource{
		client:     client,
		cluster:    d.Cluster.Name,
		zone:       d.Hetzner.Zone,
		networking: d.Cluster.Networking,
		vswitchID:  d.Hetzner.VSwitchID,
	}, nil
}

func (r *NetworkResource) Kind() string     { return "network" }
func (r *NetworkResource) Desired() int     { return 1 }
func (r *NetworkResource) Field() string    { return config.FieldNetworkID }
func (r *NetworkResource) Selector() string { return labels.SelectorForCluster(r.cluster) }

func (r *NetworkResource) List(ctx context.Context) ([]*hcloud.Network, error) {
	return r.client.ListNetworks(ctx, r.Selector())
}

func (r *NetworkResource) Create(ctx context.Context, _ int) (*hcloud.Network, error) {
	return r.client.CreateNetwork(ctx, naming.Network(r.cluster), r.networking.PrivateNodeCIDR, labels.NewLabelBuilder(r.cluster).Build())
}

// Attach adds both subnets and exposes routes.
func (r *NetworkResource) Attach(ctx context.Context, network *hcloud.Network) error {
	if err := r.client.AddSubnet(ctx, network, hcloudplatform.SubnetSpec{
		Type:      hcloud.NetworkSubnetTypeVSwitch,
		IPRange:   r.networking.SubnetMetal,
		Zone:      r.zone,
		VSwitchID: r.vswitchID,
	}); err != nil {
		return err
	}
	if err := r.client.AddSubnet(ctx, network, hcloudplatform.SubnetSpec{
		Type:    hcloud.NetworkSubnetTypeServer,
		IPRange: r.networking.SubnetVirtual,
		Zone:    r.zone,
	}); err != nil {
		return err
	}
	return r.client.ExposeRoutesToVSwitch(ctx, network)
}

func (r *NetworkResource) Describe(n *hcloud.Network) Record {
	return Record{ID: n.ID, Name: n.Name, Value: n.ID}
}
