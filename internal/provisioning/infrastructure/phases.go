package infrastructure

import (
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	hcloudplatform "github.com/imamik/talhybrid/internal/platform/hcloud"
	"github.com/imamik/talhybrid/internal/platform/robot"
	"github.com/imamik/talhybrid/internal/provisioning"
)

// VSwitchPhase reconciles the Robot vSwitch.
type VSwitchPhase struct {
	Client robot.VSwitchManager
}

func (p *VSwitchPhase) Name() string { return "vswitch" }

func (p *VSwitchPhase) Provision(ctx *provisioning.Context) error {
	r, err := NewVSwitchResource(p.Client, ctx.Descriptor())
	if err != nil {
		return err
	}
	_, err = Reconcile[robot.VSwitch](ctx, r)
	return err
}

// NetworkPhase reconciles the cloud network and its subnets.
type NetworkPhase struct {
	Client hcloudplatform.NetworkManager
}

func (p *NetworkPhase) Name() string { return "network" }

func (p *NetworkPhase) Provision(ctx *provisioning.Context) error {
	r, err := NewNetworkResource(p.Client, ctx.Descriptor())
	if err != nil {
		return err
	}
	_, err = Reconcile[*hcloud.Network](ctx, r)
	return err
}

// LoadBalancerPhase reconciles the control plane load balancers.
type LoadBalancerPhase struct {
	Client hcloudplatform.LoadBalancerManager
}

func (p *LoadBalancerPhase) Name() string { return "load balancer" }

func (p *LoadBalancerPhase) Provision(ctx *provisioning.Context) error {
	r, err := NewLoadBalancerResource(p.Client, ctx.Descriptor())
	if err != nil {
		return err
	}
	_, err = Reconcile[*hcloud.LoadBalancer](ctx, r)
	return err
}

// ImagePhase reconciles the Talos snapshot.
type ImagePhase struct {
	Client   hcloudplatform.SnapshotManager
	Uploader *ImageUploader
	Factory  FactoryURLs
}

func (p *ImagePhase) Name() string { return "image" }

func (p *ImagePhase) Provision(ctx *provisioning.Context) error {
	r, err := NewImageResource(p.Client, p.Uploader, p.Factory, ctx.Descriptor())
	if err != nil {
		return err
	}
	_, err = Reconcile[*hcloud.Image](ctx, r)
	return err
}

// Phases returns the networking phases in dependency order: the network
// needs the vSwitch ID, and the load balancer attaches to the network zone.
func Phases(cloud hcloudplatform.InfrastructureManager, vswitches robot.VSwitchManager) []provisioning.Phase {
	return []provisioning.Phase{
		&VSwitchPhase{Client: vswitches},
		&NetworkPhase{Client: cloud},
		&LoadBalancerPhase{Client: cloud},
	}
}
