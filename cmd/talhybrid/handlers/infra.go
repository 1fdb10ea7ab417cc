package handlers

import (
	"context"

	"github.com/imamik/talhybrid/internal/nodeindex"
	"github.com/imamik/talhybrid/internal/platform/talos"
	"github.com/imamik/talhybrid/internal/provisioning"
	"github.com/imamik/talhybrid/internal/provisioning/infrastructure"
	"github.com/imamik/talhybrid/internal/util/prerequisites"
)

// VSwitch reconciles the Robot vSwitch and persists its ID. With attach,
// every server in the node index is attached to it afterwards.
func VSwitch(ctx context.Context, opts Options, attach bool) error {
	pctx, err := newRunContext(ctx, opts)
	if err != nil {
		return err
	}
	client, err := vswitchClient(pctx)
	if err != nil {
		return err
	}

	phases := []provisioning.Phase{&infrastructure.VSwitchPhase{Client: client}}
	if attach {
		servers, err := indexedServers(pctx)
		if err != nil {
			return err
		}
		phases = append(phases, &infrastructure.VSwitchMembersPhase{Client: client, Servers: servers})
	}
	return runPhases(pctx, opts, phases)
}

// indexedServers returns the node index addresses in ordinal order.
func indexedServers(pctx *provisioning.Context) ([]string, error) {
	registry, err := nodeindex.Load(pctx.Paths.Config.NodesIndexFile())
	if err != nil {
		return nil, err
	}
	servers := make([]string, 0, registry.Len())
	for _, ordinal := range registry.Ordinals() {
		addr, err := registry.AddressOf(ordinal)
		if err != nil {
			return nil, err
		}
		servers = append(servers, addr)
	}
	return servers, nil
}

// Network reconciles the cloud network, its subnets and the vSwitch
// route exposure.
func Network(ctx context.Context, opts Options) error {
	pctx, err := newRunContext(ctx, opts)
	if err != nil {
		return err
	}
	client, err := cloudClient(pctx)
	if err != nil {
		return err
	}
	return runPhases(pctx, opts, []provisioning.Phase{&infrastructure.NetworkPhase{Client: client}})
}

// LoadBalancer reconciles the control plane load balancers.
func LoadBalancer(ctx context.Context, opts Options) error {
	pctx, err := newRunContext(ctx, opts)
	if err != nil {
		return err
	}
	client, err := cloudClient(pctx)
	if err != nil {
		return err
	}
	return runPhases(pctx, opts, []provisioning.Phase{&infrastructure.LoadBalancerPhase{Client: client}})
}

// Infra reconciles vSwitch, network and load balancer in dependency order.
// Each step sees the identifiers persisted by the previous one.
func Infra(ctx context.Context, opts Options) error {
	pctx, err := newRunContext(ctx, opts)
	if err != nil {
		return err
	}
	cloud, err := cloudClient(pctx)
	if err != nil {
		return err
	}
	vswitches, err := vswitchClient(pctx)
	if err != nil {
		return err
	}
	return runPhases(pctx, opts, infrastructure.Phases(cloud, vswitches))
}

// Image uploads the Talos snapshot for the descriptor's schematic and
// version unless one with the same label already exists.
func Image(ctx context.Context, opts Options) error {
	if err := requireTools(prerequisites.Docker); err != nil {
		return err
	}

	pctx, err := newRunContext(ctx, opts)
	if err != nil {
		return err
	}
	client, err := cloudClient(pctx)
	if err != nil {
		return err
	}

	phase := &infrastructure.ImagePhase{
		Client: client,
		Uploader: &infrastructure.ImageUploader{
			Runner: newToolRunner(),
			Token:  pctx.Credentials.HCloudToken,
		},
		Factory: newFactoryClient(),
	}
	return runPhases(pctx, opts, []provisioning.Phase{phase})
}

// newToolRunner runs external tools; replaced in tests.
var newToolRunner = func() talos.EnvRunner {
	return talos.ExecRunner{}
}
