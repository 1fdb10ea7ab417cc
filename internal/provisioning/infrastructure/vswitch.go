package infrastructure

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/platform/robot"
	"github.com/imamik/talhybrid/internal/provisioning"
	"github.com/imamik/talhybrid/internal/util/naming"
)

// VSwitchResource reconciles the Robot vSwitch carrying the worker VLAN.
// Robot has no labels: a vSwitch matches when its name equals the cluster
// name, its VLAN equals the configured tag and it is not cancelled.
type VSwitchResource struct {
	client robot.VSwitchManager
	name   string
	vlan   int
}

// NewVSwitchResource validates the descriptor inputs for the vSwitch kind.
func NewVSwitchResource(client robot.VSwitchManager, d *config.Descriptor) (*VSwitchResource, error) {
	if d.Hetzner.VLANTag == 0 {
		return nil, fmt.Errorf("%w: vswitch needs robot-vlan-tag", ErrMissingDependency)
	}
	return &VSwitchResource{client: client, name: naming.VSwitch(d.Cluster.Name), vlan: d.Hetzner.VLANTag}, nil
}

func (r *VSwitchResource) Kind() string     { return "vswitch" }
func (r *VSwitchResource) Desired() int     { return 1 }
func (r *VSwitchResource) Field() string    { return config.FieldVSwitchID }
func (r *VSwitchResource) Selector() string { return fmt.Sprintf("name=%s,vlan=%d", r.name, r.vlan) }

func (r *VSwitchResource) List(ctx context.Context) ([]robot.VSwitch, error) {
	all, err := r.client.ListVSwitches(ctx)
	if err != nil {
		return nil, err
	}
	var matches []robot.VSwitch
	for _, vs := range all {
		if vs.Name == r.name && vs.VLAN == r.vlan && !vs.Cancelled {
			matches = append(matches, vs)
		}
	}
	return matches, nil
}

func (r *VSwitchResource) Create(ctx context.Context, _ int) (robot.VSwitch, error) {
	vs, err := r.client.CreateVSwitch(ctx, r.name, r.vlan)
	if err != nil {
		return robot.VSwitch{}, err
	}
	return *vs, nil
}

func (r *VSwitchResource) Describe(vs robot.VSwitch) Record {
	return Record{ID: vs.ID, Name: vs.Name, Value: vs.ID}
}

// VSwitchMembersPhase attaches dedicated servers, by main IP, to the
// vSwitch stored in robot-vswitch-id. Servers already attached are left
// alone and nothing is ever detached.
type VSwitchMembersPhase struct {
	Client  robot.MemberManager
	Servers []string
}

func (p *VSwitchMembersPhase) Name() string { return "vswitch members" }

func (p *VSwitchMembersPhase) Provision(ctx *provisioning.Context) error {
	const kind = "vswitch-server"

	id := ctx.Descriptor().Hetzner.VSwitchID
	if id == 0 {
		return fmt.Errorf("%w: attaching servers needs robot-vswitch-id", ErrMissingDependency)
	}

	vs, err := p.Client.GetVSwitch(ctx, id)
	if err != nil {
		ctx.Metrics.RecordReconcile(kind, provisioning.OutcomeFailed)
		return failure(ErrResourceLookupFailure, fmt.Sprintf("%s %d", kind, id), err)
	}

	attached := make(map[string]bool, len(vs.Servers))
	for _, s := range vs.Servers {
		attached[s.ServerIP] = true
	}

	var missing []string
	for _, server := range p.Servers {
		if attached[server] {
			provisioning.LogResourceExists(ctx.Observer, p.Name(), kind, server, strconv.FormatInt(id, 10))
			ctx.Metrics.RecordReconcile(kind, provisioning.OutcomeFound)
			continue
		}
		missing = append(missing, server)
	}
	if len(missing) == 0 {
		return nil
	}

	provisioning.LogResourceCreating(ctx.Observer, p.Name(), kind, strings.Join(missing, ", "))
	if err := p.Client.AddServers(ctx, id, missing...); err != nil {
		provisioning.LogResourceFailed(ctx.Observer, p.Name(), kind, strings.Join(missing, ", "), err)
		ctx.Metrics.RecordReconcile(kind, provisioning.OutcomeFailed)
		return failure(ErrResourceCreateFailure, fmt.Sprintf("%s %s", kind, strings.Join(missing, ", ")), err)
	}
	for _, server := range missing {
		provisioning.LogResourceCreated(ctx.Observer, p.Name(), kind, server, strconv.FormatInt(id, 10))
		ctx.Metrics.RecordReconcile(kind, provisioning.OutcomeCreated)
	}
	return nil
}
