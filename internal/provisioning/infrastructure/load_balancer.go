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

// LoadBalancerResource reconciles the control plane load balancers. New
// ones forward the Kubernetes API port to every server labeled as control
// plane. The persisted value is the public IPv4 of the lowest-ID match.
type LoadBalancerResource struct {
	client  hcloudplatform.LoadBalancerManager
	cluster string
	zone    string
	lbType  string
	count   int

	// names of the balancers seen by the last List, plus those created since
	taken map[string]bool
}

// NewLoadBalancerResource reads the load balancer settings from d.
func NewLoadBalancerResource(client hcloudplatform.LoadBalancerManager, d *config.Descriptor) (*LoadBalancerResource, error) {
	if d.Hetzner.Zone == "" {
		return nil, fmt.Errorf("%w: load balancer needs %s", ErrMissingDependency, config.FieldZone)
	}
	lbType := d.Hetzner.LoadBalancerType
	if lbType == "" {
		lbType = config.DefaultLoadBalancerType
	}
	count := d.Hetzner.LoadBalancerCount
	if count < 1 {
		count = config.DefaultLoadBalancerCount
	}
	return &LoadBalancerResource{
		client:  client,
		cluster: d.Cluster.Name,
		zone:    d.Hetzner.Zone,
		lbType:  lbType,
		count:   count,
	}, nil
}

func (r *LoadBalancerResource) Kind() string  { return "load_balancer" }
func (r *LoadBalancerResource) Desired() int  { return r.count }
func (r *LoadBalancerResource) Field() string { return config.FieldLoadBalancerIP }
func (r *LoadBalancerResource) Selector() string {
	return labels.SelectorForRole(r.cluster, labels.RoleControlPlane)
}

func (r *LoadBalancerResource) List(ctx context.Context) ([]*hcloud.LoadBalancer, error) {
	lbs, err := r.client.ListLoadBalancers(ctx, r.Selector())
	if err != nil {
		return nil, err
	}
	r.taken = make(map[string]bool, len(lbs))
	for _, lb := range lbs {
		r.taken[lb.Name] = true
	}
	return lbs, nil
}

// Create names the new balancer after the lowest index whose name is not
// in use, so a gap left by a deleted balancer is filled first.
func (r *LoadBalancerResource) Create(ctx context.Context, _ int) (*hcloud.LoadBalancer, error) {
	name := r.freeName()
	lb, err := r.client.CreateLoadBalancer(ctx, hcloudplatform.LoadBalancerSpec{
		Name:   name,
		Type:   r.lbType,
		Zone:   r.zone,
		Labels: labels.NewLabelBuilder(r.cluster).WithRole(labels.RoleControlPlane).Build(),
	})
	if err != nil {
		return nil, err
	}
	if r.taken == nil {
		r.taken = map[string]bool{}
	}
	r.taken[name] = true
	return lb, nil
}

func (r *LoadBalancerResource) freeName() string {
	last := r.count + len(r.taken)
	for i := 1; i < last; i++ {
		if name := r.name(i); !r.taken[name] {
			return name
		}
	}
	return r.name(last)
}

// Attach adds the API service and the control plane target.
func (r *LoadBalancerResource) Attach(ctx context.Context, lb *hcloud.LoadBalancer) error {
	if err := r.client.AddTCPService(ctx, lb, config.ControlPlanePort, config.ControlPlanePort); err != nil {
		return err
	}
	return r.client.AddLabelSelectorTarget(ctx, lb, labels.TargetSelector(labels.RoleControlPlane))
}

func (r *LoadBalancerResource) Describe(lb *hcloud.LoadBalancer) Record {
	rec := Record{ID: lb.ID, Name: lb.Name}
	if ip := lb.PublicNet.IPv4.IP; ip != nil && !ip.IsUnspecified() {
		rec.Value = ip.String()
	}
	return rec
}

// name is <cluster>-controlplane for a single balancer and
// <cluster>-controlplane-<i> otherwise.
func (r *LoadBalancerResource) name(index int) string {
	return naming.ControlPlaneLoadBalancer(r.cluster, index, r.count)
}
