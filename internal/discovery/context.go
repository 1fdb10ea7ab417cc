package discovery

import (
	"fmt"

	"github.com/imamik/talhybrid/internal/addressing"
	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/render"
)

// ClusterContext is the descriptor view exposed to templates.
type ClusterContext struct {
	Name              string
	Endpoint          string
	KubernetesVersion string
	Networking        config.Networking
	TalosVersion      string
	SchematicID       string
	Zone              string
	NetworkID         int64
	ImageID           int64
	VSwitchID         int64
	VLANTag           int
	LoadBalancerIP    string
}

// NewClusterContext copies the template-visible fields of d.
func NewClusterContext(d *config.Descriptor) ClusterContext {
	return ClusterContext{
		Name:              d.Cluster.Name,
		Endpoint:          d.Cluster.Endpoint,
		KubernetesVersion: d.Cluster.KubernetesVersion,
		Networking:        d.Cluster.Networking,
		TalosVersion:      d.Talos.Version,
		SchematicID:       d.Talos.SchematicID,
		Zone:              d.Hetzner.Zone,
		NetworkID:         d.Hetzner.NetworkID,
		ImageID:           d.Hetzner.ImageID,
		VSwitchID:         d.Hetzner.VSwitchID,
		VLANTag:           d.Hetzner.VLANTag,
		LoadBalancerIP:    d.Hetzner.LoadBalancerIP,
	}
}

// Validate checks the fields every template may rely on.
func (c ClusterContext) Validate() error {
	if c.Name == "" || c.Endpoint == "" {
		return fmt.Errorf("cluster context requires name and endpoint")
	}
	if c.Networking.SubnetMetal == "" || c.Networking.SubnetVirtual == "" || c.Networking.PrivateNodeCIDR == "" {
		return fmt.Errorf("cluster context requires the networking block")
	}
	return nil
}

// Values returns the cluster namespace. Unset optional fields are left out
// so that templates referencing them fail.
func (c ClusterContext) Values() render.Values {
	networking := map[string]any{
		"private_node_cidr": c.Networking.PrivateNodeCIDR,
		"subnet_virtual":    c.Networking.SubnetVirtual,
		"subnet_metal":      c.Networking.SubnetMetal,
	}
	cluster := map[string]any{
		"name":               c.Name,
		"endpoint":           c.Endpoint,
		"kubernetes_version": c.KubernetesVersion,
		"networking":         networking,
	}

	talos := map[string]any{"version": c.TalosVersion}
	putString(talos, "schematic_id", c.SchematicID)

	hetzner := map[string]any{"zone": c.Zone}
	putInt(hetzner, "network_id", c.NetworkID)
	putInt(hetzner, "image_id", c.ImageID)
	putInt(hetzner, "vswitch_id", c.VSwitchID)
	putInt(hetzner, "vlan_tag", int64(c.VLANTag))
	putString(hetzner, "lb_ip", c.LoadBalancerIP)

	return render.Values{
		"cluster": cluster,
		"talos":   talos,
		"hetzner": hetzner,
	}
}

// NodeFacts are the per-node facts merged into the template namespace.
type NodeFacts struct {
	addressing.Facts
	PrimaryDiskID string
	SecondaryDisk string
}

// NodeContext is the merged per-node rendering input. It is never persisted.
type NodeContext struct {
	Cluster ClusterContext
	Node    NodeFacts
}

// Validate checks the merged context before it reaches the renderer.
func (n NodeContext) Validate() error {
	if err := n.Cluster.Validate(); err != nil {
		return err
	}
	f := n.Node
	if f.Ordinal < 1 || f.NodeName == "" {
		return fmt.Errorf("node context requires an ordinal and a name")
	}
	if !f.PublicIP.IsValid() || !f.PrivateIP.IsValid() || !f.Gateway.IsValid() || !f.PublicNetwork.IsValid() {
		return fmt.Errorf("node %s: incomplete addressing facts", f.NodeName)
	}
	return nil
}

// Values returns the cluster namespace plus the node block.
func (n NodeContext) Values() render.Values {
	v := n.Cluster.Values()

	node := map[string]any{
		"ordinal":        n.Node.Ordinal,
		"name":           n.Node.NodeName,
		"public_ip":      n.Node.PublicIP.String(),
		"private_ip":     n.Node.PrivateIP.String(),
		"public_network": n.Node.PublicNetwork.String(),
		"gateway":        n.Node.Gateway.String(),
	}
	putString(node, "primary_disk_id", n.Node.PrimaryDiskID)
	putString(node, "secondary_disk", n.Node.SecondaryDisk)

	v["node"] = node
	return v
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func putInt(m map[string]any, key string, value int64) {
	if value != 0 {
		m[key] = value
	}
}
