package config

// Descriptor is the parsed form of cluster_config.yaml.
type Descriptor struct {
	Cluster Cluster `yaml:"cluster"`
	Talos   Talos   `yaml:"talos"`
	Hetzner Hetzner `yaml:"hetzner"`
}

// Cluster holds cluster-wide identity and networking.
type Cluster struct {
	Name              string     `yaml:"name"`
	Endpoint          string     `yaml:"endpoint"`
	KubernetesVersion string     `yaml:"kubernetes-version,omitempty"`
	Networking        Networking `yaml:"networking"`
}

// Networking holds the private address plan of the cluster.
type Networking struct {
	// PrivateNodeCIDR is the range of the Hetzner Cloud network.
	PrivateNodeCIDR string `yaml:"private-node-cidr"`
	// SubnetVirtual is the server subnet used by cloud control plane nodes.
	SubnetVirtual string `yaml:"subnet-virtual"`
	// SubnetMetal is the vSwitch subnet used by bare-metal workers.
	SubnetMetal string `yaml:"subnet-metal"`
}

// Talos pins the OS version and the image factory schematic.
type Talos struct {
	Version     string `yaml:"version"`
	SchematicID string `yaml:"schematicId,omitempty"`
}

// Hetzner holds provider settings. Identifier fields stay zero until the
// matching reconcile step has persisted them.
type Hetzner struct {
	Zone              string `yaml:"hcloud-zone"`
	NetworkID         int64  `yaml:"hcloud-network-id,omitempty"`
	ImageID           int64  `yaml:"hcloud-image-id,omitempty"`
	VSwitchID         int64  `yaml:"robot-vswitch-id,omitempty"`
	VLANTag           int    `yaml:"robot-vlan-tag,omitempty"`
	LoadBalancerIP    string `yaml:"cp-lb-ip,omitempty"`
	LoadBalancerType  string `yaml:"cp-lb-type,omitempty"`
	LoadBalancerCount int    `yaml:"cp-lb-count,omitempty"`
	ServerType        string `yaml:"cp-server-type,omitempty"`
	Datacenter        string `yaml:"cp-datacenter,omitempty"`
}

// Descriptor field keys written back by provisioning steps.
const (
	FieldClusterName    = "name"
	FieldEndpoint       = "endpoint"
	FieldZone           = "hcloud-zone"
	FieldSchematicID    = "schematicId"
	FieldNetworkID      = "hcloud-network-id"
	FieldImageID        = "hcloud-image-id"
	FieldVSwitchID      = "robot-vswitch-id"
	FieldLoadBalancerIP = "cp-lb-ip"
)
