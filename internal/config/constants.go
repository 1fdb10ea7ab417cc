package config

// Defaults applied when the descriptor leaves a field empty.
const (
	DefaultKubernetesVersion = "1.32.4"
	DefaultLoadBalancerType  = "lb11"
	DefaultLoadBalancerCount = 1
	DefaultZone              = "eu-central"
)

// ControlPlanePort is the Kubernetes API port exposed by the control plane
// load balancer.
const ControlPlanePort = 6443

// Robot vSwitch VLAN IDs must fall inside this range.
const (
	MinVLANTag = 4000
	MaxVLANTag = 4091
)

// TemplateSuffix marks files rendered by the template engine.
const TemplateSuffix = ".tmpl"
