package labels

import (
	"sort"
	"strings"
)

// Standard label keys for Hetzner Cloud resources.
const (
	// KeyCluster identifies which cluster a resource belongs to
	KeyCluster = "talhybrid/cluster"

	// KeyRole identifies the role a resource serves (controlplane)
	KeyRole = "talhybrid/role"

	// KeyImage identifies a Talos snapshot by schematic hash and version
	KeyImage = "talhybrid/image"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "talhybrid/managed-by"

	// KeyServerType is set on control plane servers; the load balancer
	// targets them by this label.
	KeyServerType = "type"
)

// Role values
const (
	RoleControlPlane = "controlplane"
	RoleWorker       = "worker"
)

// ManagedByTalhybrid is the value of KeyManagedBy.
const ManagedByTalhybrid = "talhybrid"

// LabelBuilder provides a fluent interface for building Hetzner Cloud resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the cluster name pre-set.
func NewLabelBuilder(clusterName string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyCluster:   clusterName,
			KeyManagedBy: ManagedByTalhybrid,
		},
	}
}

// NewImageLabelBuilder creates a builder for snapshots, which are shared
// between clusters and therefore carry no cluster label.
func NewImageLabelBuilder(image string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyImage:     image,
			KeyManagedBy: ManagedByTalhybrid,
		},
	}
}

// WithRole adds a role label.
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	lb.labels[KeyRole] = role
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// Selector renders labels as a Hetzner label selector. Keys are sorted so
// the result is stable.
func Selector(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ",")
}

// SelectorForCluster returns a label selector string for all resources in a cluster.
func SelectorForCluster(clusterName string) string {
	return KeyCluster + "=" + clusterName
}

// SelectorForRole narrows SelectorForCluster to one role.
func SelectorForRole(clusterName, role string) string {
	return SelectorForCluster(clusterName) + "," + KeyRole + "=" + role
}

// SelectorForImage matches snapshots carrying the given image label value.
func SelectorForImage(image string) string {
	return KeyImage + "=" + image
}

// TargetSelector selects the servers a role's load balancer forwards to.
func TargetSelector(role string) string {
	return KeyServerType + "=" + role
}
