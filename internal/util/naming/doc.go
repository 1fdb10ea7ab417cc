// Package naming provides consistent names for cluster resources.
//
// Cloud and Robot resources are named after the cluster so a re-run finds
// what an earlier run created: the network and the vSwitch carry the bare
// cluster name, control plane load balancers {cluster}-controlplane and
// bare-metal nodes {cluster}-{ordinal}.
package naming
