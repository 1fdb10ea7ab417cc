// Package labels provides consistent labeling for Hetzner Cloud resources.
//
// All labels use the talhybrid/ prefix and follow a builder pattern for
// constructing label sets with cluster name, role and image identification.
// Selectors built here are what the reconcilers use to find resources they
// created on an earlier run.
package labels
