// Package hcloud provides a thin wrapper around the Hetzner Cloud API client
// covering the resources talhybrid reconciles: networks with server and
// vSwitch subnets, control plane load balancers and Talos snapshots.
//
// Every create call waits for the resulting actions, bounded by the action
// timeout from config.Timeouts. Lookups are by label selector only; the
// callers decide what a match means. Nothing here retries.
//
// MockClient implements InfrastructureManager with overridable function
// fields for use in tests of higher-level packages.
package hcloud
