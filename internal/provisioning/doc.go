// Package provisioning provides the run context, phase pipeline and
// observability shared by all talhybrid commands.
//
// # Subpackages
//
//   - infrastructure/ — idempotent reconciliation of vSwitch, network, load balancer and image
//   - machineconfig/ — template rendering, patch assembly and talosctl generation
//   - install/ — bare-metal Talos install that produces discovery records
//
// # Core Types
//
// Context carries the descriptor store, paths, observer, metrics and timeouts.
// Phase defines a provisioning step with Name() and Provision() methods.
package provisioning
