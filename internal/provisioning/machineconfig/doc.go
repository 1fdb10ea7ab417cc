// Package machineconfig renders the patch tree and drives talosctl to
// produce the control plane, talosconfig and per-worker machine configs.
//
// Phases share state through a Pipeline and must run in the order
// returned by Pipeline.Phases.
package machineconfig
