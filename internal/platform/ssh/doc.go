// Package ssh runs shell commands on a remote machine.
//
// It is the transport of the bare-metal installer: the target boots the
// Hetzner rescue system, and every install step is one command executed
// over a single reused connection. Host keys are checked against a
// known_hosts file unless explicitly disabled.
package ssh
