// Package infrastructure reconciles the cloud networking a hybrid cluster
// needs: the Robot vSwitch, the Hetzner Cloud network bridging it, the
// control plane load balancer and the Talos snapshot.
//
// Every kind goes through the same engine. Resources are found by label
// (or by name and VLAN for Robot), created only when fewer than desired
// exist, wired up immediately after creation, and the identifier of the
// lowest-ID match is written back into the cluster descriptor. A second
// run against unchanged cloud state creates nothing.
package infrastructure
