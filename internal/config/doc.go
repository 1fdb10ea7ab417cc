// Package config defines the cluster descriptor model and the ambient
// configuration of a talhybrid run.
//
// The [Descriptor] is the single authoritative description of a cluster:
// name, API endpoint, networking CIDRs, Talos version pins and the Hetzner
// identifiers that are filled in as provisioning progresses. It is read
// from cluster_config.yaml, validated, and reloaded after every field
// update performed by the descriptor package.
//
// The package also resolves on-disk [Paths], API [Credentials] and
// environment driven [Timeouts].
package config
