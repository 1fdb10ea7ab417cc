// Package discovery turns per-node discovery records into typed node
// contexts for rendering.
//
// Discovery records are written by the bare-metal install procedure, one
// file per node named after its public address. The [Ingester] resolves
// each record's ordinal through the node index, derives addressing facts
// and merges both with the cluster descriptor into a [NodeContext].
package discovery
