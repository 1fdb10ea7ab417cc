package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/imamik/talhybrid/internal/addressing"
	"github.com/imamik/talhybrid/internal/util/naming"
)

// OrdinalResolver maps a public address to its node ordinal.
type OrdinalResolver interface {
	OrdinalOf(address string) (int, error)
}

// Warner receives non-fatal problems, such as skipped records.
type Warner interface {
	Warnf(format string, v ...any)
}

// Summary is the operator-facing description of an ingested node.
type Summary struct {
	Ordinal    int
	Name       string
	PublicIP   string
	PrivateIP  string
	ConfigFile string // generated machine config, e.g. w3.yaml
	PatchFile  string // rendered node override, e.g. w3.patch.yaml
}

// Node is one accepted discovery record.
type Node struct {
	Context NodeContext
	Summary Summary
}

// Ingester reads discovery records and builds node contexts.
type Ingester struct {
	Dir      string
	Registry OrdinalResolver
	Planner  *addressing.Planner
	Cluster  ClusterContext
	Log      Warner
}

// Ingest processes every record in Dir in lexical file name order.
//
// Records that cannot be read are skipped with a warning. Symlinks are
// followed; entries that are not regular files are skipped with a warning. Once a record is
// accepted, any failure (unknown address, address space exhausted, invalid
// context) aborts the whole batch.
func (i *Ingester) Ingest() ([]Node, error) {
	entries, err := os.ReadDir(i.Dir)
	if errors.Is(err, os.ErrNotExist) {
		i.warnf("discovery directory %s does not exist, no worker nodes", i.Dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list discovery records: %w", err)
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].Name() < entries[b].Name() })

	var nodes []Node
	seen := map[int]string{}
	for _, entry := range entries {
		path := filepath.Join(i.Dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			i.warnf("skipping %s: %v", entry.Name(), err)
			continue
		}
		if !info.Mode().IsRegular() {
			i.warnf("skipping %s: not a regular file", entry.Name())
			continue
		}
		ip, ok := addressFromFilename(entry.Name())
		if !ok {
			i.warnf("skipping %s: file name is not an IPv4 address", entry.Name())
			continue
		}

		record, err := LoadRecord(path)
		if err != nil {
			i.warnf("skipping %s: %v", entry.Name(), err)
			continue
		}

		node, err := i.accept(ip, record)
		if err != nil {
			return nil, fmt.Errorf("discovery record %s: %w", entry.Name(), err)
		}
		if prev, dup := seen[node.Summary.Ordinal]; dup {
			return nil, fmt.Errorf("discovery records %s and %s resolve to the same node %d",
				prev, entry.Name(), node.Summary.Ordinal)
		}
		seen[node.Summary.Ordinal] = entry.Name()
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (i *Ingester) accept(ip string, record *Record) (Node, error) {
	ordinal, err := i.Registry.OrdinalOf(ip)
	if err != nil {
		return Node{}, err
	}

	facts, err := i.Planner.Derive(ip, ordinal)
	if err != nil {
		return Node{}, err
	}

	ctx := NodeContext{
		Cluster: i.Cluster,
		Node: NodeFacts{
			Facts:         facts,
			PrimaryDiskID: record.PrimaryDiskID,
			SecondaryDisk: record.SecondaryDisk,
		},
	}
	if err := ctx.Validate(); err != nil {
		return Node{}, err
	}

	return Node{
		Context: ctx,
		Summary: Summary{
			Ordinal:    ordinal,
			Name:       facts.NodeName,
			PublicIP:   facts.PublicIP.String(),
			PrivateIP:  facts.PrivateIP.String(),
			ConfigFile: naming.WorkerConfig(ordinal),
			PatchFile:  naming.WorkerPatch(ordinal),
		},
	}, nil
}

func (i *Ingester) warnf(format string, v ...any) {
	if i.Log != nil {
		i.Log.Warnf(format, v...)
	}
}
