package infrastructure

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/descriptor"
	"github.com/imamik/talhybrid/internal/provisioning"
)

const testDescriptor = `cluster:
  name: demo
  endpoint: https://10.12.1.10:6443
  networking:
    private-node-cidr: 10.12.0.0/16
    subnet-virtual: 10.12.1.0/24
    subnet-metal: 10.12.2.0/24
talos:
  version: v1.10.3
  schematicId: 376567988ad370138ad8b2698212367b8edcb69b5fd68c80be1f2ec7d603b4ba
hetzner:
  hcloud-zone: eu-central
  hcloud-network-id: null    # set after 'net'
  hcloud-image-id: null      # set after 'image'
  robot-vswitch-id: 71234
  robot-vlan-tag: 4000
  cp-lb-ip: null             # set after 'lb'
  cp-lb-type: lb11
  cp-lb-count: 1
`

type testEnv struct {
	ctx    *provisioning.Context
	out    *bytes.Buffer
	path   string
	config *config.Descriptor
}

func newTestEnv(t *testing.T, content string) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cluster_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := descriptor.Open(path)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	ctx := &provisioning.Context{
		Context:     context.Background(),
		Store:       store,
		Credentials: &config.Credentials{},
		Observer:    provisioning.NewWriterObserver(out, false),
		Metrics:     provisioning.NewMetrics(),
	}
	return &testEnv{ctx: ctx, out: out, path: path, config: store.Descriptor()}
}

func (e *testEnv) file(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.path)
	require.NoError(t, err)
	return string(data)
}

// counterValue reads the counter of family name whose labels include all
// of want from g; absent series read as zero.
func counterValue(t *testing.T, g prometheus.Gatherer, name string, want map[string]string) float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched == len(want) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func reconciled(t *testing.T, env *testEnv, kind, outcome string) float64 {
	t.Helper()
	return counterValue(t, env.ctx.Metrics, "talhybrid_reconciler_resources_total",
		map[string]string{"kind": kind, "outcome": outcome})
}
