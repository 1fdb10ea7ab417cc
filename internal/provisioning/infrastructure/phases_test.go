package infrastructure

import (
	"context"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hcloudplatform "github.com/imamik/talhybrid/internal/platform/hcloud"
	"github.com/imamik/talhybrid/internal/provisioning"
)

func TestPhases_Order(t *testing.T) {
	t.Parallel()

	phases := Phases(&hcloudplatform.MockClient{}, &fakeRobot{})
	names := make([]string, 0, len(phases))
	for _, p := range phases {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"vswitch", "network", "load balancer"}, names)
}

func TestPhases_NetworkSeesPersistedVSwitch(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, noVSwitchDescriptor())

	var subnetVSwitch int64
	cloud := &hcloudplatform.MockClient{
		AddSubnetFunc: func(_ context.Context, _ *hcloud.Network, s hcloudplatform.SubnetSpec) error {
			if s.Type == hcloud.NetworkSubnetTypeVSwitch {
				subnetVSwitch = s.VSwitchID
			}
			return nil
		},
	}

	err := provisioning.RunPhases(env.ctx, Phases(cloud, &fakeRobot{}))
	require.NoError(t, err)

	assert.Equal(t, int64(50000), subnetVSwitch)
	d := env.ctx.Descriptor().Hetzner
	assert.Equal(t, int64(50000), d.VSwitchID)
	assert.Equal(t, int64(1), d.NetworkID)
}
