package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/talhybrid/internal/platform/talos"
	"github.com/imamik/talhybrid/internal/provisioning/machineconfig"
	"github.com/imamik/talhybrid/internal/util/prerequisites"
)

func useGenerator(runner talos.Runner) *talos.FailurePolicy {
	var got talos.FailurePolicy
	newPipeline = func(policy talos.FailurePolicy) *machineconfig.Pipeline {
		got = policy
		p := machineconfig.NewPipeline(policy)
		p.Generator.Runner = runner
		return p
	}
	return &got
}

func TestRender_InvalidFailurePolicy(t *testing.T) {
	h := newHarness(t)
	h.opts.FailurePolicy = "retry"

	err := Render(context.Background(), h.opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--failure-policy")
}

func TestRender_RequiresTalosctl(t *testing.T) {
	h := newHarness(t)
	requireTools = func(tools ...prerequisites.Tool) error {
		require.Equal(t, prerequisites.Talosctl.Name, tools[0].Name)
		return assert.AnError
	}

	assert.ErrorIs(t, Render(context.Background(), h.opts), assert.AnError)
}

func TestRender_WithoutNodeIndex(t *testing.T) {
	h := newHarness(t)
	h.opts.FailurePolicy = string(talos.FailurePolicyContinue)
	runner := &recordingRunner{}
	policy := useGenerator(runner)

	require.NoError(t, Render(context.Background(), h.opts))

	assert.Equal(t, talos.FailurePolicyContinue, *policy)
	require.Len(t, runner.calls, 2, "controlplane and talosconfig only")
	for _, c := range runner.calls {
		assert.Equal(t, talos.DefaultBinary, c.name)
	}
	assert.FileExists(t, h.opts.Paths().Config.SecretsFile())
	assert.Contains(t, h.out.String(), "skipping worker nodes")
	assert.Contains(t, h.out.String(), "No worker nodes discovered")
}

func TestRender_GeneratorFailure(t *testing.T) {
	h := newHarness(t)
	useGenerator(&recordingRunner{err: assert.AnError})

	err := Render(context.Background(), h.opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, talos.ErrExternalToolFailure)
}
