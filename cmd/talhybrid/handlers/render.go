package handlers

import (
	"context"

	"github.com/imamik/talhybrid/internal/provisioning/machineconfig"
	"github.com/imamik/talhybrid/internal/util/prerequisites"
)

// newPipeline creates the machine config pipeline; replaced in tests.
var newPipeline = machineconfig.NewPipeline

// Render generates secrets, patches, the control plane config, the
// talosconfig and one config per discovered worker.
func Render(ctx context.Context, opts Options) error {
	policy, err := failurePolicy(opts)
	if err != nil {
		return err
	}
	if err := requireTools(prerequisites.Talosctl); err != nil {
		return err
	}

	pctx, err := newRunContext(ctx, opts)
	if err != nil {
		return err
	}
	return runPhases(pctx, opts, newPipeline(policy).Phases())
}
