package provisioning

import (
	"fmt"
	"time"
)

// RunPhases executes phases sequentially and stops at the first failure.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		LogPhaseStart(ctx.Observer, name)

		if err := phase.Provision(ctx); err != nil {
			LogPhaseFailed(ctx.Observer, name, err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		duration := time.Since(phaseStart)
		if ctx.Metrics != nil {
			ctx.Metrics.ObservePhase(phase.Name(), duration)
		}
		LogPhaseComplete(ctx.Observer, name, duration)
	}

	if len(phases) > 1 {
		ctx.Observer.Printf("Completed %d phases in %v", len(phases), time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// PhaseFunc adapts a function to the Phase interface.
type PhaseFunc struct {
	PhaseName string
	Fn        func(ctx *Context) error
}

// Name implements Phase.
func (p PhaseFunc) Name() string { return p.PhaseName }

// Provision implements Phase.
func (p PhaseFunc) Provision(ctx *Context) error { return p.Fn(ctx) }
