package provisioning

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(observer Observer) *Context {
	return &Context{
		Context:  context.Background(),
		Observer: observer,
		Metrics:  NewMetrics(),
	}
}

func TestRunPhases_Success(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	ctx := newTestContext(NewMockObserver())
	err := RunPhases(ctx, []Phase{
		PhaseFunc{"vswitch", func(_ *Context) error { executed = append(executed, "vswitch"); return nil }},
		PhaseFunc{"net", func(_ *Context) error { executed = append(executed, "net"); return nil }},
		PhaseFunc{"lb", func(_ *Context) error { executed = append(executed, "lb"); return nil }},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"vswitch", "net", "lb"}, executed)
}

func TestRunPhases_StopsOnError(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	ctx := newTestContext(NewMockObserver())
	err := RunPhases(ctx, []Phase{
		PhaseFunc{"vswitch", func(_ *Context) error { executed = append(executed, "vswitch"); return nil }},
		PhaseFunc{"net", func(_ *Context) error { return fmt.Errorf("quota exceeded") }},
		PhaseFunc{"lb", func(_ *Context) error { executed = append(executed, "lb"); return nil }},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "net phase failed")
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, []string{"vswitch"}, executed)
}

func TestRunPhases_Empty(t *testing.T) {
	t.Parallel()
	require.NoError(t, RunPhases(newTestContext(NewMockObserver()), nil))
}

func TestRunPhases_LogsEvents(t *testing.T) {
	t.Parallel()
	observer := NewMockObserver()
	ctx := newTestContext(observer)

	_ = RunPhases(ctx, []Phase{
		PhaseFunc{"ok", func(_ *Context) error { return nil }},
		PhaseFunc{"failing", func(_ *Context) error { return fmt.Errorf("boom") }},
	})

	var types []EventType
	for _, event := range observer.events {
		types = append(types, event.Type)
	}
	assert.Equal(t, []EventType{EventPhaseStarted, EventPhaseCompleted, EventPhaseStarted, EventPhaseFailed}, types)
	assert.Equal(t, "ok (1/2)", observer.events[0].Phase)
}

func TestRunPhases_ObservesDuration(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(NewMockObserver())

	require.NoError(t, RunPhases(ctx, []Phase{
		PhaseFunc{"render", func(_ *Context) error { return nil }},
	}))

	assert.Equal(t, 1, testutil.CollectAndCount(ctx.Metrics.phaseDuration))
}
