package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast(attempts int) Policy {
	return Policy{Attempts: attempts, Initial: time.Millisecond, Max: 2 * time.Millisecond, Multiplier: 2}
}

func TestDo_FirstTry(t *testing.T) {
	t.Parallel()
	calls := 0
	err := fast(3).Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()
	calls := 0
	err := fast(5).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUp(t *testing.T) {
	t.Parallel()
	calls := 0
	sentinel := errors.New("connection refused")
	err := fast(3).Do(context.Background(), func() error {
		calls++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	t.Parallel()
	calls := 0
	_ = Policy{}.Do(context.Background(), func() error {
		calls++
		return errors.New("nope")
	})
	assert.Equal(t, 1, calls)
}

func TestDo_FatalStops(t *testing.T) {
	t.Parallel()
	calls := 0
	auth := errors.New("unable to authenticate")
	err := fast(5).Do(context.Background(), func() error {
		calls++
		return Fatal(auth)
	})
	require.ErrorIs(t, err, auth)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 1, calls)
}

func TestDo_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{Attempts: 10, Initial: time.Hour}.Do(ctx, func() error {
		calls++
		cancel()
		return errors.New("connection refused")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestFatal_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Fatal(nil))
	assert.False(t, IsFatal(errors.New("plain")))
}
