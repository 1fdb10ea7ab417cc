package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy controls how often and how quickly an operation is repeated.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts   int
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultPolicy tries five times, starting at one second.
func DefaultPolicy() Policy {
	return Policy{Attempts: 5, Initial: time.Second, Max: 30 * time.Second, Multiplier: 2}
}

// Do runs op until it returns nil. Errors marked with Fatal stop
// immediately.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	delay := p.Initial
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if IsFatal(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * multiplier)
		if p.Max > 0 && delay > p.Max {
			delay = p.Max
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

// FatalError marks an error that retrying cannot fix.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err so that Do returns it without further attempts.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether err, or an error it wraps, is fatal.
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
