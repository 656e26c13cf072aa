// Package retry provides a bounded polling loop for status probes that
// need time to converge, such as a service becoming active after enable
// or a mesh login completing in the browser.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when the attempt budget runs out before the
// probe reports success.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Probe checks a condition once. Returning (true, nil) stops the loop
// successfully; (false, nil) means "not yet" and the loop continues.
// A non-nil error aborts the loop immediately.
type Probe func(ctx context.Context) (bool, error)

// Poll runs probe up to attempts times, sleeping interval between tries.
// It returns nil on success, ErrExhausted after the bound, the probe's
// error on abort, or the context error on cancellation.
func Poll(ctx context.Context, attempts int, interval time.Duration, probe Probe) error {
	for i := 0; i < attempts; i++ {
		done, err := probe(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return ErrExhausted
}
