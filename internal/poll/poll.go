// internal/poll/poll.go
//
// Bounded polling primitives.  Every wait in the publish pipeline (repo
// propagation, Pages builds, site liveness) runs through these so no
// loop can outlive its wall-clock budget or ignore context cancelation.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout reports that the polling budget elapsed before the
// condition held.
var ErrTimeout = errors.New("poll: timed out")

// Func is one probe.  Return done=true to stop successfully; a non-nil
// error aborts the loop immediately.
type Func func(ctx context.Context) (done bool, err error)

// Until calls fn immediately and then once per interval until fn
// reports done, fn fails, the timeout elapses, or ctx is canceled.
func Until(ctx context.Context, interval, timeout time.Duration, fn Func) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrTimeout
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tries calls fn up to tries times with a fixed delay between attempts.
// It reports whether the condition held within the budget; exhausting
// the attempts without an error is not itself an error, so callers can
// choose to continue with a warning.
func Tries(ctx context.Context, tries int, delay time.Duration, fn Func) (bool, error) {
	for attempt := 0; attempt < tries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(delay):
			}
		}

		done, err := fn(ctx)
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}
	}
	return false, nil
}
