package retry

import (
	"context"
	"time"
)

// Policy retries an operation a bounded number of times with a fixed delay
// between attempts. Sleep is injectable so tests can run without real waits.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

func New(maxAttempts int, delay time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, Delay: delay, Sleep: sleepCtx}
}

// Do runs fn until it succeeds, reports a non-retryable error, or attempts
// are exhausted. fn's second return value marks an error as retryable.
func (p Policy) Do(ctx context.Context, fn func() (retryable bool, err error)) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		var retryable bool
		retryable, err = fn()
		if err == nil {
			return nil
		}
		if !retryable || attempt == p.MaxAttempts {
			return err
		}
		if serr := sleep(ctx, p.Delay); serr != nil {
			return serr
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
