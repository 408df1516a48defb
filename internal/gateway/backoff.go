package gateway

import (
	"context"
	"math"
	"time"
)

// Backoff returns the wait before the retry-th retry (1-based):
// min(maxBackoff, poll * 2^(retry-1)). No jitter is applied.
func Backoff(retry int, poll, maxBackoff time.Duration) time.Duration {
	if poll <= 0 {
		return 0
	}
	if maxBackoff < 0 {
		maxBackoff = 0
	}
	if retry < 1 {
		retry = 1
	}
	wait := poll
	for i := 1; i < retry; i++ {
		if wait >= maxBackoff || wait > math.MaxInt64/2 {
			return maxBackoff
		}
		wait *= 2
	}
	return min(wait, maxBackoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
