// File: internal/humanoid/pause.go

// Package humanoid paces browser interaction so the input stream resembles
// a person rather than a script: jittered delays between actions and
// keystroke-by-keystroke typing.
package humanoid

import (
	"context"
	"math/rand"
	"time"
)

const (
	minPauseFloor = 50 * time.Millisecond
	maxPauseFloor = 100 * time.Millisecond
)

// PauseDuration picks a uniform random duration between the bounds. Swapped
// bounds are inverted rather than rejected, and the window is clamped to a
// floor so a zero-configured pause still yields a beat.
func PauseDuration(rng *rand.Rand, min, max time.Duration) time.Duration {
	if min > max {
		min, max = max, min
	}
	if min < minPauseFloor {
		min = minPauseFloor
	}
	if max < maxPauseFloor {
		max = maxPauseFloor
	}
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)))
}

// Pause sleeps for a random interval within the bounds, returning early if
// the context is cancelled.
func Pause(ctx context.Context, rng *rand.Rand, min, max time.Duration) error {
	return sleep(ctx, PauseDuration(rng, min, max))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
