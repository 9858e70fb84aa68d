package utils

import (
	"context"
	"math/rand"
	"time"
)

// Pacer enforces a politeness delay between consecutive page requests.
// The delay is drawn uniformly from [min, max] so the request cadence does
// not look mechanical to the source.
type Pacer struct {
	min time.Duration
	max time.Duration
}

// NewPacer creates a Pacer with the given delay bounds.
func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		max = min
	}
	return &Pacer{min: min, max: max}
}

// Wait blocks for one randomized delay interval. It returns early with the
// context's error if the run is stopped while waiting.
func (p *Pacer) Wait(ctx context.Context) error {
	delay := p.min
	if p.max > p.min {
		delay += time.Duration(rand.Int63n(int64(p.max - p.min)))
	}
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
