package utils

import (
	"context"
	"testing"
	"time"
)

func TestPacerZeroDelayReturnsImmediately(t *testing.T) {
	p := NewPacer(0, 0)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("zero-delay Wait took %v", elapsed)
	}
}

func TestPacerWaitsAtLeastMin(t *testing.T) {
	min := 30 * time.Millisecond
	p := NewPacer(min, 60*time.Millisecond)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < min {
		t.Errorf("Wait returned after %v, want at least %v", elapsed, min)
	}
}

func TestPacerCancelledContext(t *testing.T) {
	p := NewPacer(10*time.Second, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := p.Wait(ctx)
	if err == nil {
		t.Fatal("Wait should surface the context error when cancelled")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("cancelled Wait took %v, want prompt return", elapsed)
	}
}

func TestPacerClampsInvertedBounds(t *testing.T) {
	p := NewPacer(20*time.Millisecond, 5*time.Millisecond)
	if p.max != p.min {
		t.Errorf("max below min should clamp to min, got min=%v max=%v", p.min, p.max)
	}
}
