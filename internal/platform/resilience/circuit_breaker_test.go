package resilience

import (
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewCircuitBreaker(3, time.Minute, 1)

	for range 2 {
		b.RecordFailure()
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("expected closed circuit below threshold, got %v", err)
	}

	b.RecordFailure()
	if err := b.Allow(); err != ErrCircuitOpen {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("expected open state, got %s", got)
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewCircuitBreaker(2, time.Minute, 1)

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()

	if err := b.Allow(); err != nil {
		t.Fatalf("expected closed circuit after reset, got %v", err)
	}
}

func TestCircuitBreaker_HalfOpenProbeClosesCircuit(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	current := time.Now()
	b.now = func() time.Time { return current }

	b.RecordFailure()
	if err := b.Allow(); err != ErrCircuitOpen {
		t.Fatalf("expected open circuit, got %v", err)
	}

	current = current.Add(2 * time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe allowed, got %v", err)
	}
	if err := b.Allow(); err != ErrCircuitOpen {
		t.Fatalf("expected second probe rejected, got %v", err)
	}

	b.RecordSuccess()
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", got)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	current := time.Now()
	b.now = func() time.Time { return current }

	b.RecordFailure()
	current = current.Add(2 * time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe allowed, got %v", err)
	}

	b.RecordFailure()
	if err := b.Allow(); err != ErrCircuitOpen {
		t.Fatalf("expected reopened circuit, got %v", err)
	}
}
