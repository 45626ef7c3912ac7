package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	cfg := Config{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2.0}

	calls := 0
	err := Do(context.Background(), cfg, "test", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	cfg := Config{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2.0}

	sentinel := errors.New("down")
	calls := 0
	err := Do(context.Background(), cfg, "test", func() error {
		calls++
		return sentinel
	})
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	cfg := Config{MaxAttempts: 5, BaseDelay: time.Hour, Multiplier: 2.0}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, cfg, "test", func() error { return errors.New("always") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDelayDoubles(t *testing.T) {
	cfg := Config{BaseDelay: 500 * time.Millisecond, Multiplier: 2.0}
	expected := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
	for i, want := range expected {
		if got := delayFor(i, cfg); got != want {
			t.Errorf("attempt %d: expected %v, got %v", i, want, got)
		}
	}
}
