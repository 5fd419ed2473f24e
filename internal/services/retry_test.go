package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	var slept []time.Duration
	calls := 0

	got, err := Retry(context.Background(), 3, DefaultRetryDelays,
		func(d time.Duration) { slept = append(slept, d) },
		func(context.Context) (int, error) {
			calls++
			return 42, nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 1 {
		t.Fatalf("got %d after %d calls, want 42 after 1", got, calls)
	}
	if len(slept) != 0 {
		t.Fatalf("slept %v, want no sleeps before the first attempt", slept)
	}
}

func TestRetry_FailTwiceThenSucceed(t *testing.T) {
	var slept []time.Duration
	calls := 0

	got, err := Retry(context.Background(), DefaultRetryAttempts, DefaultRetryDelays,
		func(d time.Duration) { slept = append(slept, d) },
		func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Fatalf("got %q after %d calls, want ok after 3", got, calls)
	}

	want := []time.Duration{3 * time.Second, 10 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("delay[%d] = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestRetry_ExhaustsAndReturnsLastError(t *testing.T) {
	calls := 0
	last := errors.New("boom")

	_, err := Retry(context.Background(), DefaultRetryAttempts, DefaultRetryDelays,
		func(time.Duration) {},
		func(context.Context) (int, error) {
			calls++
			return 0, last
		})
	if !errors.Is(err, last) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != DefaultRetryAttempts {
		t.Fatalf("calls = %d, want %d", calls, DefaultRetryAttempts)
	}
}

func TestRetry_DefaultsWhenZeroArgs(t *testing.T) {
	// nil delays and zero maxAttempts fall back to the fixed ladder.
	calls := 0
	var slept []time.Duration

	_, err := Retry(context.Background(), 0, nil,
		func(d time.Duration) { slept = append(slept, d) },
		func(context.Context) (struct{}, error) {
			calls++
			return struct{}{}, errors.New("always")
		})
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if calls != DefaultRetryAttempts {
		t.Fatalf("calls = %d, want %d", calls, DefaultRetryAttempts)
	}
	if len(slept) != DefaultRetryAttempts-1 {
		t.Fatalf("slept %v, want %d waits between attempts", slept, DefaultRetryAttempts-1)
	}
}
