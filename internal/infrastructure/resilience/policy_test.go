package resilience

import (
	"testing"
	"time"
)

func TestWithDefaultsFillsUnsetValues(t *testing.T) {
	got := Config{BreakerEnabled: false}.withDefaults()
	want := DefaultConfig()
	want.BreakerEnabled = false
	if got != want {
		t.Fatalf("withDefaults() = %+v, want %+v", got, want)
	}
}

func TestWithDefaultsRepairsOutOfRangeValues(t *testing.T) {
	got := Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: 3 * time.Second,
		RetryMaxBackoff:     time.Second,
		RetryMultiplier:     0.5,
		BreakerFailureRatio: 1.5,
		BreakerOpenTimeout:  -time.Second,
	}.withDefaults()

	if got.RetryMaxAttempts != 2 {
		t.Fatalf("explicit attempts overwritten: %d", got.RetryMaxAttempts)
	}
	if got.RetryMaxBackoff != 3*time.Second {
		t.Fatalf("max backoff should be raised to the initial backoff, got %s", got.RetryMaxBackoff)
	}
	if got.RetryMultiplier != defaultRetryMultiplier {
		t.Fatalf("multiplier = %v", got.RetryMultiplier)
	}
	if got.BreakerFailureRatio != defaultBreakerFailureRatio || got.BreakerOpenTimeout != defaultBreakerOpenTimeout {
		t.Fatalf("breaker settings not repaired: %+v", got)
	}
}
