package resilience

import "time"

// Config tunes retries and the per-operation circuit breakers. The
// protected calls are a product upsert batch per commit, one NATS publish
// per upload and staging reads and writes, so attempts are few and spaced
// wide enough for a Postgres failover or a NATS reconnect.
type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

const (
	defaultRetryMaxAttempts    = 4
	defaultRetryInitialBackoff = 250 * time.Millisecond
	defaultRetryMaxBackoff     = 2 * time.Second
	defaultRetryMultiplier     = 2.0

	// Uploads are rare, so a handful of calls is already a signal.
	defaultBreakerMinRequests      = 5
	defaultBreakerFailureRatio     = 0.6
	defaultBreakerOpenTimeout      = 15 * time.Second
	defaultBreakerHalfOpenMaxCalls = 1
)

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    defaultRetryMaxAttempts,
		RetryInitialBackoff: defaultRetryInitialBackoff,
		RetryMaxBackoff:     defaultRetryMaxBackoff,
		RetryMultiplier:     defaultRetryMultiplier,

		BreakerEnabled:          true,
		BreakerMinRequests:      defaultBreakerMinRequests,
		BreakerFailureRatio:     defaultBreakerFailureRatio,
		BreakerOpenTimeout:      defaultBreakerOpenTimeout,
		BreakerHalfOpenMaxCalls: defaultBreakerHalfOpenMaxCalls,
	}
}

// withDefaults fills unset or out-of-range values. BreakerEnabled is taken
// as given.
func (c Config) withDefaults() Config {
	out := c
	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = defaultRetryMaxAttempts
	}
	out.RetryInitialBackoff = positiveOr(out.RetryInitialBackoff, defaultRetryInitialBackoff)
	out.RetryMaxBackoff = positiveOr(out.RetryMaxBackoff, defaultRetryMaxBackoff)
	out.RetryMaxBackoff = max(out.RetryMaxBackoff, out.RetryInitialBackoff)
	if out.RetryMultiplier < 1 {
		out.RetryMultiplier = defaultRetryMultiplier
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = defaultBreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = defaultBreakerFailureRatio
	}
	out.BreakerOpenTimeout = positiveOr(out.BreakerOpenTimeout, defaultBreakerOpenTimeout)
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = defaultBreakerHalfOpenMaxCalls
	}
	return out
}

func positiveOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
