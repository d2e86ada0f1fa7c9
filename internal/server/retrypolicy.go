package server

import (
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
)

const (
	defaultAttempts     = 10
	defaultInitialRetry = 5 * time.Millisecond
	defaultMaxRetry     = time.Second
)

// RetryPolicy describes how the accept loop backs off after consecutive
// accept failures. Zero values are treated as "use defaults".
type RetryPolicy struct {
	// Attempts is the number of consecutive failures tolerated before
	// the server gives up.
	Attempts int

	// Initial is the first backoff duration.
	Initial time.Duration

	// Max is the cap for backoff duration.
	Max time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: defaultAttempts,
		Initial:  defaultInitialRetry,
		Max:      defaultMaxRetry,
	}
}

func (rp RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if rp.Attempts <= 0 {
		rp.Attempts = def.Attempts
	}
	if rp.Initial <= 0 {
		rp.Initial = def.Initial
	}
	if rp.Max <= 0 {
		rp.Max = def.Max
	}
	return rp
}

// acceptBackoff yields growing delays between failed accepts and starts
// over after a success.
type acceptBackoff struct {
	policy   RetryPolicy
	failures int
	next     func() time.Duration
}

func newAcceptBackoff(rp RetryPolicy) *acceptBackoff {
	b := &acceptBackoff{policy: rp.withDefaults()}
	b.reset()
	return b
}

func (b *acceptBackoff) reset() {
	bo := boff.New(b.policy.Initial, b.policy.Max, time.Now().UnixNano())
	b.next = bo.Next
	b.failures = 0
}

// fail records one failure and returns the delay before the next accept.
// exhausted is true once Attempts consecutive failures have been seen.
func (b *acceptBackoff) fail() (delay time.Duration, exhausted bool) {
	b.failures++
	if b.failures >= b.policy.Attempts {
		return 0, true
	}
	return b.next(), false
}
