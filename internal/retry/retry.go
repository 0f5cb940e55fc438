// Package retry runs network operations with bounded exponential backoff.
//
// Retries are parameterized by an error classifier: transient store/oracle
// failures (rate limits, 5xx, timeouts) are worth repeating, deterministic
// schema or validation failures never are.
package retry

import (
	"context"
	"errors"
	"net"
	"time"

	"google.golang.org/api/googleapi"
)

// Policy bounds the attempt count and the per-attempt delay.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultPolicy matches the store/oracle retry contract: three attempts,
// exponential backoff capped at ten seconds.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, InitialDelay: 1 * time.Second, MaxDelay: 10 * time.Second}
}

// Do runs op until it succeeds, the classifier declares the error permanent,
// attempts are exhausted, or the context is cancelled. A nil classifier
// retries every error. The last operation error is returned on exhaustion.
func Do(ctx context.Context, policy Policy, retryable func(error) bool, op func() error) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	delay := policy.InitialDelay
	var last error

	for attempt := 1; ; attempt++ {
		last = op()
		if last == nil {
			return nil
		}
		if retryable != nil && !retryable(last) {
			return last
		}
		if attempt >= policy.MaxAttempts {
			return last
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}
}

// Transient classifies Google API and network errors worth retrying.
func Transient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 408, 429:
			return true
		}
		return gerr.Code >= 500
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		return nerr.Timeout()
	}

	return false
}
