package core

import (
	"fmt"
	"time"

	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
)

// RetryOptions defines the capped exponential backoff used when a batch chunk
// comes back with unprocessed items.
type RetryOptions struct {
	// MaxAttempts is the total number of dispatches per chunk, including the first.
	MaxAttempts int `yaml:"max_attempts"`
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration `yaml:"base_delay"`
	// MaxDelay caps the exponential backoff delay.
	MaxDelay time.Duration `yaml:"max_delay"`
}

// DefaultRetryOptions returns a conservative retry configuration suitable for most batch operations.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts: 4,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Validate checks MaxAttempts >= 1 and 0 <= BaseDelay <= MaxDelay.
func (o RetryOptions) Validate() error {
	if o.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", tkerrors.ErrInvalidRetryOptions, o.MaxAttempts)
	}
	if o.BaseDelay < 0 {
		return fmt.Errorf("%w: base delay cannot be negative", tkerrors.ErrInvalidRetryOptions)
	}
	if o.MaxDelay < o.BaseDelay {
		return fmt.Errorf("%w: max delay %s is below base delay %s", tkerrors.ErrInvalidRetryOptions, o.MaxDelay, o.BaseDelay)
	}
	return nil
}

// Delay returns min(BaseDelay * 2^retryIndex, MaxDelay). retryIndex is
// zero-based, so the first retry waits BaseDelay.
func (o RetryOptions) Delay(retryIndex int) time.Duration {
	if retryIndex < 0 {
		retryIndex = 0
	}
	delay := o.BaseDelay
	for i := 0; i < retryIndex; i++ {
		if delay >= o.MaxDelay || delay > o.MaxDelay/2 {
			return o.MaxDelay
		}
		delay *= 2
	}
	if delay > o.MaxDelay {
		return o.MaxDelay
	}
	return delay
}
