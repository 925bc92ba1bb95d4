package core

import (
	"go.uber.org/zap"
)

// Fixed per-call quotas imposed by the store. They are not tunable.
const (
	GetChunkSize   = 100
	WriteChunkSize = 25
)

// MetricsRecorder receives batch engine events. Implementations must be safe
// for concurrent use because chunks may be dispatched in parallel.
type MetricsRecorder interface {
	// Attempt records one transport dispatch.
	Attempt(op string)
	// Retry records a resubmission of an unprocessed subset.
	Retry(op string)
	// Unprocessed records how many units a dispatch left unprocessed.
	Unprocessed(op string, n int)
	// Exhausted records a chunk that ran out of attempts.
	Exhausted(op string)
}

// BatchOptions tune the behavior of batch get and write calls.
type BatchOptions struct {
	Logger         *zap.Logger
	Metrics        MetricsRecorder
	Retry          RetryOptions
	MaxConcurrency int
	Parallel       bool
}

// DefaultBatchOptions returns a sensible baseline configuration.
func DefaultBatchOptions() *BatchOptions {
	return &BatchOptions{
		Retry:          DefaultRetryOptions(),
		Parallel:       false,
		MaxConcurrency: 4,
	}
}

// Clone returns a shallow copy of the options to decouple caller modifications from shared defaults.
func (o *BatchOptions) Clone() *BatchOptions {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

// Normalize returns a copy with defaults filled in: a nil receiver becomes
// DefaultBatchOptions, a nil logger becomes a no-op logger and a
// non-positive MaxConcurrency becomes 1.
func (o *BatchOptions) Normalize() *BatchOptions {
	opts := o.Clone()
	if opts == nil {
		opts = DefaultBatchOptions()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 1
	}
	return opts
}
