// Package batch splits large batch requests into store-sized chunks and
// retries the unprocessed subset of each chunk with capped exponential backoff.
//
// A call either returns every result or fails: when any chunk exhausts its
// attempts or the transport returns an error, results gathered so far are
// discarded.
package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theory-cloud/tablekit/pkg/core"
	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
)

// Operation labels used in logs and metrics
const (
	OpGet   = "get"
	OpWrite = "write"
)

// sleepFunc waits for d or until ctx is done. Replaced in tests.
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// unit is one work item tagged with its logical target
type unit[U any] struct {
	item   U
	target string
}

type chunk[U any] struct {
	units []unit[U]
	index int
}

// Get runs a read batch in chunks of core.GetChunkSize.
func Get[U, R any](ctx context.Context, req core.Request[U], transport core.Transport[U, R], opts *core.BatchOptions) (map[string][]R, error) {
	return Run(ctx, OpGet, core.GetChunkSize, req, transport, opts)
}

// Write runs a write batch in chunks of core.WriteChunkSize.
func Write[U, R any](ctx context.Context, req core.Request[U], transport core.Transport[U, R], opts *core.BatchOptions) (map[string][]R, error) {
	return Run(ctx, OpWrite, core.WriteChunkSize, req, transport, opts)
}

// Run flattens req into target-tagged units, slices them into chunks of
// chunkSize and dispatches each chunk through transport. Results are
// regrouped by target; within a target they follow chunk order.
func Run[U, R any](ctx context.Context, op string, chunkSize int, req core.Request[U], transport core.Transport[U, R], opts *core.BatchOptions) (map[string][]R, error) {
	if transport == nil {
		return nil, fmt.Errorf("batch %s: transport is required", op)
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("batch %s: chunk size must be positive, got %d", op, chunkSize)
	}
	opts = opts.Normalize()
	if err := opts.Retry.Validate(); err != nil {
		return nil, err
	}

	e := &engine[U, R]{
		op:        op,
		batchID:   uuid.NewString(),
		chunkSize: chunkSize,
		transport: transport,
		opts:      opts,
		logger:    opts.Logger,
	}
	e.logger = e.logger.With(zap.String("batch_id", e.batchID), zap.String("operation", op))

	chunks := e.split(flatten(req))
	if len(chunks) == 0 {
		return map[string][]R{}, nil
	}

	partials := make([]map[string][]R, len(chunks))
	run := func(ctx context.Context, c chunk[U]) error {
		results, err := e.processChunk(ctx, c)
		if err != nil {
			return err
		}
		partials[c.index] = results
		return nil
	}

	var err error
	if opts.Parallel && len(chunks) > 1 {
		err = runChunksParallel(ctx, chunks, run, opts.MaxConcurrency)
	} else {
		for _, c := range chunks {
			if err = run(ctx, c); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}

	merged := make(map[string][]R)
	for _, partial := range partials {
		for target, results := range partial {
			merged[target] = append(merged[target], results...)
		}
	}
	return merged, nil
}

type engine[U, R any] struct {
	transport core.Transport[U, R]
	opts      *core.BatchOptions
	logger    *zap.Logger
	op        string
	batchID   string
	chunkSize int
}

// flatten tags every item with its target. Targets are visited in sorted
// order so chunking is deterministic.
func flatten[U any](req core.Request[U]) []unit[U] {
	targets := make([]string, 0, len(req))
	for target := range req {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	units := make([]unit[U], 0, req.Len())
	for _, target := range targets {
		for _, item := range req[target] {
			units = append(units, unit[U]{target: target, item: item})
		}
	}
	return units
}

func (e *engine[U, R]) split(units []unit[U]) []chunk[U] {
	var chunks []chunk[U]
	for start := 0; start < len(units); start += e.chunkSize {
		end := start + e.chunkSize
		if end > len(units) {
			end = len(units)
		}
		chunks = append(chunks, chunk[U]{index: len(chunks), units: units[start:end]})
	}
	return chunks
}

func group[U any](units []unit[U]) core.Request[U] {
	req := make(core.Request[U])
	for _, u := range units {
		req[u.target] = append(req[u.target], u.item)
	}
	return req
}

// processChunk dispatches a chunk and resubmits its unprocessed subset until
// nothing remains or the attempt budget is spent.
func (e *engine[U, R]) processChunk(ctx context.Context, c chunk[U]) (map[string][]R, error) {
	pending := group(c.units)
	collected := make(map[string][]R)
	retry := e.opts.Retry

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch %s cancelled before attempt %d: %w", e.batchID, attempt, err)
		}

		e.recordAttempt()
		resp, err := e.transport.Dispatch(ctx, pending)
		if err != nil {
			e.logger.Debug("batch transport failed",
				zap.Int("chunk", c.index),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return nil, &tkerrors.BatchError{
				Kind:       tkerrors.ErrTransportFailure,
				Cause:      err,
				BatchID:    e.batchID,
				Attempts:   attempt,
				Unresolved: pending.Len(),
				ChunkSize:  len(c.units),
				Chunk:      c.index,
			}
		}

		for target, results := range resp.Results {
			collected[target] = append(collected[target], results...)
		}

		remaining := resp.Unprocessed.Len()
		if remaining == 0 {
			return collected, nil
		}
		e.recordUnprocessed(remaining)

		if attempt >= retry.MaxAttempts {
			e.recordExhausted()
			e.logger.Warn("batch retries exhausted",
				zap.Int("chunk", c.index),
				zap.Int("attempts", attempt),
				zap.Int("unprocessed", remaining))
			return nil, &tkerrors.BatchError{
				Kind:       tkerrors.ErrUnprocessedExhausted,
				BatchID:    e.batchID,
				Attempts:   attempt,
				Unresolved: remaining,
				ChunkSize:  len(c.units),
				Chunk:      c.index,
			}
		}

		delay := retry.Delay(attempt - 1)
		e.logger.Debug("retrying unprocessed batch items",
			zap.Int("chunk", c.index),
			zap.Int("attempt", attempt),
			zap.Int("unprocessed", remaining),
			zap.Duration("delay", delay))

		if err := sleepFunc(ctx, delay); err != nil {
			return nil, fmt.Errorf("batch %s cancelled while waiting to retry: %w", e.batchID, err)
		}
		e.recordRetry()
		pending = compact(resp.Unprocessed)
	}
}

// compact drops targets with no remaining units
func compact[U any](req core.Request[U]) core.Request[U] {
	out := make(core.Request[U], len(req))
	for target, units := range req {
		if len(units) > 0 {
			out[target] = units
		}
	}
	return out
}

func (e *engine[U, R]) recordAttempt() {
	if e.opts.Metrics != nil {
		e.opts.Metrics.Attempt(e.op)
	}
}

func (e *engine[U, R]) recordRetry() {
	if e.opts.Metrics != nil {
		e.opts.Metrics.Retry(e.op)
	}
}

func (e *engine[U, R]) recordUnprocessed(n int) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.Unprocessed(e.op, n)
	}
}

func (e *engine[U, R]) recordExhausted() {
	if e.opts.Metrics != nil {
		e.opts.Metrics.Exhausted(e.op)
	}
}

// runChunksParallel processes chunks with at most maxConcurrency in flight.
// The first failure cancels the remaining chunks and is the error returned.
func runChunksParallel[U any](ctx context.Context, chunks []chunk[U], worker func(context.Context, chunk[U]) error, maxConcurrency int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	sem := make(chan struct{}, maxConcurrency)

	for _, c := range chunks {
		wg.Add(1)
		go func(c chunk[U]) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				once.Do(func() { firstErr = ctx.Err() })
				return
			}
			defer func() { <-sem }()

			if err := worker(ctx, c); err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}(c)
	}

	wg.Wait()
	return firstErr
}
