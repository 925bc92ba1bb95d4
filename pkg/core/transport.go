// Package core defines the shared batch configuration and the request/response
// contract between the batch engine and its network adapters.
package core

import "context"

// Request groups work units by logical target (a table name for DynamoDB).
type Request[U any] map[string][]U

// Len returns the number of units across all targets
func (r Request[U]) Len() int {
	n := 0
	for _, units := range r {
		n += len(units)
	}
	return n
}

// Response is one attempt's outcome: results by target plus the units the
// store declined to process, in the same shape as the request.
type Response[U, R any] struct {
	Results     map[string][]R
	Unprocessed Request[U]
}

// Transport dispatches one chunk. A returned error is a transport failure and
// is never retried by the engine.
type Transport[U, R any] interface {
	Dispatch(ctx context.Context, req Request[U]) (Response[U, R], error)
}

// TransportFunc adapts a function to Transport
type TransportFunc[U, R any] func(ctx context.Context, req Request[U]) (Response[U, R], error)

// Dispatch calls f
func (f TransportFunc[U, R]) Dispatch(ctx context.Context, req Request[U]) (Response[U, R], error) {
	return f(ctx, req)
}
