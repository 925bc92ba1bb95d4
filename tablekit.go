// Package tablekit turns key templates, condition trees and update builders
// into DynamoDB expressions, and runs batch reads and writes with retries of
// unprocessed items.
//
// The subpackages carry the full API; this package re-exports the entry
// points most callers need.
package tablekit

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/theory-cloud/tablekit/pkg/condition"
	"github.com/theory-cloud/tablekit/pkg/core"
	"github.com/theory-cloud/tablekit/pkg/dynamo"
	"github.com/theory-cloud/tablekit/pkg/expr"
	"github.com/theory-cloud/tablekit/pkg/interfaces"
	"github.com/theory-cloud/tablekit/pkg/template"
	"github.com/theory-cloud/tablekit/pkg/update"
)

type (
	// Template is a parsed key template
	Template = template.Template
	// Condition is an immutable filter or condition tree
	Condition = condition.Node
	// Compiled is an expression plus its alias maps
	Compiled = expr.Compiled
	// Update is the immutable update-action builder
	Update = update.Builder
	// KeySchema builds primary keys from templates
	KeySchema = dynamo.KeySchema
	// BatchOptions tune batch retries and concurrency
	BatchOptions = core.BatchOptions
	// RetryOptions configure unprocessed-item backoff
	RetryOptions = core.RetryOptions
)

// ParseTemplate parses a key template such as "USER#{{userId}}"
func ParseTemplate(pattern string) *Template {
	return template.Parse(pattern)
}

// Where returns the dynamic condition builder
func Where() condition.Untyped {
	return condition.Untyped{}
}

// CompileCondition resolves a filter input (nil, raw string, Condition or
// builder callback) into a compiled expression
func CompileCondition(input any) (Compiled, error) {
	return condition.Resolve(input)
}

// NewUpdate returns an empty update builder
func NewUpdate() Update {
	return update.New()
}

// NewKeySchema parses partition and sort key templates
func NewKeySchema(partitionAttr, partitionPattern, sortAttr, sortPattern string) (*KeySchema, error) {
	return dynamo.NewKeySchema(partitionAttr, partitionPattern, sortAttr, sortPattern)
}

// DefaultBatchOptions returns the default batch configuration
func DefaultBatchOptions() *BatchOptions {
	return core.DefaultBatchOptions()
}

// BatchGet reads keys grouped by table with unprocessed-key retries
func BatchGet(ctx context.Context, client interfaces.BatchGetAPI, keys map[string][]dynamo.Key, opts *BatchOptions) (map[string][]dynamo.Item, error) {
	return dynamo.BatchGet(ctx, client, keys, opts)
}

// BatchWrite applies writes grouped by table with unprocessed-item retries
func BatchWrite(ctx context.Context, client interfaces.BatchWriteAPI, writes map[string][]types.WriteRequest, opts *BatchOptions) error {
	return dynamo.BatchWrite(ctx, client, writes, opts)
}
