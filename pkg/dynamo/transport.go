package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/theory-cloud/tablekit/pkg/batch"
	"github.com/theory-cloud/tablekit/pkg/core"
	"github.com/theory-cloud/tablekit/pkg/interfaces"
)

// BatchGetter dispatches batch reads through BatchGetItem. Unprocessed keys
// are handed back to the batch engine for retry.
type BatchGetter struct {
	Client         interfaces.BatchGetAPI
	Logger         *zap.Logger
	Projection     []string
	ConsistentRead bool
}

var _ core.Transport[Key, Item] = (*BatchGetter)(nil)

// Dispatch sends one chunk
func (g *BatchGetter) Dispatch(ctx context.Context, req core.Request[Key]) (core.Response[Key, Item], error) {
	projection := Projection(g.Projection...)
	input := &dynamodb.BatchGetItemInput{
		RequestItems: make(map[string]types.KeysAndAttributes, len(req)),
	}
	for table, keys := range req {
		kaa := types.KeysAndAttributes{Keys: keys}
		if g.ConsistentRead {
			kaa.ConsistentRead = aws.Bool(true)
		}
		if !projection.IsEmpty() {
			kaa.ProjectionExpression = aws.String(projection.Expression)
			kaa.ExpressionAttributeNames = projection.Names
		}
		input.RequestItems[table] = kaa
	}

	output, err := g.Client.BatchGetItem(ctx, input)
	if err != nil {
		return core.Response[Key, Item]{}, fmt.Errorf("batch get failed: %w", err)
	}

	resp := core.Response[Key, Item]{Results: output.Responses}
	for table, kaa := range output.UnprocessedKeys {
		if len(kaa.Keys) == 0 {
			continue
		}
		if resp.Unprocessed == nil {
			resp.Unprocessed = make(core.Request[Key])
		}
		resp.Unprocessed[table] = kaa.Keys
	}
	logger(g.Logger).Debug("batch get dispatched",
		zap.Int("keys", req.Len()),
		zap.Int("unprocessed", resp.Unprocessed.Len()))
	return resp, nil
}

// BatchWriter dispatches batch writes through BatchWriteItem. Writes produce
// no results; only the unprocessed requests matter.
type BatchWriter struct {
	Client interfaces.BatchWriteAPI
	Logger *zap.Logger
}

var _ core.Transport[types.WriteRequest, struct{}] = (*BatchWriter)(nil)

// Dispatch sends one chunk
func (w *BatchWriter) Dispatch(ctx context.Context, req core.Request[types.WriteRequest]) (core.Response[types.WriteRequest, struct{}], error) {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest(req),
	}

	output, err := w.Client.BatchWriteItem(ctx, input)
	if err != nil {
		return core.Response[types.WriteRequest, struct{}]{}, fmt.Errorf("batch write failed: %w", err)
	}

	var resp core.Response[types.WriteRequest, struct{}]
	for table, writes := range output.UnprocessedItems {
		if len(writes) == 0 {
			continue
		}
		if resp.Unprocessed == nil {
			resp.Unprocessed = make(core.Request[types.WriteRequest])
		}
		resp.Unprocessed[table] = writes
	}
	logger(w.Logger).Debug("batch write dispatched",
		zap.Int("writes", req.Len()),
		zap.Int("unprocessed", resp.Unprocessed.Len()))
	return resp, nil
}

// BatchGet reads keys grouped by table, retrying unprocessed keys per opts.
// Results are grouped by table.
func BatchGet(ctx context.Context, client interfaces.BatchGetAPI, keys map[string][]Key, opts *core.BatchOptions) (map[string][]Item, error) {
	getter := &BatchGetter{Client: client}
	if opts != nil {
		getter.Logger = opts.Logger
	}
	return batch.Get[Key, Item](ctx, core.Request[Key](keys), getter, opts)
}

// BatchWrite applies writes grouped by table, retrying unprocessed items per opts.
func BatchWrite(ctx context.Context, client interfaces.BatchWriteAPI, writes map[string][]types.WriteRequest, opts *core.BatchOptions) error {
	writer := &BatchWriter{Client: client}
	if opts != nil {
		writer.Logger = opts.Logger
	}
	_, err := batch.Write[types.WriteRequest, struct{}](ctx, core.Request[types.WriteRequest](writes), writer, opts)
	return err
}

// PutRequest wraps item in a put write request
func PutRequest(item Item) types.WriteRequest {
	return types.WriteRequest{PutRequest: &types.PutRequest{Item: item}}
}

// DeleteRequest wraps key in a delete write request
func DeleteRequest(key Key) types.WriteRequest {
	return types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}}
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
