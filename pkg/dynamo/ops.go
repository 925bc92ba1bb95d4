package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/theory-cloud/tablekit/pkg/condition"
	"github.com/theory-cloud/tablekit/pkg/interfaces"
	"github.com/theory-cloud/tablekit/pkg/update"
)

// QueryOptions tune a Query beyond its key condition and filter.
type QueryOptions struct {
	Overrides      Overrides
	IndexName      string
	Sort           []SortCondition
	Projection     []string
	Limit          int32
	ConsistentRead bool
	Descending     bool
}

// GetItem reads the item whose key is built from values. A missing item is
// returned as nil without an error.
func GetItem(ctx context.Context, client interfaces.ItemAPI, table string, ks *KeySchema, values map[string]any, projection ...string) (Item, error) {
	key, err := ks.Key(values)
	if err != nil {
		return nil, err
	}
	input := &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       key,
	}
	if p := Projection(projection...); !p.IsEmpty() {
		input.ProjectionExpression = aws.String(p.Expression)
		input.ExpressionAttributeNames = p.Names
	}

	output, err := client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get item from %s: %w", table, err)
	}
	return output.Item, nil
}

// PutItem writes item, guarded by an optional condition. condition accepts
// the same inputs as condition.Resolve.
func PutItem(ctx context.Context, client interfaces.ItemAPI, table string, item Item, cond any, overrides Overrides) error {
	compiled, err := condition.Resolve(cond)
	if err != nil {
		return err
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	}
	if err := ApplyPut(input, compiled, overrides); err != nil {
		return err
	}
	if _, err := client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("failed to put item into %s: %w", table, err)
	}
	return nil
}

// DeleteItem deletes the item whose key is built from values, guarded by an
// optional condition.
func DeleteItem(ctx context.Context, client interfaces.ItemAPI, table string, ks *KeySchema, values map[string]any, cond any, overrides Overrides) error {
	key, err := ks.Key(values)
	if err != nil {
		return err
	}
	compiled, err := condition.Resolve(cond)
	if err != nil {
		return err
	}
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       key,
	}
	if err := ApplyDelete(input, compiled, overrides); err != nil {
		return err
	}
	if _, err := client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete item from %s: %w", table, err)
	}
	return nil
}

// UpdateItem applies the actions built by fn to the item whose key is built
// from values and returns the item as it is after the update.
func UpdateItem(ctx context.Context, client interfaces.ItemAPI, table string, ks *KeySchema, values map[string]any, fn func(update.Builder) update.Builder, cond any, overrides Overrides) (Item, error) {
	key, err := ks.Key(values)
	if err != nil {
		return nil, err
	}
	compiledUpdate, err := update.Resolve(fn)
	if err != nil {
		return nil, err
	}
	compiledCond, err := condition.Resolve(cond)
	if err != nil {
		return nil, err
	}
	input := &dynamodb.UpdateItemInput{
		TableName:    aws.String(table),
		Key:          key,
		ReturnValues: types.ReturnValueAllNew,
	}
	if err := ApplyUpdate(input, compiledUpdate, compiledCond, overrides); err != nil {
		return nil, err
	}

	output, err := client.UpdateItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to update item in %s: %w", table, err)
	}
	return output.Attributes, nil
}

// Query reads every page of items matching the key condition built from
// values, narrowed by an optional filter. A positive Limit caps the total
// number of items returned.
func Query(ctx context.Context, client interfaces.ReadAPI, table string, ks *KeySchema, values map[string]any, filter any, opts QueryOptions) ([]Item, error) {
	keyCond, err := KeyCondition(ks, values, opts.Sort...)
	if err != nil {
		return nil, err
	}
	compiledFilter, err := condition.Resolve(filter)
	if err != nil {
		return nil, err
	}

	overrides := opts.Overrides
	projection := Projection(opts.Projection...)
	if !projection.IsEmpty() {
		overrides.Names = mergeOverrideNames(projection.Names, overrides.Names)
	}

	input := &dynamodb.QueryInput{
		TableName:        aws.String(table),
		ScanIndexForward: aws.Bool(!opts.Descending),
	}
	if opts.IndexName != "" {
		input.IndexName = aws.String(opts.IndexName)
	}
	if opts.ConsistentRead {
		input.ConsistentRead = aws.Bool(true)
	}
	if !projection.IsEmpty() {
		input.ProjectionExpression = aws.String(projection.Expression)
	}
	if err := ApplyQuery(input, keyCond, compiledFilter, overrides); err != nil {
		return nil, err
	}

	var items []Item
	for {
		if opts.Limit > 0 {
			input.Limit = aws.Int32(opts.Limit - int32(len(items)))
		}
		output, err := client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", table, err)
		}
		items = append(items, output.Items...)
		if len(output.LastEvaluatedKey) == 0 || (opts.Limit > 0 && int32(len(items)) >= opts.Limit) {
			return items, nil
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
}

// Scan reads every page of the table, narrowed by an optional filter.
func Scan(ctx context.Context, client interfaces.ReadAPI, table string, filter any, overrides Overrides) ([]Item, error) {
	compiled, err := condition.Resolve(filter)
	if err != nil {
		return nil, err
	}
	input := &dynamodb.ScanInput{TableName: aws.String(table)}
	if err := ApplyScan(input, compiled, overrides); err != nil {
		return nil, err
	}

	var items []Item
	for {
		output, err := client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		items = append(items, output.Items...)
		if len(output.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
}

func mergeOverrideNames(base, top map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(top))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range top {
		out[k] = v
	}
	return out
}
