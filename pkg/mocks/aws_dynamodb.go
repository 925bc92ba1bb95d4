// Package mocks provides testify mocks of the DynamoDB client and helpers for
// building canned SDK outputs.
package mocks

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/mock"

	"github.com/theory-cloud/tablekit/pkg/interfaces"
)

// MockDynamoDBClient provides a mock implementation of the AWS DynamoDB client.
//
// Example usage:
//
//	mockClient := new(mocks.MockDynamoDBClient)
//	mockClient.On("BatchGetItem", mock.Anything, mock.Anything, mock.Anything).
//		Return(mocks.NewMockBatchGetOutput(nil, nil), nil)
type MockDynamoDBClient struct {
	mock.Mock
}

var _ interfaces.DynamoDBClientInterface = (*MockDynamoDBClient)(nil)

// output unpacks the (*T, error) pair registered with Return
func output[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	out, ok := args.Get(0).(*T)
	if !ok {
		panic(fmt.Sprintf("unexpected type: expected %T, got %T", out, args.Get(0)))
	}
	return out, args.Error(1)
}

// GetItem mocks the DynamoDB GetItem operation
func (m *MockDynamoDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return output[dynamodb.GetItemOutput](m.Called(ctx, params, optFns))
}

// PutItem mocks the DynamoDB PutItem operation
func (m *MockDynamoDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return output[dynamodb.PutItemOutput](m.Called(ctx, params, optFns))
}

// DeleteItem mocks the DynamoDB DeleteItem operation
func (m *MockDynamoDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return output[dynamodb.DeleteItemOutput](m.Called(ctx, params, optFns))
}

// UpdateItem mocks the DynamoDB UpdateItem operation
func (m *MockDynamoDBClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return output[dynamodb.UpdateItemOutput](m.Called(ctx, params, optFns))
}

// Query mocks the DynamoDB Query operation
func (m *MockDynamoDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return output[dynamodb.QueryOutput](m.Called(ctx, params, optFns))
}

// Scan mocks the DynamoDB Scan operation
func (m *MockDynamoDBClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return output[dynamodb.ScanOutput](m.Called(ctx, params, optFns))
}

// BatchGetItem mocks the DynamoDB BatchGetItem operation
func (m *MockDynamoDBClient) BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	return output[dynamodb.BatchGetItemOutput](m.Called(ctx, params, optFns))
}

// BatchWriteItem mocks the DynamoDB BatchWriteItem operation
func (m *MockDynamoDBClient) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	return output[dynamodb.BatchWriteItemOutput](m.Called(ctx, params, optFns))
}

// Helper functions for creating common mock responses

// NewMockBatchGetOutput creates a BatchGetItem output with the given
// responses and unprocessed keys (both keyed by table name).
func NewMockBatchGetOutput(responses map[string][]map[string]types.AttributeValue, unprocessed map[string]types.KeysAndAttributes) *dynamodb.BatchGetItemOutput {
	return &dynamodb.BatchGetItemOutput{
		Responses:       responses,
		UnprocessedKeys: unprocessed,
	}
}

// NewMockBatchWriteOutput creates a BatchWriteItem output with the given unprocessed items
func NewMockBatchWriteOutput(unprocessed map[string][]types.WriteRequest) *dynamodb.BatchWriteItemOutput {
	return &dynamodb.BatchWriteItemOutput{UnprocessedItems: unprocessed}
}

// NewMockQueryOutput creates a Query output holding items
func NewMockQueryOutput(items ...map[string]types.AttributeValue) *dynamodb.QueryOutput {
	return &dynamodb.QueryOutput{
		Items: items,
		Count: int32(len(items)),
	}
}

// NewMockScanOutput creates a Scan output holding items
func NewMockScanOutput(items ...map[string]types.AttributeValue) *dynamodb.ScanOutput {
	return &dynamodb.ScanOutput{
		Items: items,
		Count: int32(len(items)),
	}
}
