// dyndb/query_test.go
package dyndb_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func item(id, name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":   &types.AttributeValueMemberS{Value: id},
		"name": &types.AttributeValueMemberS{Value: name},
	}
}

func TestQuery_Exec(t *testing.T) {
	t.Parallel()

	mockClient := &MockDynamoClient{}
	store := createTestStore(t, mockClient)

	mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.KeyConditionExpression != nil &&
			in.FilterExpression != nil &&
			*in.IndexName == "by-name" &&
			*in.Limit == 10 &&
			!*in.ScanIndexForward
	})).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{item("1", "Item1"), item("2", "Item2")},
		LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "2"}},
	}, nil)

	items, token, err := store.Query().
		Index("by-name").
		KeyEqual("name", "Item1").
		FilterEqual("email", "item1@test.com").
		Limit(10).
		Descending().
		Exec(context.Background())

	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.NotEmpty(t, token)
	mockClient.AssertExpectations(t)
}

func TestQuery_WithoutKeyRunsScan(t *testing.T) {
	t.Parallel()

	mockClient := &MockDynamoClient{}
	store := createTestStore(t, mockClient)

	mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.FilterExpression != nil
	})).Return(&dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{item("1", "a")}}, nil)

	items, token, err := store.Query().FilterContains("name", "a").Exec(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Empty(t, token)
}

func TestScan_AllFollowsPages(t *testing.T) {
	t.Parallel()

	mockClient := &MockDynamoClient{}
	store := createTestStore(t, mockClient)

	mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.ScanOutput{
		Items:            []map[string]types.AttributeValue{item("1", "a")},
		LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "1"}},
	}, nil).Once()
	mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		start, ok := in.ExclusiveStartKey["id"].(*types.AttributeValueMemberS)
		return ok && start.Value == "1"
	})).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{item("2", "b")},
	}, nil).Once()

	items, err := store.Scan().All(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[1].Name)
	mockClient.AssertExpectations(t)
}

func TestQuery_PageTokenRoundTrip(t *testing.T) {
	t.Parallel()

	mockClient := &MockDynamoClient{}
	store := createTestStore(t, mockClient)

	mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.ScanOutput{
		LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "7"}},
	}, nil).Once()
	mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		start, ok := in.ExclusiveStartKey["id"].(*types.AttributeValueMemberS)
		return ok && start.Value == "7"
	})).Return(&dynamodb.ScanOutput{}, nil).Once()

	_, token, err := store.Scan().Exec(context.Background())
	require.NoError(t, err)

	_, next, err := store.Scan().LastKey(token).Exec(context.Background())
	require.NoError(t, err)
	assert.Empty(t, next)
	mockClient.AssertExpectations(t)
}

func TestQuery_Errors(t *testing.T) {
	t.Parallel()

	mockClient := &MockDynamoClient{}
	store := createTestStore(t, mockClient)

	_, _, err := store.Scan().LastKey("%%%").Exec(context.Background())
	assert.ErrorContains(t, err, "invalid page token")

	mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	_, _, err = store.Query().KeyEqual("id", "1").Exec(context.Background())
	assert.ErrorContains(t, err, "boom")
}
