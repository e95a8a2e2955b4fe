// dyndb/store.go
package dyndb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/fast-entity-toolkit/envloader"
)

const (
	maxBatchWrite = 25
	maxBatchGet   = 100
	defaultTTL    = 30 * 24 * time.Hour
)

type dynamoStore[T any] struct {
	client DynamoDBClient
	cfg    TableConfig
}

// New cria um store reutilizável. Sem TableName, a configuração vem do ambiente.
func New[T any](client DynamoDBClient, cfg TableConfig) (Store[T], error) {
	return newStore[T](client, cfg)
}

func newStore[T any](client DynamoDBClient, cfg TableConfig) (*dynamoStore[T], error) {
	if cfg.TableName == "" {
		if err := envloader.Load(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.TableName == "" || cfg.HashKey == "" {
		return nil, fmt.Errorf("dyndb: table name and hash key are required")
	}

	return &dynamoStore[T]{
		client: client,
		cfg:    cfg,
	}, nil
}

// Get item por chave primária
func (s *dynamoStore[T]) Get(ctx context.Context, hashKey, sortKey any) (*T, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.cfg.TableName),
		Key:            s.key(hashKey, sortKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dyndb: get failed: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item T
	if err := s.unmarshal(out.Item, &item); err != nil {
		return nil, fmt.Errorf("dyndb: unmarshal failed: %w", err)
	}
	return &item, nil
}

// Put item (upsert)
func (s *dynamoStore[T]) Put(ctx context.Context, item T) error {
	return s.put(ctx, item, nil)
}

// Insert grava com a condição attribute_not_exists(hashKey)
func (s *dynamoStore[T]) Insert(ctx context.Context, item T) error {
	cond := expression.AttributeNotExists(expression.Name(s.cfg.HashKey))
	err := s.put(ctx, item, &cond)
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrAlreadyExists
	}
	return err
}

func (s *dynamoStore[T]) put(ctx context.Context, item T, cond *expression.ConditionBuilder) error {
	av, err := s.marshal(item)
	if err != nil {
		return fmt.Errorf("dyndb: marshal failed: %w", err)
	}

	// TTL de 30 dias quando o atributo está configurado e ausente
	if s.cfg.TTLAttribute != "" {
		if _, ok := av[s.cfg.TTLAttribute]; !ok {
			av[s.cfg.TTLAttribute] = attr(time.Now().Add(defaultTTL).Unix())
		}
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.TableName),
		Item:      av,
	}
	if cond != nil {
		expr, err := expression.NewBuilder().WithCondition(*cond).Build()
		if err != nil {
			return fmt.Errorf("dyndb: condition expression failed: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
	}

	if _, err = s.client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("dyndb: put failed: %w", err)
	}
	return nil
}

// Update aplica SET para cada campo e devolve o item completo atualizado.
func (s *dynamoStore[T]) Update(ctx context.Context, hashKey, sortKey any, fields map[string]any) (*T, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("dyndb: update without fields")
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var update expression.UpdateBuilder
	for _, name := range names {
		if name == s.cfg.HashKey || (s.cfg.SortKey != "" && name == s.cfg.SortKey) {
			return nil, fmt.Errorf("dyndb: key attribute %s cannot be updated", name)
		}
		update = update.Set(expression.Name(name), expression.Value(fields[name]))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(s.cfg.HashKey))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("dyndb: update expression failed: %w", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.cfg.TableName),
		Key:                       s.key(hashKey, sortKey),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("dyndb: update failed: %w", err)
	}

	var item T
	if err := s.unmarshal(out.Attributes, &item); err != nil {
		return nil, fmt.Errorf("dyndb: unmarshal failed: %w", err)
	}
	return &item, nil
}

// Delete item
func (s *dynamoStore[T]) Delete(ctx context.Context, hashKey, sortKey any) error {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.cfg.TableName),
		Key:          s.key(hashKey, sortKey),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("dyndb: delete failed: %w", err)
	}
	if len(out.Attributes) == 0 {
		return ErrNotFound
	}
	return nil
}

// BatchWrite executa puts + deletes (máx 25 por chamada)
func (s *dynamoStore[T]) BatchWrite(ctx context.Context, puts []T, deletes [][2]any) error {
	var writeRequests []types.WriteRequest

	for _, item := range puts {
		itemMap, err := s.marshal(item)
		if err != nil {
			return fmt.Errorf("dyndb: batchwrite marshal failed: %w", err)
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: itemMap},
		})
	}
	for _, k := range deletes {
		writeRequests = append(writeRequests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: s.key(k[0], k[1])},
		})
	}

	for i := 0; i < len(writeRequests); i += maxBatchWrite {
		end := min(i+maxBatchWrite, len(writeRequests))
		pending := map[string][]types.WriteRequest{s.cfg.TableName: writeRequests[i:end]}

		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > 0 {
				if err := backoff(ctx, attempt); err != nil {
					return err
				}
			}
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("dyndb: batchwrite failed: %w", err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

// BatchGet busca até 100 chaves por chamada
func (s *dynamoStore[T]) BatchGet(ctx context.Context, keys [][2]any) ([]T, error) {
	keysToGet := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, k := range keys {
		keysToGet = append(keysToGet, s.key(k[0], k[1]))
	}

	results := make([]T, 0, len(keys))
	for i := 0; i < len(keysToGet); i += maxBatchGet {
		end := min(i+maxBatchGet, len(keysToGet))
		pending := map[string]types.KeysAndAttributes{
			s.cfg.TableName: {Keys: keysToGet[i:end], ConsistentRead: aws.Bool(true)},
		}

		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > 0 {
				if err := backoff(ctx, attempt); err != nil {
					return nil, err
				}
			}
			resp, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: pending})
			if err != nil {
				return nil, fmt.Errorf("dyndb: batchget failed: %w", err)
			}
			for _, item := range resp.Responses[s.cfg.TableName] {
				var t T
				if err := s.unmarshal(item, &t); err != nil {
					return nil, err
				}
				results = append(results, t)
			}
			pending = resp.UnprocessedKeys
		}
	}
	return results, nil
}

func (s *dynamoStore[T]) key(hashKey, sortKey any) map[string]types.AttributeValue {
	key := map[string]types.AttributeValue{
		s.cfg.HashKey: attr(hashKey),
	}
	if s.cfg.SortKey != "" && sortKey != nil {
		key[s.cfg.SortKey] = attr(sortKey)
	}
	return key
}

func (s *dynamoStore[T]) marshal(item T) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMapWithOptions(item, func(o *attributevalue.EncoderOptions) {
		if s.cfg.TagKey != "" {
			o.TagKey = s.cfg.TagKey
		}
	})
}

func (s *dynamoStore[T]) unmarshal(av map[string]types.AttributeValue, out *T) error {
	return attributevalue.UnmarshalMapWithOptions(av, out, func(o *attributevalue.DecoderOptions) {
		if s.cfg.TagKey != "" {
			o.TagKey = s.cfg.TagKey
		}
	})
}

// backoff espera 50ms, 100ms, 200ms... entre tentativas de itens não processados.
func backoff(ctx context.Context, attempt int) error {
	if attempt > 5 {
		return fmt.Errorf("dyndb: unprocessed items after %d attempts", attempt)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(50<<(attempt-1)) * time.Millisecond):
		return nil
	}
}

// attr converte qualquer valor para types.AttributeValue
func attr(v any) types.AttributeValue {
	if v == nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	return av
}
