// dyndb/query.go
package dyndb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Query inicia uma Query
func (s *dynamoStore[T]) Query() *QueryBuilder[T] {
	return &QueryBuilder[T]{
		store:       s,
		scanForward: aws.Bool(true),
	}
}

// Scan inicia um Scan
func (s *dynamoStore[T]) Scan() *QueryBuilder[T] {
	return &QueryBuilder[T]{
		store:  s,
		isScan: true,
	}
}

func (qb *QueryBuilder[T]) Index(name string) *QueryBuilder[T] {
	qb.indexName = aws.String(name)
	return qb
}

func (qb *QueryBuilder[T]) KeyEqual(key string, value any) *QueryBuilder[T] {
	return qb.key(expression.KeyEqual(expression.Key(key), expression.Value(value)))
}

func (qb *QueryBuilder[T]) KeyBeginsWith(key, prefix string) *QueryBuilder[T] {
	return qb.key(expression.Key(key).BeginsWith(prefix))
}

func (qb *QueryBuilder[T]) FilterEqual(field string, value any) *QueryBuilder[T] {
	return qb.filter(expression.Equal(expression.Name(field), expression.Value(value)))
}

func (qb *QueryBuilder[T]) FilterContains(field string, value any) *QueryBuilder[T] {
	return qb.filter(expression.Contains(expression.Name(field), value))
}

// Project restringe os atributos retornados.
func (qb *QueryBuilder[T]) Project(fields ...string) *QueryBuilder[T] {
	for _, f := range fields {
		var p expression.ProjectionBuilder
		if qb.projection != nil {
			p = *qb.projection
		}
		p = p.AddNames(expression.Name(f))
		qb.projection = &p
	}
	return qb
}

func (qb *QueryBuilder[T]) Limit(n int32) *QueryBuilder[T] {
	qb.limit = &n
	return qb
}

// Descending inverte a ordem da sort key (apenas Query).
func (qb *QueryBuilder[T]) Descending() *QueryBuilder[T] {
	qb.scanForward = aws.Bool(false)
	return qb
}

// LastKey continua a partir do token devolvido por Exec. Token inválido falha no Exec.
func (qb *QueryBuilder[T]) LastKey(token string) *QueryBuilder[T] {
	if token == "" {
		return qb
	}
	key, err := parseToken(token)
	if err != nil {
		qb.err = fmt.Errorf("dyndb: invalid page token: %w", err)
		return qb
	}
	qb.lastKey = key
	return qb
}

func (qb *QueryBuilder[T]) key(cond expression.KeyConditionBuilder) *QueryBuilder[T] {
	if qb.keyCond != nil {
		cond = qb.keyCond.And(cond)
	}
	qb.keyCond = &cond
	return qb
}

func (qb *QueryBuilder[T]) filter(cond expression.ConditionBuilder) *QueryBuilder[T] {
	if qb.filterCond != nil {
		cond = qb.filterCond.And(cond)
	}
	qb.filterCond = &cond
	return qb
}

// Exec executa uma página da consulta e devolve o token da próxima ("" no fim).
func (qb *QueryBuilder[T]) Exec(ctx context.Context) ([]T, string, error) {
	if qb.err != nil {
		return nil, "", qb.err
	}

	var expr expression.Expression
	if (qb.keyCond != nil && !qb.isScan) || qb.filterCond != nil || qb.projection != nil {
		builder := expression.NewBuilder()
		if qb.keyCond != nil && !qb.isScan {
			builder = builder.WithKeyCondition(*qb.keyCond)
		}
		if qb.filterCond != nil {
			builder = builder.WithFilter(*qb.filterCond)
		}
		if qb.projection != nil {
			builder = builder.WithProjection(*qb.projection)
		}

		var err error
		if expr, err = builder.Build(); err != nil {
			return nil, "", err
		}
	}

	if qb.isScan || qb.keyCond == nil {
		return qb.execScan(ctx, expr)
	}
	return qb.execQuery(ctx, expr)
}

// All percorre todas as páginas.
func (qb *QueryBuilder[T]) All(ctx context.Context) ([]T, error) {
	all := make([]T, 0)
	for {
		items, token, err := qb.Exec(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if token == "" {
			return all, nil
		}
		qb.LastKey(token)
	}
}

func (qb *QueryBuilder[T]) execQuery(ctx context.Context, expr expression.Expression) ([]T, string, error) {
	out, err := qb.store.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(qb.store.cfg.TableName),
		IndexName:                 qb.indexName,
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     qb.limit,
		ScanIndexForward:          qb.scanForward,
		ExclusiveStartKey:         qb.lastKey,
	})
	if err != nil {
		return nil, "", fmt.Errorf("dyndb: query failed: %w", err)
	}
	return qb.unmarshalResults(out.Items, out.LastEvaluatedKey)
}

func (qb *QueryBuilder[T]) execScan(ctx context.Context, expr expression.Expression) ([]T, string, error) {
	out, err := qb.store.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(qb.store.cfg.TableName),
		IndexName:                 qb.indexName,
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     qb.limit,
		ExclusiveStartKey:         qb.lastKey,
	})
	if err != nil {
		return nil, "", fmt.Errorf("dyndb: scan failed: %w", err)
	}
	return qb.unmarshalResults(out.Items, out.LastEvaluatedKey)
}

func (qb *QueryBuilder[T]) unmarshalResults(
	items []map[string]types.AttributeValue,
	lastKey map[string]types.AttributeValue,
) ([]T, string, error) {
	result := make([]T, 0, len(items))
	for _, item := range items {
		var t T
		if err := qb.store.unmarshal(item, &t); err != nil {
			return nil, "", err
		}
		result = append(result, t)
	}

	token, err := pageToken(lastKey)
	if err != nil {
		return nil, "", err
	}
	return result, token, nil
}
