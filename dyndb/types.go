// dyndb/types.go
package dyndb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/fast-entity-toolkit/easyrepo"
	"github.com/raywall/fast-entity-toolkit/exception"
)

var (
	// ErrNotFound é o erro padrão quando o item não existe. Equivale a exception.DoesNotExist.
	ErrNotFound = exception.DoesNotExist.Because(errors.New("dyndb: item not found"))
	// ErrAlreadyExists é devolvido por Insert quando a chave já está ocupada.
	ErrAlreadyExists = fmt.Errorf("dyndb: %w", easyrepo.ErrItemAlreadyExists)
)

// DynamoDBClient interface para abstrair o cliente DynamoDB
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store é a interface principal (genérica)
type Store[T any] interface {
	Get(ctx context.Context, hashKey, sortKey any) (*T, error)
	Put(ctx context.Context, item T) error
	// Insert grava o item apenas se a chave ainda não existir.
	Insert(ctx context.Context, item T) error
	// Update altera apenas os atributos informados; o item precisa existir.
	Update(ctx context.Context, hashKey, sortKey any, fields map[string]any) (*T, error)
	// Delete remove o item e retorna ErrNotFound quando ele não existe.
	Delete(ctx context.Context, hashKey, sortKey any) error

	BatchWrite(ctx context.Context, puts []T, deletes [][2]any) error
	BatchGet(ctx context.Context, keys [][2]any) ([]T, error)

	// Query e Scan retornam QueryBuilder[T]
	Query() *QueryBuilder[T]
	Scan() *QueryBuilder[T]
}

// TableConfig é a configuração da tabela
type TableConfig struct {
	TableName    string `env:"DYNAMODB_TABLE_NAME"`
	HashKey      string `env:"DYNAMODB_HASH_KEY" envDefault:"id"`
	SortKey      string `env:"DYNAMODB_SORT_KEY"`      // opcional
	TTLAttribute string `env:"DYNAMODB_TTL_ATTRIBUTE"` // opcional
	// TagKey é a tag de struct usada para nomear os atributos ("dynamodbav" quando vazia).
	TagKey string `env:"DYNAMODB_TAG_KEY"`
}

// QueryBuilder é o builder fluente de Query e Scan
type QueryBuilder[T any] struct {
	store       *dynamoStore[T]
	keyCond     *expression.KeyConditionBuilder
	filterCond  *expression.ConditionBuilder
	projection  *expression.ProjectionBuilder
	indexName   *string
	limit       *int32
	lastKey     map[string]types.AttributeValue
	scanForward *bool
	isScan      bool
	err         error
}

// pageToken serializa a LastEvaluatedKey. AttributeValue é uma interface, então
// a chave passa por um documento plano antes do JSON.
func pageToken(lastKey map[string]types.AttributeValue) (string, error) {
	if len(lastKey) == 0 {
		return "", nil
	}
	var doc map[string]any
	if err := attributevalue.UnmarshalMap(lastKey, &doc); err != nil {
		return "", err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func parseToken(token string) (map[string]types.AttributeValue, error) {
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return attributevalue.MarshalMap(doc)
}
