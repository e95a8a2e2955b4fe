package dyndb

import (
	"context"
	"errors"
	"sort"

	"github.com/raywall/fast-entity-toolkit/easyrepo"
)

// Repo adapta um Store[T] ao contrato easyrepo.Repo[T]. A chave é a hash key
// da tabela e os atributos usam os nomes JSON da entidade.
type Repo[T any] struct {
	store   Store[T]
	hashKey string
}

var _ easyrepo.Repo[struct{}] = (*Repo[struct{}])(nil)

// NewRepo cria o store com TagKey "json" (quando não informado) e o adapta.
func NewRepo[T any](client DynamoDBClient, cfg TableConfig) (*Repo[T], error) {
	if cfg.TagKey == "" {
		cfg.TagKey = "json"
	}
	store, err := newStore[T](client, cfg)
	if err != nil {
		return nil, err
	}
	return &Repo[T]{store: store, hashKey: store.cfg.HashKey}, nil
}

func (r *Repo[T]) All(ctx context.Context) ([]T, error) {
	return r.store.Scan().All(ctx)
}

func (r *Repo[T]) ByID(ctx context.Context, id string) (*T, error) {
	return r.store.Get(ctx, id, nil)
}

// Search faz um Scan com um FilterEqual por propriedade.
func (r *Repo[T]) Search(ctx context.Context, filter map[string]any) ([]T, error) {
	var zero T
	filter, err := easyrepo.Normalize(zero, filter)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(filter))
	for name := range filter {
		names = append(names, name)
	}
	sort.Strings(names)

	qb := r.store.Scan()
	for _, name := range names {
		qb = qb.FilterEqual(name, filter[name])
	}
	return qb.All(ctx)
}

func (r *Repo[T]) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.store.Get(ctx, id, nil)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *Repo[T]) Save(ctx context.Context, item T) (*T, error) {
	if _, err := easyrepo.IDOf(item, r.hashKey); err != nil {
		return nil, err
	}
	if err := r.store.Insert(ctx, item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repo[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	var zero T
	fields, err := easyrepo.Normalize(zero, fields)
	if err != nil {
		return nil, err
	}
	return r.store.Update(ctx, id, nil, fields)
}

func (r *Repo[T]) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id, nil)
}

// IDProperty é a hash key da tabela.
func (r *Repo[T]) IDProperty() string { return r.hashKey }
