package easyrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/raywall/fast-entity-toolkit/exception"
	"github.com/raywall/fast-entity-toolkit/meta"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrItemAlreadyExists = errors.New("item already exists")
	ErrUnknownProperty   = errors.New("unknown property")
)

// Repo é o contrato de armazenamento usado pelo serviço. Implementações
// retornam exception.DoesNotExist quando o item não existe e
// ErrItemAlreadyExists quando Save encontra a chave ocupada.
type Repo[T any] interface {
	All(ctx context.Context) ([]T, error)
	ByID(ctx context.Context, id string) (*T, error)
	Search(ctx context.Context, filter map[string]any) ([]T, error)
	Exists(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, item T) (*T, error)
	Update(ctx context.Context, id string, fields map[string]any) (*T, error)
	Delete(ctx context.Context, id string) error
}

// IDOf lê a propriedade identificadora do item como string.
func IDOf(item any, property string) (string, error) {
	v, ok := meta.Lookup(item, property)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProperty, property)
	}
	id := fmt.Sprint(v)
	if v == nil || id == "" {
		return "", fmt.Errorf("%w: empty %s", ErrInvalidInput, property)
	}
	return id, nil
}

// Normalize troca as chaves dos campos pelos nomes de propriedade do item.
// Nomes Go são aceitos; chaves desconhecidas ou repetidas são rejeitadas.
func Normalize(item any, fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		prop, ok := meta.Resolve(item, k)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProperty, k)
		}
		if _, dup := out[prop]; dup {
			return nil, fmt.Errorf("%w: %s informed twice", ErrInvalidInput, prop)
		}
		out[prop] = v
	}
	return out, nil
}

// Merge aplica os campos sobre uma cópia do item.
func Merge[T any](item T, fields map[string]any) (T, error) {
	var merged T
	fields, err := Normalize(item, fields)
	if err != nil {
		return merged, err
	}

	doc, err := document(item)
	if err != nil {
		return merged, err
	}
	for k, v := range fields {
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return merged, err
	}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return merged, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return merged, nil
}

// Changes devolve as propriedades que diferem entre before e after, com os
// valores de after. Propriedades omitidas em after voltam como nil.
func Changes[T any](before, after T) (map[string]any, error) {
	old, err := document(before)
	if err != nil {
		return nil, err
	}
	cur, err := document(after)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any)
	for k, v := range cur {
		if prev, ok := old[k]; !ok || !reflect.DeepEqual(prev, v) {
			out[k] = v
		}
	}
	for k := range old {
		if _, ok := cur[k]; !ok {
			out[k] = nil
		}
	}
	return out, nil
}

func document(item any) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: entity must encode as an object", ErrInvalidInput)
	}
	return doc, nil
}

// Matches indica se todas as propriedades do filtro são iguais no item.
// A comparação usa a representação textual dos valores.
func Matches(item any, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := meta.Lookup(item, k)
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// MemoryRepository guarda os itens em memória. Útil em testes e demos.
type MemoryRepository[T any] struct {
	mu         sync.RWMutex
	idProperty string
	items      map[string]T
}

// NewMemoryRepository cria o repositório; idProperty é o nome da propriedade chave.
func NewMemoryRepository[T any](idProperty string) *MemoryRepository[T] {
	return &MemoryRepository[T]{idProperty: idProperty, items: make(map[string]T)}
}

func (r *MemoryRepository[T]) All(_ context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *MemoryRepository[T]) ByID(_ context.Context, id string) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, exception.DoesNotExist
	}
	return &item, nil
}

func (r *MemoryRepository[T]) Search(ctx context.Context, filter map[string]any) ([]T, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for _, item := range all {
		if Matches(item, filter) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *MemoryRepository[T]) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[id]
	return ok, nil
}

func (r *MemoryRepository[T]) Save(_ context.Context, item T) (*T, error) {
	id, err := IDOf(item, r.idProperty)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrItemAlreadyExists, id)
	}
	r.items[id] = item
	return &item, nil
}

func (r *MemoryRepository[T]) Update(_ context.Context, id string, fields map[string]any) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, exception.DoesNotExist
	}
	merged, err := Merge(item, fields)
	if err != nil {
		return nil, err
	}
	r.items[id] = merged
	return &merged, nil
}

func (r *MemoryRepository[T]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return exception.DoesNotExist
	}
	delete(r.items, id)
	return nil
}

// IDProperty é o nome da propriedade chave.
func (r *MemoryRepository[T]) IDProperty() string { return r.idProperty }
