package easyrepo

import (
	"context"
	"fmt"

	"github.com/raywall/fast-entity-toolkit/verb"
)

// Service é o que os recursos HTTP precisam do EasyService.
type Service[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Search(ctx context.Context, filter map[string]any) ([]T, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id string, fields map[string]any) (*T, error)
	Delete(ctx context.Context, id string) error
}

// CollectionResource expõe a coleção: listagem, busca e criação.
type CollectionResource struct {
	All    verb.Action `json:"all" verb:"get,onNotFound=200"`
	Search verb.Action `json:"search" verb:"post,path=/search"`
	Create verb.Action `json:"create" verb:"post,onOk=201"`
}

// ItemResource expõe um item pelo id.
type ItemResource struct {
	ByID   verb.Action `json:"byId" verb:"get,path=/{id}"`
	Exists verb.Action `json:"exists" verb:"get,path=/{id}/exists"`
	Update verb.Action `json:"update" verb:"patch,path=/{id}"`
	Delete verb.Action `json:"delete" verb:"delete,path=/{id},onOk=204"`
}

// Collection liga as ações da coleção ao serviço.
func Collection[T any](svc Service[T]) CollectionResource {
	return CollectionResource{
		All: func(ctx context.Context, _ verb.Request) (any, error) {
			return svc.List(ctx)
		},
		Search: func(ctx context.Context, req verb.Request) (any, error) {
			var filter map[string]any
			if len(req.Body) > 0 {
				if err := req.Decode(&filter); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
				}
			}
			return svc.Search(ctx, filter)
		},
		Create: func(ctx context.Context, req verb.Request) (any, error) {
			var item T
			if err := req.Decode(&item); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return svc.Create(ctx, &item)
		},
	}
}

// Item liga as ações de item ao serviço.
func Item[T any](svc Service[T]) ItemResource {
	return ItemResource{
		ByID: func(ctx context.Context, req verb.Request) (any, error) {
			return svc.Get(ctx, req.Vars["id"])
		},
		Exists: func(ctx context.Context, req verb.Request) (any, error) {
			ok, err := svc.Exists(ctx, req.Vars["id"])
			if err != nil {
				return nil, err
			}
			return map[string]bool{"exists": ok}, nil
		},
		Update: func(ctx context.Context, req verb.Request) (any, error) {
			var fields map[string]any
			if err := req.Decode(&fields); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return svc.Update(ctx, req.Vars["id"], fields)
		},
		Delete: func(ctx context.Context, req verb.Request) (any, error) {
			return nil, svc.Delete(ctx, req.Vars["id"])
		},
	}
}
