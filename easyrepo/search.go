package easyrepo

import "context"

// Search é o processo de leitura sobre um Repo.
type Search[T any] struct {
	repo Repo[T]
}

func NewSearch[T any](repo Repo[T]) *Search[T] {
	return &Search[T]{repo: repo}
}

func (s *Search[T]) All(ctx context.Context) ([]T, error) { return s.repo.All(ctx) }

func (s *Search[T]) ByID(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ByID(ctx, id)
}

// Search com filtro nil devolve uma lista vazia sem consultar o repositório.
func (s *Search[T]) Search(ctx context.Context, filter map[string]any) ([]T, error) {
	if filter == nil {
		return []T{}, nil
	}
	return s.repo.Search(ctx, filter)
}

func (s *Search[T]) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrInvalidInput
	}
	return s.repo.Exists(ctx, id)
}
