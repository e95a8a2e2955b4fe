package easyrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/raywall/fast-entity-toolkit/meta"
	"github.com/raywall/fast-entity-toolkit/pkg/metrics"
	"github.com/raywall/fast-entity-toolkit/validation"
	"github.com/rs/zerolog"
)

type HookType int

const (
	BeforeCreate HookType = iota
	BeforeUpdate
)

var (
	ErrEmptyCustomMethodName = errors.New("empty custom service method name")
	ErrMethodNameNotFound    = errors.New("method name not found")
)

// EasyService centralizes business logic and data validation.
// It wraps a Repo and validates every write with the validation engine.
type EasyService[T any] struct {
	search               *Search[T]
	engine               *validation.Engine
	repo                 Repo[T]
	customServiceMethods map[string]CustomServiceMethod[T]
	hooks                *Hooks[T]
	metrics              *metrics.Processor
	logger               zerolog.Logger
}

// Hooks stores the business rules registered for execution before creates and updates
type Hooks[T any] struct {
	BeforeCreate []BeforeSaveHook[T]
	BeforeUpdate []BeforeSaveHook[T]
}

// BeforeSaveHook runs after validation and before the write. On updates, item is
// the merged entity and existing is the stored one; on creates existing is nil.
type BeforeSaveHook[T any] func(ctx context.Context, item *T, existing *T) error

// CustomServiceMethod allows you to inject a custom method
type CustomServiceMethod[T any] func(ctx context.Context, args ...any) (*T, error)

// ServiceOption configures the EasyService
type ServiceOption[T any] func(*EasyService[T])

func WithEngine[T any](e *validation.Engine) ServiceOption[T] {
	return func(s *EasyService[T]) { s.engine = e }
}

func WithMetrics[T any](p *metrics.Processor) ServiceOption[T] {
	return func(s *EasyService[T]) { s.metrics = p }
}

func WithLogger[T any](l zerolog.Logger) ServiceOption[T] {
	return func(s *EasyService[T]) { s.logger = l }
}

// NewService creates a new EasyService over the repository, using the default validation engine
func NewService[T any](repo Repo[T], opts ...ServiceOption[T]) *EasyService[T] {
	s := &EasyService[T]{
		search:               NewSearch(repo),
		engine:               validation.Default(),
		repo:                 repo,
		customServiceMethods: make(map[string]CustomServiceMethod[T]),
		hooks: &Hooks[T]{
			BeforeCreate: make([]BeforeSaveHook[T], 0),
			BeforeUpdate: make([]BeforeSaveHook[T], 0),
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	var zero T
	s.logger = s.logger.With().Str("component", "easyrepo").Str("entity", meta.TypeName(zero)).Logger()
	return s
}

// RegisterHook allows the injection of custom logic for validating and handling the request
func (s *EasyService[T]) RegisterHook(hookType HookType, fn BeforeSaveHook[T]) {
	switch hookType {
	case BeforeCreate:
		s.hooks.BeforeCreate = append(s.hooks.BeforeCreate, fn)
	case BeforeUpdate:
		s.hooks.BeforeUpdate = append(s.hooks.BeforeUpdate, fn)
	}
}

// RegisterCustomServiceMethod allows you to inject a custom method
func (s *EasyService[T]) RegisterCustomServiceMethod(name string, fn CustomServiceMethod[T]) {
	s.customServiceMethods[name] = fn
}

// List returns all items
func (s *EasyService[T]) List(ctx context.Context) ([]T, error) {
	return s.search.All(ctx)
}

// Get retrieves an item by id. Returns ErrInvalidInput for an empty id
func (s *EasyService[T]) Get(ctx context.Context, id string) (*T, error) {
	return s.search.ByID(ctx, id)
}

// Search returns the items matching every property of the filter. A nil
// filter returns an empty list.
func (s *EasyService[T]) Search(ctx context.Context, filter map[string]any) ([]T, error) {
	return s.search.Search(ctx, filter)
}

func (s *EasyService[T]) Exists(ctx context.Context, id string) (bool, error) {
	return s.search.Exists(ctx, id)
}

// Create validates the item and persists it. Invalid items are rejected
// with validation.Results as the error.
func (s *EasyService[T]) Create(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, ErrInvalidInput
	}
	if err := s.validate(*item); err != nil {
		return nil, err
	}
	for _, hook := range s.hooks.BeforeCreate {
		if err := hook(ctx, item, nil); err != nil {
			return nil, err
		}
	}

	saved, err := s.repo.Save(ctx, *item)
	if err != nil {
		return nil, err
	}
	s.emit("entity_saved", 1, "op:create")
	return saved, nil
}

// Update merges the fields over the stored item, validates the result and
// sends only the changed fields to the repository. Changes made by
// BeforeUpdate hooks are persisted too.
func (s *EasyService[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	if id == "" || len(fields) == 0 {
		return nil, ErrInvalidInput
	}

	existing, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merged, err := Merge(*existing, fields)
	if err != nil {
		return nil, err
	}
	if err := s.validate(merged); err != nil {
		return nil, err
	}
	for _, hook := range s.hooks.BeforeUpdate {
		if err := hook(ctx, &merged, existing); err != nil {
			return nil, err
		}
	}

	changes, err := Changes(*existing, merged)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return &merged, nil
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	s.emit("entity_saved", 1, "op:update")
	return updated, nil
}

// Delete removes an item by id
func (s *EasyService[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// RunCustomServiceMethod allows you to execute a custom service method
func (s *EasyService[T]) RunCustomServiceMethod(ctx context.Context, name string, args ...any) (*T, error) {
	if name == "" {
		return nil, ErrEmptyCustomMethodName
	}
	fn, ok := s.customServiceMethods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNameNotFound, name)
	}
	return fn(ctx, args...)
}

func (s *EasyService[T]) validate(item T) error {
	_, err := validation.RejectWith(s.engine, item)
	if rs, ok := validation.ExtractResults(err); ok {
		s.logger.Debug().Strs("fields", rs.Fields()).Msg("entity rejected")
		s.emit("validation_failed", float64(len(rs)), "entity:"+meta.TypeName(item))
	}
	return err
}

func (s *EasyService[T]) emit(id string, value float64, tags ...string) {
	if err := s.metrics.Emit(id, value, tags...); err != nil {
		s.logger.Warn().Err(err).Str("metric", id).Msg("falha ao enviar métrica")
	}
}
