package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/raywall/fast-entity-toolkit/easyrepo"
	"github.com/raywall/fast-entity-toolkit/exception"
	"github.com/raywall/fast-entity-toolkit/query"
	"github.com/rs/zerolog"
)

// código SQLSTATE de unique_violation
const uniqueViolation = "23505"

// Config da conexão e da tabela.
type Config struct {
	Driver   string        `env:"SQL_DRIVER" envDefault:"postgres"`
	DSN      string        `env:"SQL_DSN" envRequired:"true"`
	Table    string        `env:"SQL_TABLE" envRequired:"true"`
	IDColumn string        `env:"SQL_ID_COLUMN" envDefault:"id"`
	Timeout  time.Duration `env:"SQL_TIMEOUT" envDefault:"5s"`
}

// Open abre o pool e confere a conexão.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão SQL: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao conectar no banco: %w", err)
	}
	return db, nil
}

// Repository implementa easyrepo.Repo[T] sobre uma tabela. As colunas têm os
// nomes das propriedades da entidade (tag json).
type Repository[T any] struct {
	db       *sql.DB
	table    string
	idColumn string
	dialect  query.Dialect
	timeout  time.Duration
	logger   zerolog.Logger
}

var _ easyrepo.Repo[struct{}] = (*Repository[struct{}])(nil)

type Option[T any] func(*Repository[T])

func WithDialect[T any](d query.Dialect) Option[T] {
	return func(r *Repository[T]) { r.dialect = d }
}

func WithLogger[T any](l zerolog.Logger) Option[T] {
	return func(r *Repository[T]) { r.logger = l }
}

// New valida a tabela e a coluna chave e cria o repositório (dialeto Postgres).
func New[T any](db *sql.DB, cfg Config, opts ...Option[T]) (*Repository[T], error) {
	if !query.ValidIdentifier(cfg.Table) || !query.ValidIdentifier(cfg.IDColumn) {
		return nil, fmt.Errorf("%w: %q.%q", query.ErrInvalidIdentifier, cfg.Table, cfg.IDColumn)
	}
	r := &Repository[T]{
		db:       db,
		table:    cfg.Table,
		idColumn: cfg.IDColumn,
		dialect:  query.Postgres,
		timeout:  cfg.Timeout,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	return r.selectAll(ctx, query.SelectFrom(r.table).OrderBy(r.idColumn))
}

func (r *Repository[T]) ByID(ctx context.Context, id string) (*T, error) {
	items, err := r.selectAll(ctx, query.SelectFrom(r.table).Where(r.idColumn, "=", id).Limit(1))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, exception.DoesNotExist
	}
	return &items[0], nil
}

// Search monta um WHERE com uma igualdade por propriedade do filtro.
func (r *Repository[T]) Search(ctx context.Context, filter map[string]any) ([]T, error) {
	filter, err := r.properties(filter)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sel := query.SelectFrom(r.table).OrderBy(r.idColumn)
	for _, k := range keys {
		sel.Where(k, "=", filter[k])
	}
	return r.selectAll(ctx, sel)
}

func (r *Repository[T]) Exists(ctx context.Context, id string) (bool, error) {
	stmt, args, err := query.SelectFrom(r.table, r.idColumn).Where(r.idColumn, "=", id).Limit(1).Bind(r.dialect)
	if err != nil {
		return false, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var found any
	err = r.db.QueryRowContext(ctx, stmt, args...).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("erro na query SQL: %w", err)
	}
	return true, nil
}

// Save insere a linha; chave duplicada vira easyrepo.ErrItemAlreadyExists.
func (r *Repository[T]) Save(ctx context.Context, item T) (*T, error) {
	if _, err := easyrepo.IDOf(item, r.idColumn); err != nil {
		return nil, err
	}
	fields, err := columns(item)
	if err != nil {
		return nil, err
	}
	stmt, args, err := query.InsertInto(r.table, fields).Bind(r.dialect)
	if err != nil {
		return nil, err
	}
	return r.returning(ctx, stmt, args)
}

func (r *Repository[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	fields, err := r.properties(fields)
	if err != nil {
		return nil, err
	}
	if _, ok := fields[r.idColumn]; ok {
		return nil, fmt.Errorf("%w: %s cannot be updated", easyrepo.ErrInvalidInput, r.idColumn)
	}

	values := make(map[string]any, len(fields))
	for k, v := range fields {
		c, err := column(v)
		if err != nil {
			return nil, err
		}
		values[k] = c
	}
	stmt, args, err := query.NewUpdate(r.table, values).Where(r.idColumn, "=", id).Bind(r.dialect)
	if err != nil {
		return nil, err
	}
	return r.returning(ctx, stmt, args)
}

func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	stmt, args, err := query.DeleteFrom(r.table).Where(r.idColumn, "=", id).Bind(r.dialect)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("erro na query SQL: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return exception.DoesNotExist
	}
	return nil
}

func (r *Repository[T]) returning(ctx context.Context, stmt string, args []any) (*T, error) {
	items, err := r.query(ctx, stmt, args)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", easyrepo.ErrItemAlreadyExists, pqErr.Detail)
		}
		return nil, err
	}
	if len(items) == 0 {
		return nil, exception.DoesNotExist
	}
	return &items[0], nil
}

func (r *Repository[T]) selectAll(ctx context.Context, sel *query.Select) ([]T, error) {
	stmt, args, err := sel.Bind(r.dialect)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, stmt, args)
}

func (r *Repository[T]) query(ctx context.Context, stmt string, args []any) ([]T, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	r.logger.Debug().Str("query", stmt).Int("args", len(args)).Msg("sql")
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("erro na query SQL: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	valuePtrs := make([]any, len(cols))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	items := make([]T, 0)
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}
		entry := make(map[string]any, len(cols))
		for i, col := range cols {
			entry[col] = scanned(values[i])
		}
		item, err := decode[T](entry)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// properties troca nomes Go pelos nomes de propriedade, que são as colunas.
func (r *Repository[T]) properties(fields map[string]any) (map[string]any, error) {
	var zero T
	return easyrepo.Normalize(zero, fields)
}

// columns converte a entidade no mapa propriedade -> valor de coluna.
func columns(item any) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: entity must encode as an object", easyrepo.ErrInvalidInput)
	}
	for k, v := range doc {
		if doc[k], err = column(v); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// column grava objetos e listas como JSON (colunas jsonb).
func column(v any) (any, error) {
	switch v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	return v, nil
}

// scanned normaliza o valor lido do driver. []byte vira número, JSON ou texto.
func scanned(v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	s := string(b)
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return json.Number(s)
	}
	if len(s) > 0 && (s[0] == '{' || s[0] == '[') && json.Valid(b) {
		return json.RawMessage(append([]byte(nil), b...))
	}
	return s
}

func decode[T any](entry map[string]any) (T, error) {
	var item T
	raw, err := json.Marshal(entry)
	if err != nil {
		return item, err
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, fmt.Errorf("erro ao converter linha: %w", err)
	}
	return item, nil
}

// IDProperty é a coluna chave.
func (r *Repository[T]) IDProperty() string { return r.idColumn }
