package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raywall/fast-entity-toolkit/easyrepo"
	"github.com/raywall/fast-entity-toolkit/meta"
	"github.com/raywall/fast-entity-toolkit/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config do Redis usado como cache de leitura.
type Config struct {
	URL          string        `env:"REDIS_URL"`
	TTL          time.Duration `env:"REDIS_TTL" envDefault:"5m"`
	Prefix       string        `env:"REDIS_PREFIX" envDefault:"entity"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Client é o subconjunto do go-redis usado pelo cache. *redis.Client o implementa.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewClient conecta no Redis. Retorna nil quando a URL está vazia (cache desligado).
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Repo decora um easyrepo.Repo[T] com cache read-through por id. Falhas do
// Redis não interrompem a operação: o repositório de origem continua valendo.
type Repo[T any] struct {
	inner   easyrepo.Repo[T]
	client  Client
	ttl     time.Duration
	prefix  string
	metrics *metrics.Processor
	logger  zerolog.Logger
}

var _ easyrepo.Repo[struct{}] = (*Repo[struct{}])(nil)

type Option[T any] func(*Repo[T])

func WithMetrics[T any](p *metrics.Processor) Option[T] {
	return func(r *Repo[T]) { r.metrics = p }
}

func WithLogger[T any](l zerolog.Logger) Option[T] {
	return func(r *Repo[T]) { r.logger = l }
}

// Wrap cria o decorator. As chaves ficam em "<prefix>:<Tipo>:<id>".
func Wrap[T any](inner easyrepo.Repo[T], client Client, cfg Config, opts ...Option[T]) *Repo[T] {
	var zero T
	prefix := meta.TypeName(zero)
	if cfg.Prefix != "" {
		prefix = cfg.Prefix + ":" + prefix
	}
	r := &Repo[T]{
		inner:  inner,
		client: client,
		ttl:    cfg.TTL,
		prefix: prefix,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repo[T]) key(id string) string { return r.prefix + ":" + id }

func (r *Repo[T]) All(ctx context.Context) ([]T, error) { return r.inner.All(ctx) }

func (r *Repo[T]) Search(ctx context.Context, filter map[string]any) ([]T, error) {
	return r.inner.Search(ctx, filter)
}

func (r *Repo[T]) ByID(ctx context.Context, id string) (*T, error) {
	if item, ok := r.cached(ctx, id); ok {
		return item, nil
	}
	item, err := r.inner.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, id, item)
	return item, nil
}

func (r *Repo[T]) Exists(ctx context.Context, id string) (bool, error) {
	if _, ok := r.cached(ctx, id); ok {
		return true, nil
	}
	return r.inner.Exists(ctx, id)
}

func (r *Repo[T]) Save(ctx context.Context, item T) (*T, error) {
	saved, err := r.inner.Save(ctx, item)
	if err != nil {
		return nil, err
	}
	if id, err := easyrepo.IDOf(*saved, idProperty(r.inner)); err == nil {
		r.store(ctx, id, saved)
	}
	return saved, nil
}

func (r *Repo[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	updated, err := r.inner.Update(ctx, id, fields)
	if err != nil {
		r.evict(ctx, id)
		return nil, err
	}
	r.store(ctx, id, updated)
	return updated, nil
}

func (r *Repo[T]) Delete(ctx context.Context, id string) error {
	err := r.inner.Delete(ctx, id)
	r.evict(ctx, id)
	return err
}

func (r *Repo[T]) cached(ctx context.Context, id string) (*T, bool) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("key", r.key(id)).Msg("falha ao ler do cache")
		}
		r.emit("cache_miss")
		return nil, false
	}

	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		r.logger.Warn().Err(err).Str("key", r.key(id)).Msg("entrada de cache inválida")
		r.evict(ctx, id)
		r.emit("cache_miss")
		return nil, false
	}
	r.emit("cache_hit")
	return &item, true
}

func (r *Repo[T]) store(ctx context.Context, id string, item *T) {
	raw, err := json.Marshal(item)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.key(id), raw, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", r.key(id)).Msg("falha ao gravar no cache")
	}
}

func (r *Repo[T]) evict(ctx context.Context, id string) {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", r.key(id)).Msg("falha ao remover do cache")
	}
}

func (r *Repo[T]) emit(id string) {
	var zero T
	if err := r.metrics.Emit(id, 1, "entity:"+meta.TypeName(zero)); err != nil {
		r.logger.Debug().Err(err).Str("metric", id).Msg("falha ao enviar métrica")
	}
}

// idProperty descobre a propriedade chave do repositório decorado.
func idProperty(repo any) string {
	if k, ok := repo.(interface{ IDProperty() string }); ok {
		return k.IDProperty()
	}
	return "id"
}
