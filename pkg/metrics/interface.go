package metrics

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por Prometheus ou Logging sem alterar a lógica de negócio.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// MetricType define os tipos suportados.
type MetricType string

const (
	TypeCount     MetricType = "count"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// Nomes das métricas emitidas pelo toolkit.
const (
	RequestCount       = "http.request.count"
	RequestLatency     = "http.request.latency_ms"
	ValidationFailures = "entity.validation.failures"
	EntitySaved        = "entity.saved"
	CacheHit           = "cache.hit"
	CacheMiss          = "cache.miss"
)

// MetricDefinition armazena os metadados da métrica (nome real, tipo).
type MetricDefinition struct {
	ID   string
	Name string
	Type MetricType
}
