package metrics

import (
	"fmt"
	"sync"
)

// Processor liga IDs lógicos às métricas reais e encaminha para o Provider.
type Processor struct {
	mu          sync.RWMutex
	definitions map[string]MetricDefinition
	provider    Provider
	prefix      string
}

// DefaultDefinitions são as métricas usadas pelo serviço de entidades e pelo cache.
func DefaultDefinitions() []MetricDefinition {
	return []MetricDefinition{
		{ID: "validation_failed", Name: ValidationFailures, Type: TypeCount},
		{ID: "entity_saved", Name: EntitySaved, Type: TypeCount},
		{ID: "cache_hit", Name: CacheHit, Type: TypeCount},
		{ID: "cache_miss", Name: CacheMiss, Type: TypeCount},
	}
}

// NewProcessor cria um processador linkando IDs de configuração aos seus tipos reais.
// O prefixo é adicionado ao nome de todas as métricas.
func NewProcessor(defs []MetricDefinition, provider Provider, prefix string) *Processor {
	p := &Processor{
		definitions: make(map[string]MetricDefinition, len(defs)),
		provider:    provider,
		prefix:      prefix,
	}
	for _, d := range defs {
		p.definitions[d.ID] = d
	}
	return p
}

// Define adiciona ou substitui uma definição.
func (p *Processor) Define(def MetricDefinition) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.definitions[def.ID] = def
}

// Emit envia o valor para a métrica identificada por id.
// Um Processor nil não faz nada.
func (p *Processor) Emit(id string, value float64, tags ...string) error {
	if p == nil || p.provider == nil {
		return nil
	}

	p.mu.RLock()
	def, exists := p.definitions[id]
	p.mu.RUnlock()
	if !exists {
		return fmt.Errorf("métrica não definida: %s", id)
	}

	name := def.Name
	if p.prefix != "" {
		name = p.prefix + "." + name
	}

	switch def.Type {
	case TypeCount:
		return p.provider.Count(name, value, tags)
	case TypeGauge:
		return p.provider.Gauge(name, value, tags)
	case TypeHistogram:
		return p.provider.Histogram(name, value, tags)
	default:
		return fmt.Errorf("tipo de métrica desconhecido: %s", def.Type)
	}
}
