package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMetrics(t *testing.T) {
	t.Run("Disabled returns Noop", func(t *testing.T) {
		provider, err := SetupMetrics(Config{Enabled: false})
		require.NoError(t, err)

		assert.IsType(t, &NoopProvider{}, provider)
		assert.NoError(t, provider.Count("x", 1, nil))
		assert.NoError(t, provider.Gauge("x", 1, nil))
		assert.NoError(t, provider.Histogram("x", 1, nil))
	})

	t.Run("Enabled returns Datadog", func(t *testing.T) {
		provider, err := SetupMetrics(Config{
			Enabled:   true,
			Addr:      "localhost:8125",
			Namespace: "devs.",
			Tags:      []string{"env:test"},
		})
		// statsd.New sobre UDP não exige o agente rodando
		require.NoError(t, err)

		dd, ok := provider.(*DatadogProvider)
		require.True(t, ok, "Esperado DatadogProvider, recebido %T", provider)
		assert.NoError(t, dd.Count("entity.saved", 1, []string{"entity:Dev"}))
		assert.NoError(t, dd.Close())
	})
}
