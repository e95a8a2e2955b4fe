package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config define o comportamento do logger. Carregado via envloader.
type Config struct {
	Enabled bool   `env:"LOG_ENABLED" envDefault:"true"`
	Level   string `env:"LOG_LEVEL" envDefault:"info" constraint:"oneof=trace debug info warn error"`
	Format  string `env:"LOG_FORMAT" envDefault:"json" constraint:"oneof=json console"`
}

// Configure inicializa o logger global baseando-se na configuração.
func Configure(cfg Config) zerolog.Logger {
	return New(cfg, os.Stdout)
}

// New cria o logger escrevendo em out.
func New(cfg Config, out io.Writer) zerolog.Logger {
	// Define o nível de log (default: info)
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// JSON para produção, Console "bonito" para local se solicitado
	output := out
	if !cfg.Enabled {
		output = io.Discard
	} else if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Logger()
}

// Component cria um logger filho identificado pelo componente.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
