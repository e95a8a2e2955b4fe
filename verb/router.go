package verb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/raywall/fast-entity-toolkit/exception"
	"github.com/raywall/fast-entity-toolkit/meta"
	"github.com/raywall/fast-entity-toolkit/validation"
	"github.com/rs/zerolog"
)

// maxBodySize limita o corpo lido por requisição.
const maxBodySize = 1 << 20

// Route descreve uma rota montada.
type Route struct {
	Property string
	Method   HttpVerb
	Path     string
	Options  Options
}

// Router monta recursos anotados com verbos em um gorilla/mux.
type Router struct {
	mux      *mux.Router
	registry *meta.Registry
	logger   zerolog.Logger
	routes   []Route
}

// RouterOption configura o Router.
type RouterOption func(*Router)

func WithRegistry(r *meta.Registry) RouterOption {
	return func(rt *Router) { rt.registry = r }
}

func WithLogger(l zerolog.Logger) RouterOption {
	return func(rt *Router) { rt.logger = l.With().Str("component", "router").Logger() }
}

// WithMiddleware adiciona middlewares ao mux (ex: transport.ObservabilityMiddleware).
func WithMiddleware(mws ...mux.MiddlewareFunc) RouterOption {
	return func(rt *Router) { rt.mux.Use(mws...) }
}

func NewRouter(opts ...RouterOption) *Router {
	rt := &Router{mux: mux.NewRouter(), registry: meta.Default, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(rt)
	}
	if !rt.registry.Handles(TagVerb) {
		rt.registry.Handle(TagVerb, ParseTag)
	}
	return rt
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// Routes retorna as rotas montadas, na ordem de montagem.
func (rt *Router) Routes() []Route {
	return append([]Route(nil), rt.routes...)
}

// Mount registra uma rota para cada propriedade do recurso com a tag verb.
// Campos do tipo Action usam o valor do campo; propriedades registradas
// via Register usam Verb.Handler.
func (rt *Router) Mount(prefix string, resource any) error {
	entries, err := rt.registry.Keys(resource, TagVerb)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("verb: %s has no verb properties", meta.TypeName(resource))
	}

	for _, e := range entries {
		v, ok := e.Descriptor.(Verb)
		if !ok {
			continue
		}
		action := v.Handler
		if action == nil {
			action, _ = e.Value(resource).(Action)
		}
		if action == nil {
			return fmt.Errorf("verb: %s.%s has no action", meta.TypeName(resource), e.Property)
		}

		path := strings.TrimSuffix(prefix, "/") + v.Path
		if path == "" {
			path = "/"
		}
		rt.mux.HandleFunc(path, rt.handler(e.Property, v, action)).Methods(string(v.Verb))
		rt.routes = append(rt.routes, Route{Property: e.Property, Method: v.Verb, Path: path, Options: v.Options})
		rt.logger.Debug().Str("method", string(v.Verb)).Str("path", path).Str("property", e.Property).Msg("rota registrada")
	}
	return nil
}

func (rt *Router) handler(property string, v Verb, action Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			writeError(w, v.Options.OnError, err)
			return
		}
		defer r.Body.Close()

		req := Request{Vars: mux.Vars(r), Query: r.URL.Query(), Header: r.Header, Body: body}
		out, err := action(r.Context(), req)

		logger := zerolog.Ctx(r.Context())
		if logger.GetLevel() == zerolog.Disabled {
			logger = &rt.logger
		}
		switch {
		case err == nil:
			write(w, v.Options.OnOk, v.Options.Type, out)
		case errors.Is(err, exception.DoesNotExist):
			writeError(w, v.Options.OnNotFound, err)
		default:
			if rs, ok := validation.ExtractResults(err); ok {
				write(w, v.Options.OnError, Json, map[string]any{"error": "validation failed", "results": rs})
				return
			}
			logger.Warn().Err(err).Str("property", property).Msg("falha na ação")
			writeError(w, v.Options.OnError, err)
		}
	}
}

func writeError(w http.ResponseWriter, status HttpStatus, err error) {
	write(w, status, Json, map[string]string{"error": err.Error()})
}

func write(w http.ResponseWriter, status HttpStatus, ct ContentType, out any) {
	if status == NoContent {
		w.WriteHeader(int(status))
		return
	}

	w.Header().Set("Content-Type", string(ct))
	switch ct {
	case Stream, Text:
		w.WriteHeader(int(status))
		switch val := out.(type) {
		case nil:
		case io.Reader:
			_, _ = io.Copy(w, val)
		case []byte:
			_, _ = w.Write(val)
		case string:
			_, _ = io.WriteString(w, val)
		default:
			_, _ = fmt.Fprint(w, val)
		}
	default:
		raw, err := json.Marshal(out)
		if err != nil {
			w.Header().Set("Content-Type", string(Json))
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"falha ao serializar resposta"}`))
			return
		}
		w.WriteHeader(int(status))
		_, _ = w.Write(raw)
	}
}
