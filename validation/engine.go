package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/raywall/fast-entity-toolkit/meta"
	"github.com/rs/zerolog"
)

// Engine avalia os constraints registrados em um meta.Registry.
// É síncrono e não guarda estado entre chamadas.
type Engine struct {
	registry *meta.Registry
	logger   zerolog.Logger
}

// Option configura o Engine.
type Option func(*Engine)

// WithRegistry usa outro registro de metadados no lugar de meta.Default.
func WithRegistry(r *meta.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithLogger define o logger usado para eventos de depuração.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l.With().Str("component", "validation").Logger() }
}

// New cria um Engine e instala os parsers das tags constraint e validate
// no registro, caso ainda não existam.
func New(opts ...Option) *Engine {
	e := &Engine{registry: meta.Default, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	if !e.registry.Handles(TagConstraint) {
		e.registry.Handle(TagConstraint, e.parseConstraintTag)
	}
	if !e.registry.Handles(TagValidate) {
		e.registry.Handle(TagValidate, parsePlaygroundTag)
	}
	return e
}

// Registry expõe o registro usado pelo engine.
func (e *Engine) Registry() *meta.Registry { return e.registry }

// Classify decide como o subject será validado. Tags malformadas panicam.
func (e *Engine) Classify(subject any) Kind {
	if isUndefined(subject) {
		return KindUndefined
	}
	if _, ok := subject.(Enum); ok {
		return KindEnum
	}
	if _, ok := subject.(Value); ok {
		return KindValue
	}
	has, err := e.registry.Has(subject, TagConstraint, TagValidate)
	if err != nil {
		panic(err)
	}
	if has {
		return KindValidatable
	}
	return KindPlain
}

// Validate retorna as violações do subject. Falhas são dados, nunca erros.
func (e *Engine) Validate(subject any) Results {
	switch kind := e.Classify(subject); kind {
	case KindUndefined:
		return Results{{Message: MsgUndefined}}
	case KindEnum, KindValue:
		if subject.(Value).IsValid() {
			return Results{}
		}
		return AsResults(subject, MsgInvalidValue, nil)
	case KindValidatable:
		rs := e.evaluate(subject)
		e.logger.Debug().
			Str("subject", meta.TypeName(subject)).
			Int("failures", len(rs)).
			Msg("subject validated")
		return rs
	default:
		return Results{}
	}
}

// Register adiciona constraints a uma propriedade do tipo do sample.
func (e *Engine) Register(sample any, property string, constraints ...Constraint) error {
	ds := make([]any, len(constraints))
	for i, c := range constraints {
		c.Property = property
		ds[i] = c
	}
	return e.registry.Register(sample, property, TagConstraint, ds...)
}

func (e *Engine) evaluate(subject any) Results {
	entries, err := e.registry.KeysOf(subject, TagConstraint, TagValidate)
	if err != nil {
		panic(err)
	}

	rs := Results{}
	for _, entry := range entries {
		c, ok := entry.Descriptor.(Constraint)
		if !ok {
			continue
		}
		actual := entry.Value(subject)
		if c.inner != nil {
			rs = append(rs, e.eachElement(subject, entry.Property, *c.inner, actual)...)
			continue
		}
		rs = append(rs, e.apply(subject, entry.Property, c, actual)...)
	}
	return rs
}

func (e *Engine) apply(subject any, property string, c Constraint, actual any) Results {
	out := c.evaluate(actual, subject)
	switch out.kind {
	case outcomePass:
		return nil
	case outcomeNested:
		return out.nested
	}

	text := c.Text
	if out.message != "" {
		text = out.message
	}
	opts := Options{"property": property, "actual": actual, "rule": c.Name}
	for k, v := range c.Params {
		opts[k] = v
	}
	return Results{{
		Subject:  meta.TypeName(subject),
		Property: property,
		Rule:     c.Name,
		Message:  Render(subject, text, opts),
		Actual:   actual,
	}}
}

func (e *Engine) eachElement(subject any, property string, inner Constraint, actual any) Results {
	var rs Results
	forEach(actual, func(i int, elem any) {
		rs = append(rs, e.apply(subject, fmt.Sprintf("%s[%d]", property, i), inner, elem)...)
	})
	return rs
}

// Valid valida o valor da propriedade como um subject aninhado.
// Valores nil passam; use required para exigir presença.
func (e *Engine) Valid() Constraint {
	return Constraint{
		Name: "valid",
		Rule: func(v any) Outcome {
			if isUndefined(v) {
				return Pass()
			}
			return Nested(e.Validate(v))
		},
	}
}

// Each valida cada elemento de um slice, array ou mapa como subject aninhado.
func (e *Engine) Each() Constraint {
	return Constraint{
		Name: "each",
		Rule: func(v any) Outcome {
			var rs Results
			forEach(v, func(_ int, elem any) {
				if !isUndefined(elem) {
					rs = append(rs, e.Validate(elem)...)
				}
			})
			return Nested(rs)
		},
	}
}

// EachWith aplica o constraint a cada elemento; a propriedade vira "nome[i]".
func EachWith(inner Constraint) Constraint {
	return Constraint{Name: "each", Rule: func(any) Outcome { return Pass() }, inner: &inner}
}

// Compile transforma uma especificação ("gt=1", "each=required", "valid")
// em um Constraint.
func (e *Engine) Compile(spec string) (Constraint, error) {
	name, param, _ := strings.Cut(strings.TrimSpace(spec), "=")
	name = strings.TrimSpace(name)

	switch name {
	case "valid":
		return e.Valid(), nil
	case "each":
		if param == "" {
			return e.Each(), nil
		}
		inner, err := e.Compile(param)
		if err != nil {
			return Constraint{}, err
		}
		return EachWith(inner), nil
	}

	f, ok := lookupFactory(name)
	if !ok {
		return Constraint{}, fmt.Errorf("%w: %q", ErrUnknownConstraint, name)
	}
	c, err := f(param)
	if err != nil {
		return Constraint{}, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

func (e *Engine) parseConstraintTag(_ reflect.Type, f reflect.StructField, raw string) ([]any, error) {
	property := meta.PropertyName(f)
	var out []any
	for _, spec := range SplitSpecs(raw) {
		c, err := e.Compile(spec)
		if err != nil {
			return nil, err
		}
		c.Property = property
		out = append(out, c)
	}
	return out, nil
}

// SplitSpecs separa uma tag em especificações por vírgula, ignorando vírgulas
// dentro de aspas simples, parênteses, colchetes e chaves.
func SplitSpecs(raw string) []string {
	var (
		specs []string
		depth int
		quote bool
		start int
	)
	for i, r := range raw {
		switch {
		case r == '\'':
			quote = !quote
		case quote:
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == ',' && depth == 0:
			if s := strings.TrimSpace(raw[start:i]); s != "" {
				specs = append(specs, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(raw[start:]); s != "" {
		specs = append(specs, s)
	}
	return specs
}

func forEach(v any, fn func(i int, elem any)) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			fn(i, rv.Index(i).Interface())
		}
	case reflect.Map:
		// chaves ordenadas para manter o resultado determinístico
		keys := rv.MapKeys()
		sort.Slice(keys, func(a, b int) bool {
			return fmt.Sprint(keys[a].Interface()) < fmt.Sprint(keys[b].Interface())
		})
		for i, k := range keys {
			fn(i, rv.MapIndex(k).Interface())
		}
	}
}
