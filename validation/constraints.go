package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Factory cria um Constraint a partir do parâmetro da tag (o texto após "=").
type Factory func(param string) (Constraint, error)

var (
	// ErrUnknownConstraint indica um nome de constraint não definido.
	ErrUnknownConstraint = errors.New("validation: unknown constraint")
	// ErrReservedConstraint indica tentativa de redefinir valid ou each.
	ErrReservedConstraint = errors.New("validation: reserved constraint name")
)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{
		"required": noParam(Required),
		"defined":  noParam(Defined),
		"gt":       numeric(Gt),
		"gte":      numeric(Gte),
		"lt":       numeric(Lt),
		"lte":      numeric(Lte),
		"min":      numeric(Min),
		"max":      numeric(Max),
		"len":      numeric(Len),
		"oneof":    func(p string) (Constraint, error) { return OneOf(strings.Fields(p)...), nil },
		"email":    noParam(Email),
		"url":      noParam(URL),
		"uuid":     noParam(UUID),
		"matches":  compileMatches,
		"cel":      CEL,
	}
)

// Define registra um constraint customizado, usável em tags e arquivos de regras.
func Define(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("validation: invalid definition for %q", name)
	}
	if name == "valid" || name == "each" {
		return fmt.Errorf("%w: %s", ErrReservedConstraint, name)
	}
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
	return nil
}

func lookupFactory(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

func noParam(build func() Constraint) Factory {
	return func(param string) (Constraint, error) {
		if param != "" {
			return Constraint{}, fmt.Errorf("constraint takes no parameter, got %q", param)
		}
		return build(), nil
	}
}

func numeric(build func(float64) Constraint) Factory {
	return func(param string) (Constraint, error) {
		n, err := strconv.ParseFloat(strings.TrimSpace(param), 64)
		if err != nil {
			return Constraint{}, fmt.Errorf("invalid numeric parameter %q: %w", param, err)
		}
		return build(n), nil
	}
}

// Required falha para nil, strings em branco, coleções vazias e valores zero.
func Required() Constraint {
	return Constraint{
		Name: "required",
		Text: "{property} is required.",
		Rule: func(v any) Outcome { return Check(!isBlank(v)) },
	}
}

// Defined falha apenas para nil (incluindo ponteiros, mapas e slices nil).
func Defined() Constraint {
	return Constraint{
		Name: "defined",
		Text: "{property} must be defined.",
		Rule: func(v any) Outcome { return Check(!isUndefined(v)) },
	}
}

func Gt(n float64) Constraint {
	return compare("gt", "{property} must be greater than {than}.", n, func(v float64) bool { return v > n })
}

func Gte(n float64) Constraint {
	return compare("gte", "{property} must be at least {than}.", n, func(v float64) bool { return v >= n })
}

func Lt(n float64) Constraint {
	return compare("lt", "{property} must be less than {than}.", n, func(v float64) bool { return v < n })
}

func Lte(n float64) Constraint {
	return compare("lte", "{property} must be at most {than}.", n, func(v float64) bool { return v <= n })
}

func compare(name, text string, n float64, ok func(float64) bool) Constraint {
	return Constraint{
		Name:   name,
		Text:   text,
		Params: map[string]any{"than": formatNumber(n)},
		Rule: func(v any) Outcome {
			f, isNum := toFloat(v)
			return Check(isNum && ok(f))
		},
	}
}

// Min compara o tamanho de strings e coleções, ou o valor de números.
func Min(n float64) Constraint {
	return sized("min", "{property} must be at least {min}.", "min", n, func(s float64) bool { return s >= n })
}

func Max(n float64) Constraint {
	return sized("max", "{property} must be at most {max}.", "max", n, func(s float64) bool { return s <= n })
}

func Len(n float64) Constraint {
	return sized("len", "{property} must have length {len}.", "len", n, func(s float64) bool { return s == n })
}

func sized(name, text, param string, n float64, ok func(float64) bool) Constraint {
	return Constraint{
		Name:   name,
		Text:   text,
		Params: map[string]any{param: formatNumber(n)},
		Rule: func(v any) Outcome {
			s, has := size(v)
			return Check(has && ok(s))
		},
	}
}

// OneOf compara a representação textual do valor com a lista.
func OneOf(values ...string) Constraint {
	allowed := make(map[string]bool, len(values))
	for _, v := range values {
		allowed[v] = true
	}
	return Constraint{
		Name:   "oneof",
		Text:   "{property} must be one of [{values}].",
		Params: map[string]any{"values": strings.Join(values, " ")},
		Rule: func(v any) Outcome {
			if isUndefined(v) {
				return Fail("")
			}
			return Check(allowed[fmt.Sprint(v)])
		},
	}
}

func Email() Constraint {
	return playgroundConstraint("email", "{property} must be a valid email address.")
}

func URL() Constraint {
	return playgroundConstraint("url", "{property} must be a valid URL.")
}

func UUID() Constraint {
	return Constraint{
		Name: "uuid",
		Text: "{property} must be a valid UUID.",
		Rule: func(v any) Outcome {
			s, ok := asString(v)
			if !ok {
				return Fail("")
			}
			_, err := uuid.Parse(s)
			return Check(err == nil)
		},
	}
}

// Matches exige que strings satisfaçam a expressão regular. Panica se o padrão for inválido.
func Matches(pattern string) Constraint {
	return matches(regexp.MustCompile(pattern))
}

func compileMatches(param string) (Constraint, error) {
	re, err := regexp.Compile(param)
	if err != nil {
		return Constraint{}, fmt.Errorf("invalid pattern %q: %w", param, err)
	}
	return matches(re), nil
}

func matches(re *regexp.Regexp) Constraint {
	return Constraint{
		Name:   "matches",
		Text:   "{property} must match {pattern}.",
		Params: map[string]any{"pattern": re.String()},
		Rule: func(v any) Outcome {
			s, ok := asString(v)
			return Check(ok && re.MatchString(s))
		},
	}
}

// Custom cria um constraint a partir de um predicado simples.
func Custom(name, text string, check func(value any) bool) Constraint {
	return Constraint{
		Name: name,
		Text: text,
		Rule: func(v any) Outcome { return Check(check(v)) },
	}
}

func isBlank(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.String:
		return strings.TrimSpace(rv.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface, reflect.Func:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func size(v any) (float64, bool) {
	if f, ok := toFloat(v); ok {
		return f, true
	}
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.String:
		return float64(utf8.RuneCountInString(rv.String())), true
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return float64(rv.Len()), true
	}
	return 0, false
}

func asString(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
