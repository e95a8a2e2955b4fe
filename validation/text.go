package validation

import (
	"fmt"
	"regexp"

	"github.com/raywall/fast-entity-toolkit/meta"
)

// Mensagens padrão do engine.
const (
	MsgUndefined    = "Subject is not defined."
	MsgInvalidValue = "This is not a valid {type.name}."
)

// Options fornece valores para os placeholders de um template.
type Options map[string]any

// placeholderRegex identifica {chave} ou {chave.composta} no template.
var placeholderRegex = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_.]*)\}`)

// Render substitui os placeholders do template. A resolução segue a ordem:
// options, {type.name}, propriedades do subject. Placeholders sem valor
// permanecem no texto.
func Render(subject any, template string, opts Options) string {
	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		if v, ok := opts[key]; ok {
			return format(v)
		}
		if key == "type.name" {
			return meta.TypeName(subject)
		}
		if v, ok := meta.Lookup(subject, key); ok {
			return format(v)
		}
		return match
	})
}

// AsResults cria um conjunto com um único resultado a partir do template.
func AsResults(subject any, template string, opts Options) Results {
	r := Result{
		Subject: meta.TypeName(subject),
		Message: Render(subject, template, opts),
	}
	if p, ok := opts["property"]; ok {
		r.Property = format(p)
	}
	return Results{r}
}

func format(v any) string {
	switch val := v.(type) {
	case nil:
		return "undefined"
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
