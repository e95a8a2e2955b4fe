package validation

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// playground é a instância compartilhada do go-playground/validator.
var playground = validator.New(validator.WithRequiredStructEnabled())

// RegisterPlayground adiciona uma validação customizada ao go-playground,
// disponível em tags validate:"...".
func RegisterPlayground(tag string, fn validator.Func) error {
	return playground.RegisterValidation(tag, fn)
}

func playgroundConstraint(tag, text string) Constraint {
	return Constraint{
		Name: tag,
		Text: text,
		Rule: func(v any) Outcome {
			if _, ok := asString(v); !ok {
				return Fail("")
			}
			return Check(playground.Var(v, tag) == nil)
		},
	}
}

// Playground envolve uma tag go-playground inteira em um único constraint.
func Playground(tag string) Constraint {
	return Constraint{
		Name:   "validate",
		Text:   "{property} failed on the '{tag}' rule.",
		Params: map[string]any{"tag": tag},
		Rule: func(v any) Outcome {
			err := playground.Var(v, tag)
			if err == nil {
				return Pass()
			}
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return Fail("{property} failed on the '" + verrs[0].Tag() + "' rule.")
			}
			return Fail("")
		},
	}
}

// parsePlaygroundTag faz a ponte entre tags validate:"..." e o engine.
func parsePlaygroundTag(_ reflect.Type, f reflect.StructField, raw string) ([]any, error) {
	if raw == "" || raw == "-" {
		return nil, nil
	}
	return []any{Playground(raw)}, nil
}
