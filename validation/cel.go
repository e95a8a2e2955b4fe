package validation

import (
	"fmt"
	"sync"

	"github.com/raywall/fast-entity-toolkit/pkg/rules"
)

var (
	celOnce    sync.Once
	celManager *rules.RuleManager
	celErr     error
)

func ruleManager() (*rules.RuleManager, error) {
	celOnce.Do(func() {
		celManager, celErr = rules.NewRuleManager()
	})
	return celManager, celErr
}

// CEL cria um constraint a partir de uma expressão booleana CEL. A expressão
// enxerga self (valor da propriedade) e subject (a entidade como mapa).
// Erros de avaliação e resultados não booleanos contam como falha.
func CEL(expr string) (Constraint, error) {
	rm, err := ruleManager()
	if err != nil {
		return Constraint{}, err
	}
	if _, err := rm.CompileProgram(expr); err != nil {
		return Constraint{}, err
	}

	eval := func(value, subject any) Outcome {
		ok, err := rm.EvaluateBool(expr, value, subject)
		if err != nil {
			return Fail(fmt.Sprintf("{property} could not be evaluated: %v", err))
		}
		return Check(ok)
	}
	return Constraint{
		Name:        "cel",
		Text:        "{property} does not satisfy '{expr}'.",
		Params:      map[string]any{"expr": expr},
		Rule:        func(v any) Outcome { return eval(v, nil) },
		subjectRule: eval,
	}, nil
}
