package rules

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/cel-go/cel"
)

// RuleManager gerencia a compilação e avaliação de expressões CEL usadas
// como constraints. As expressões enxergam duas variáveis:
//   - self: o valor corrente da propriedade
//   - subject: a entidade inteira, convertida para mapa
type RuleManager struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewRuleManager inicializa o ambiente CEL com as variáveis padrão esperadas.
func NewRuleManager() (*RuleManager, error) {
	env, err := cel.NewEnv(
		cel.StdLib(),
		cel.CrossTypeNumericComparisons(true),
		cel.Variable("self", cel.DynType),
		cel.Variable("subject", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("erro fatal CEL init: %w", err)
	}

	return &RuleManager{env: env, programs: make(map[string]cel.Program)}, nil
}

// CompileProgram compila a expressão, reaproveitando programas já compilados.
func (rm *RuleManager) CompileProgram(expr string) (cel.Program, error) {
	rm.mu.RLock()
	prg, ok := rm.programs[expr]
	rm.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := rm.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("erro de compilação CEL '%s': %w", expr, issues.Err())
	}
	prg, err := rm.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar programa CEL: %w", err)
	}

	rm.mu.Lock()
	rm.programs[expr] = prg
	rm.mu.Unlock()
	return prg, nil
}

// EvaluateBool avalia uma expressão booleana sobre self e subject.
// Expressão vazia aprova.
func (rm *RuleManager) EvaluateBool(expression string, self, subject any) (bool, error) {
	if expression == "" {
		return true, nil
	}

	out, err := rm.EvaluateValue(expression, self, subject)
	if err != nil {
		return false, err
	}
	if val, ok := out.(bool); ok {
		return val, nil
	}
	return false, fmt.Errorf("resultado não é booleano: %T", out)
}

// EvaluateValue avalia a expressão e retorna o valor nativo.
func (rm *RuleManager) EvaluateValue(expression string, self, subject any) (any, error) {
	if expression == "" {
		return nil, nil
	}

	prg, err := rm.CompileProgram(expression)
	if err != nil {
		return nil, err
	}

	out, _, err := prg.Eval(map[string]any{
		"self":    Native(self),
		"subject": Native(subject),
	})
	if err != nil {
		return nil, fmt.Errorf("erro execução CEL: %w", err)
	}
	return out.Value(), nil
}

// Native converte valores Go para tipos que o CEL entende: tipos nomeados
// viram seus tipos base e structs viram mapas (via JSON).
func Native(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Native(rv.Index(i).Interface())
		}
		return out
	case reflect.Struct, reflect.Map:
		raw, err := json.Marshal(rv.Interface())
		if err != nil {
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil
		}
		return m
	}
	return rv.Interface()
}
