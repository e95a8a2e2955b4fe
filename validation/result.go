package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid é o alvo de errors.Is para qualquer conjunto de resultados com falhas.
var ErrInvalid = errors.New("validation: subject is invalid")

// Result descreve uma violação.
type Result struct {
	Subject  string `json:"subject,omitempty"`
	Property string `json:"property,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Message  string `json:"message"`
	Actual   any    `json:"actual,omitempty"`
}

func (r Result) String() string {
	if r.Property == "" {
		return r.Message
	}
	return fmt.Sprintf("%s: %s", r.Property, r.Message)
}

// Results é a lista ordenada de violações. Vazia significa válido.
type Results []Result

func (rs Results) Error() string {
	if len(rs) == 0 {
		return "validation: no failures"
	}
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, ErrInvalid).
func (rs Results) Is(target error) bool {
	return target == ErrInvalid && len(rs) > 0
}

func (rs Results) IsValid() bool { return len(rs) == 0 }

// Has indica se existe falha para a propriedade.
func (rs Results) Has(property string) bool {
	for _, r := range rs {
		if r.Property == property {
			return true
		}
	}
	return false
}

// Get retorna as falhas da propriedade.
func (rs Results) Get(property string) Results {
	var out Results
	for _, r := range rs {
		if r.Property == property {
			out = append(out, r)
		}
	}
	return out
}

// Fields retorna as propriedades com falha, sem repetição.
func (rs Results) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, r := range rs {
		if !seen[r.Property] {
			seen[r.Property] = true
			fields = append(fields, r.Property)
		}
	}
	return fields
}

func (rs Results) Messages() []string {
	msgs := make([]string, len(rs))
	for i, r := range rs {
		msgs[i] = r.Message
	}
	return msgs
}

// ExtractResults recupera os Results de um erro, se houver.
func ExtractResults(err error) (Results, bool) {
	var rs Results
	if errors.As(err, &rs) {
		return rs, true
	}
	return nil, false
}
