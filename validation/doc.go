// Package validation implementa o engine de validação guiado por metadados.
//
// Visão Geral:
// Entidades declaram constraints por propriedade, via struct tags
// (`constraint:"required,gt=1"`) ou via Register. O Engine classifica o
// subject (indefinido, enum, value object, validável ou simples) e devolve
// um Results ordenado. Results vazio significa válido. Falhas de validação
// são dados: Validate nunca retorna erro. Reject adapta o resultado para o
// fluxo de erros do Go.
//
// Constraints Disponíveis:
//   - required, defined
//   - gt, gte, lt, lte (números)
//   - min, max, len (tamanho de strings e coleções, valor de números)
//   - oneof, email, url, uuid, matches
//   - valid (subject aninhado), each (cada elemento)
//   - cel (expressão CEL sobre self e subject)
//
// Tags `validate:"..."` do go-playground/validator também são avaliadas.
//
// Exemplos de Uso:
//
//	type Dev struct {
//	    Name     string   `json:"name" constraint:"required"`
//	    Language Language `json:"language" constraint:"defined"`
//	    Level    int      `json:"level" constraint:"gt=1"`
//	}
//
//	rs := validation.Validate(Dev{Level: 1})
//	// rs[0].Message == "name is required."
//	// rs[1].Message == "level must be greater than 1."
//
//	dev, err := validation.Reject(dev)
//	if rs, ok := validation.ExtractResults(err); ok {
//	    ...
//	}
package validation
