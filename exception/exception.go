package exception

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Exception é um erro de domínio identificado por um ID derivado da mensagem.
// Duas exceções são iguais quando possuem o mesmo ID.
type Exception struct {
	ID      string
	Message string
	cause   error
}

// Exceções predefinidas.
var (
	DoesNotExist     = New("Does not exist")
	IsMissing        = New("Is missing")
	IsNotValid       = New("Is not valid")
	IsNotImplemented = New("Is not implemented")
)

// New cria uma exceção; o ID é a mensagem em PascalCase ("This is wrong" vira "ThisIsWrong").
func New(message string) *Exception {
	return &Exception{ID: pascal(message), Message: message}
}

// Name retorna a mensagem.
func (e *Exception) Name() string { return e.Message }

func (e *Exception) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Exception) Unwrap() error { return e.cause }

// Because retorna uma cópia com a causa anexada; o ID não muda.
func (e *Exception) Because(cause error) *Exception {
	return &Exception{ID: e.ID, Message: e.Message, cause: cause}
}

// Equals é verdadeiro apenas para outra exceção com o mesmo ID.
func (e *Exception) Equals(other any) bool {
	o, ok := asException(other)
	return ok && e != nil && o.ID == e.ID
}

// Is permite errors.Is(err, exception.DoesNotExist).
func (e *Exception) Is(target error) bool {
	return e.Equals(target)
}

// IsException sem argumentos indica se v é uma exceção. Com um argumento,
// compara com um ID (string) ou com outra exceção.
func IsException(v any, against ...any) bool {
	e, ok := asException(v)
	if !ok {
		return false
	}
	if len(against) == 0 {
		return true
	}
	switch a := against[0].(type) {
	case string:
		return a != "" && a == e.ID
	default:
		return e.Equals(a)
	}
}

func asException(v any) (*Exception, bool) {
	switch e := v.(type) {
	case nil:
		return nil, false
	case *Exception:
		return e, e != nil
	case Exception:
		return &e, true
	case error:
		var target *Exception
		if errors.As(e, &target) {
			return target, true
		}
	}
	return nil, false
}

func pascal(message string) string {
	// Caser guarda estado; um por chamada
	title := cases.Title(language.Und)
	words := strings.FieldsFunc(message, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(title.String(w))
	}
	return sb.String()
}
