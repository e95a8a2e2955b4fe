package validation

import "reflect"

// Value é um tipo que sabe se está válido (value objects, structs com estado).
type Value interface {
	IsValid() bool
}

// Enum é um Value identificado por um código.
type Enum interface {
	Value
	Code() string
}

// Kind classifica um subject antes da validação.
type Kind int

const (
	KindUndefined Kind = iota
	KindEnum
	KindValue
	KindValidatable
	KindPlain
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindEnum:
		return "enum"
	case KindValue:
		return "value"
	case KindValidatable:
		return "validatable"
	default:
		return "plain"
	}
}

// isUndefined trata nil e ponteiros/mapas/slices nil como ausência.
func isUndefined(subject any) bool {
	if subject == nil {
		return true
	}
	v := reflect.ValueOf(subject)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
