package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Clause formata "chave<op>literal", ex: Clause("level", ">", 1) == "level>1".
func Clause(key, op string, value any) string {
	return key + op + Literal(value)
}

// Literal renderiza um valor como literal SQL:
//   - nil e ponteiros nil viram NULL
//   - strings são envolvidas em aspas simples, com aspas internas duplicadas
//   - bool vira 1 ou 0
//   - números ficam sem aspas
//   - time.Time vira string RFC3339
//   - slices viram listas "(a, b)"
func Literal(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case time.Time:
		return quote(v.Format(time.RFC3339))
	case []byte:
		return quote(string(v))
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return "NULL"
		}
		return quote(v.String())
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "NULL"
		}
		return Literal(rv.Elem().Interface())
	case reflect.String:
		return quote(rv.String())
	case reflect.Bool:
		return Literal(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Slice, reflect.Array:
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = Literal(rv.Index(i).Interface())
		}
		return "(" + strings.Join(items, ", ") + ")"
	}
	return quote(fmt.Sprint(value))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
