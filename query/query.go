package query

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Dialect define o formato dos parâmetros em Bind.
type Dialect int

const (
	// SQLServer usa @p1, @p2 e OUTPUT INSERTED.*
	SQLServer Dialect = iota
	// Postgres usa $1, $2 e RETURNING *
	Postgres
)

var (
	ErrNoFields          = errors.New("query: no fields to write")
	ErrInvalidIdentifier = errors.New("query: invalid identifier")
	ErrInvalidOperator   = errors.New("query: invalid operator")
)

// operadores aceitos nos filtros com bind
var operators = map[string]string{
	"=": "=", "<>": "<>", "!=": "!=", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"LIKE": " LIKE ",
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier indica se o nome pode ser usado como tabela ou coluna.
func ValidIdentifier(name string) bool {
	return identifierRegex.MatchString(name)
}

type condition struct {
	key   string
	op    string
	value any
	raw   string
}

func (c condition) String() string {
	if c.raw != "" {
		return c.raw
	}
	return Clause(c.key, c.op, c.value)
}

// Query guarda a tabela e os filtros comuns aos comandos.
type Query struct {
	table   string
	clauses []condition
}

func (q *Query) Table() string { return q.table }

// Clauses retorna os filtros já formatados como texto.
func (q *Query) Clauses() []string {
	out := make([]string, len(q.clauses))
	for i, c := range q.clauses {
		out[i] = c.String()
	}
	return out
}

func (q *Query) where(key, op string, value any) {
	q.clauses = append(q.clauses, condition{key: key, op: op, value: value})
}

func (q *Query) whereRaw(clause string) {
	q.clauses = append(q.clauses, condition{raw: clause})
}

func (q *Query) whereText() string {
	if len(q.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.Clauses(), " AND ")
}

// binder acumula argumentos e gera os marcadores do dialeto.
type binder struct {
	dialect Dialect
	args    []any
}

func (b *binder) bind(value any) string {
	b.args = append(b.args, value)
	if b.dialect == Postgres {
		return fmt.Sprintf("$%d", len(b.args))
	}
	return fmt.Sprintf("@p%d", len(b.args))
}

func (q *Query) bindWhere(b *binder) (string, error) {
	if len(q.clauses) == 0 {
		return "", nil
	}
	parts := make([]string, len(q.clauses))
	for i, c := range q.clauses {
		if c.raw != "" {
			parts[i] = c.raw
			continue
		}
		if !ValidIdentifier(c.key) {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, c.key)
		}
		op, ok := operators[strings.ToUpper(strings.TrimSpace(c.op))]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrInvalidOperator, c.op)
		}
		if c.value == nil {
			switch op {
			case "=":
				parts[i] = c.key + " IS NULL"
				continue
			case "<>", "!=":
				parts[i] = c.key + " IS NOT NULL"
				continue
			}
		}
		parts[i] = c.key + op + b.bind(c.value)
	}
	return " WHERE " + strings.Join(parts, " AND "), nil
}

type field struct {
	key   string
	value any
}

func sortedFields(values map[string]any) []field {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]field, len(keys))
	for i, k := range keys {
		fields[i] = field{key: k, value: values[k]}
	}
	return fields
}

func checkTable(table string) error {
	if !ValidIdentifier(table) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}
	return nil
}
