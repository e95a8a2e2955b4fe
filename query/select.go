package query

import (
	"fmt"
	"strings"
)

// Select monta um SELECT parametrizado. Usado pelo repositório SQL.
type Select struct {
	Query
	columns []string
	orderBy string
	limit   int
}

func SelectFrom(table string, columns ...string) *Select {
	return &Select{Query: Query{table: table}, columns: columns}
}

func (s *Select) Where(key, op string, value any) *Select {
	s.where(key, op, value)
	return s
}

func (s *Select) WhereRaw(clause string) *Select {
	s.whereRaw(clause)
	return s
}

func (s *Select) OrderBy(column string) *Select {
	s.orderBy = column
	return s
}

func (s *Select) Limit(n int) *Select {
	s.limit = n
	return s
}

func (s *Select) columnList() (string, error) {
	if len(s.columns) == 0 {
		return "*", nil
	}
	for _, c := range s.columns {
		if !ValidIdentifier(c) {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, c)
		}
	}
	return strings.Join(s.columns, ", "), nil
}

func (s *Select) String() string {
	cols, err := s.columnList()
	if err != nil {
		cols = "*"
	}
	return fmt.Sprintf("SELECT %s FROM %s%s%s", cols, s.table, s.whereText(), s.tail())
}

func (s *Select) tail() string {
	var sb strings.Builder
	if s.orderBy != "" {
		sb.WriteString(" ORDER BY " + s.orderBy)
	}
	if s.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", s.limit)
	}
	return sb.String()
}

func (s *Select) Bind(dialect Dialect) (string, []any, error) {
	if err := checkTable(s.table); err != nil {
		return "", nil, err
	}
	cols, err := s.columnList()
	if err != nil {
		return "", nil, err
	}
	if s.orderBy != "" && !ValidIdentifier(s.orderBy) {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s.orderBy)
	}
	b := &binder{dialect: dialect}
	where, err := s.bindWhere(b)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT %s FROM %s%s%s", cols, s.table, where, s.tail()), b.args, nil
}

// Insert monta um INSERT parametrizado que devolve a linha criada.
type Insert struct {
	table  string
	fields []field
}

// InsertInto cria o comando; os campos ficam em ordem alfabética.
func InsertInto(table string, fields map[string]any) *Insert {
	return &Insert{table: table, fields: sortedFields(fields)}
}

func (i *Insert) Bind(dialect Dialect) (string, []any, error) {
	if err := checkTable(i.table); err != nil {
		return "", nil, err
	}
	if len(i.fields) == 0 {
		return "", nil, ErrNoFields
	}
	b := &binder{dialect: dialect}
	cols := make([]string, len(i.fields))
	marks := make([]string, len(i.fields))
	for n, f := range i.fields {
		if !ValidIdentifier(f.key) {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, f.key)
		}
		cols[n] = f.key
		marks[n] = b.bind(f.value)
	}
	if dialect == Postgres {
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *", i.table, strings.Join(cols, ", "), strings.Join(marks, ", ")), b.args, nil
	}
	return fmt.Sprintf("INSERT INTO %s (%s) OUTPUT INSERTED.* VALUES (%s)", i.table, strings.Join(cols, ", "), strings.Join(marks, ", ")), b.args, nil
}

// Delete monta um DELETE parametrizado.
type Delete struct {
	Query
}

func DeleteFrom(table string) *Delete {
	return &Delete{Query: Query{table: table}}
}

func (d *Delete) Where(key, op string, value any) *Delete {
	d.where(key, op, value)
	return d
}

func (d *Delete) Bind(dialect Dialect) (string, []any, error) {
	if err := checkTable(d.table); err != nil {
		return "", nil, err
	}
	b := &binder{dialect: dialect}
	where, err := d.bindWhere(b)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("DELETE FROM %s%s", d.table, where), b.args, nil
}
