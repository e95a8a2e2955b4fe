package query

import (
	"fmt"
	"strings"
)

// Update monta um comando UPDATE.
//
//	query.NewUpdate("devs", map[string]any{"level": 4}).Where("id", "=", 42).String()
//	// UPDATE devs SET level=4 OUTPUT INSERTED.* WHERE id=42
type Update struct {
	Query
	fields []field
}

// NewUpdate cria o comando a partir de um mapa; os campos ficam em ordem alfabética.
func NewUpdate(table string, fields map[string]any) *Update {
	return &Update{Query: Query{table: table}, fields: sortedFields(fields)}
}

// UpdateOf cria um comando vazio; os campos seguem a ordem das chamadas a Set.
func UpdateOf(table string) *Update {
	return &Update{Query: Query{table: table}}
}

// Set adiciona ou substitui um campo.
func (u *Update) Set(key string, value any) *Update {
	for i, f := range u.fields {
		if f.key == key {
			u.fields[i].value = value
			return u
		}
	}
	u.fields = append(u.fields, field{key: key, value: value})
	return u
}

func (u *Update) Where(key, op string, value any) *Update {
	u.where(key, op, value)
	return u
}

func (u *Update) WhereRaw(clause string) *Update {
	u.whereRaw(clause)
	return u
}

// Fields retorna os nomes dos campos na ordem de renderização.
func (u *Update) Fields() []string {
	keys := make([]string, len(u.fields))
	for i, f := range u.fields {
		keys[i] = f.key
	}
	return keys
}

// String renderiza o texto com os valores como literais.
func (u *Update) String() string {
	sets := make([]string, len(u.fields))
	for i, f := range u.fields {
		sets[i] = Clause(f.key, "=", f.value)
	}
	return fmt.Sprintf("UPDATE %s SET %s OUTPUT INSERTED.*%s", u.table, strings.Join(sets, ", "), u.whereText())
}

// Bind renderiza o comando parametrizado para o dialeto.
func (u *Update) Bind(dialect Dialect) (string, []any, error) {
	if err := checkTable(u.table); err != nil {
		return "", nil, err
	}
	if len(u.fields) == 0 {
		return "", nil, ErrNoFields
	}

	b := &binder{dialect: dialect}
	sets := make([]string, len(u.fields))
	for i, f := range u.fields {
		if !ValidIdentifier(f.key) {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, f.key)
		}
		sets[i] = f.key + "=" + b.bind(f.value)
	}
	where, err := u.bindWhere(b)
	if err != nil {
		return "", nil, err
	}

	if dialect == Postgres {
		return fmt.Sprintf("UPDATE %s SET %s%s RETURNING *", u.table, strings.Join(sets, ", "), where), b.args, nil
	}
	return fmt.Sprintf("UPDATE %s SET %s OUTPUT INSERTED.*%s", u.table, strings.Join(sets, ", "), where), b.args, nil
}
