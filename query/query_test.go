package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level int

func TestLiteral(t *testing.T) {
	var nilPtr *int
	n := 7
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "NULL"},
		{"nil pointer", nilPtr, "NULL"},
		{"pointer", &n, "7"},
		{"string", "Sander", "'Sander'"},
		{"quoted string", "O'Brien", "'O''Brien'"},
		{"bool true", true, "1"},
		{"bool false", false, "0"},
		{"int", 42, "42"},
		{"named int", level(3), "3"},
		{"uint", uint(8), "8"},
		{"float", 1.5, "1.5"},
		{"time", ts, "'2024-05-01T10:00:00Z'"},
		{"slice", []any{1, "a"}, "(1, 'a')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Literal(tt.value))
		})
	}
}

func TestClause(t *testing.T) {
	assert.Equal(t, "name='Jeroen'", Clause("name", "=", "Jeroen"))
	assert.Equal(t, "level>1", Clause("level", ">", 1))
	assert.Equal(t, "id IN (1, 2)", Clause("id", " IN ", []int{1, 2}))
}

func TestUpdate_String(t *testing.T) {
	t.Run("should render without where when there are no clauses", func(t *testing.T) {
		u := NewUpdate("Devs", map[string]any{"name": "Sander", "level": 3})
		assert.Equal(t, "UPDATE Devs SET level=3, name='Sander' OUTPUT INSERTED.*", u.String())
	})

	t.Run("should join clauses with AND", func(t *testing.T) {
		u := UpdateOf("Devs").
			Set("name", "Jeroen").
			Set("level", 4).
			Where("id", "=", 42).
			WhereRaw("deleted=0")
		assert.Equal(t, "UPDATE Devs SET name='Jeroen', level=4 OUTPUT INSERTED.* WHERE id=42 AND deleted=0", u.String())
		assert.Equal(t, []string{"name", "level"}, u.Fields())
		assert.Equal(t, []string{"id=42", "deleted=0"}, u.Clauses())
		assert.Equal(t, "Devs", u.Table())
	})

	t.Run("should replace a field set twice", func(t *testing.T) {
		u := UpdateOf("Devs").Set("level", 1).Set("level", 2)
		assert.Equal(t, "UPDATE Devs SET level=2 OUTPUT INSERTED.*", u.String())
	})
}

func TestUpdate_Bind(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		sql, args, err := UpdateOf("devs").Set("name", "Sander").Set("level", 3).Where("id", "=", "42").Bind(Postgres)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE devs SET name=$1, level=$2 WHERE id=$3 RETURNING *", sql)
		assert.Equal(t, []any{"Sander", 3, "42"}, args)
	})

	t.Run("sql server", func(t *testing.T) {
		sql, args, err := UpdateOf("devs").Set("level", 3).Where("id", "=", 1).Bind(SQLServer)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE devs SET level=@p1 OUTPUT INSERTED.* WHERE id=@p2", sql)
		assert.Equal(t, []any{3, 1}, args)
	})

	t.Run("should map nil comparisons to IS NULL", func(t *testing.T) {
		sql, args, err := UpdateOf("devs").Set("level", 1).Where("language", "=", nil).Bind(Postgres)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE devs SET level=$1 WHERE language IS NULL RETURNING *", sql)
		assert.Equal(t, []any{1}, args)
	})

	t.Run("should reject empty updates and bad identifiers", func(t *testing.T) {
		_, _, err := UpdateOf("devs").Bind(Postgres)
		assert.ErrorIs(t, err, ErrNoFields)

		_, _, err = UpdateOf("devs; drop").Set("a", 1).Bind(Postgres)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)

		_, _, err = UpdateOf("devs").Set("a=1 --", 1).Bind(Postgres)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)

		_, _, err = UpdateOf("devs").Set("a", 1).Where("x or 1", "=", 1).Bind(Postgres)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)

		_, _, err = SelectFrom("devs").Where("id", "= 1 OR 1 =", 1).Bind(Postgres)
		assert.ErrorIs(t, err, ErrInvalidOperator)
	})

	t.Run("should bind whitelisted operators", func(t *testing.T) {
		sql, args, err := SelectFrom("devs").Where("name", "like", "S%").Where("level", ">=", 2).Bind(Postgres)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM devs WHERE name LIKE $1 AND level>=$2", sql)
		assert.Equal(t, []any{"S%", 2}, args)
	})
}

func TestSelectInsertDelete(t *testing.T) {
	sql, args, err := SelectFrom("devs").Where("level", ">", 1).OrderBy("name").Limit(10).Bind(Postgres)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM devs WHERE level>$1 ORDER BY name LIMIT 10", sql)
	assert.Equal(t, []any{1}, args)

	assert.Equal(t, "SELECT id, name FROM devs WHERE name='Sander'", SelectFrom("devs", "id", "name").Where("name", "=", "Sander").String())

	sql, args, err = InsertInto("devs", map[string]any{"name": "Jeroen", "level": 4}).Bind(Postgres)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO devs (level, name) VALUES ($1, $2) RETURNING *", sql)
	assert.Equal(t, []any{4, "Jeroen"}, args)

	sql, _, err = InsertInto("devs", map[string]any{"name": "Jeroen"}).Bind(SQLServer)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO devs (name) OUTPUT INSERTED.* VALUES (@p1)", sql)

	_, _, err = InsertInto("devs", nil).Bind(Postgres)
	assert.ErrorIs(t, err, ErrNoFields)

	sql, args, err = DeleteFrom("devs").Where("id", "=", "42").Bind(Postgres)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM devs WHERE id=$1", sql)
	assert.Equal(t, []any{"42"}, args)
}
