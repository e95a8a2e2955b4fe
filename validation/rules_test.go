package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Project struct {
	Title  string `json:"title"`
	Budget int    `json:"budget"`
}

type Unbound struct{}

const projectRules = `
types:
  Project:
    title: [required, "min=3"]
    budget: ["gte=100"]
  Missing:
    name: [required]
`

func TestParseRules(t *testing.T) {
	t.Run("should keep document order", func(t *testing.T) {
		rs, err := ParseRules([]byte(projectRules))
		require.NoError(t, err)
		require.Len(t, rs.Types, 2)
		assert.Equal(t, "Project", rs.Types[0].Name)
		assert.Equal(t, []PropertyRules{
			{Property: "title", Specs: []string{"required", "min=3"}},
			{Property: "budget", Specs: []string{"gte=100"}},
		}, rs.Types[0].Properties)
		assert.Equal(t, 4, rs.Count())
	})

	t.Run("should report every broken spec", func(t *testing.T) {
		_, err := ParseRules([]byte(`
types:
  Project:
    title: [shiny]
    budget: ["gt=abc"]
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Project.title")
		assert.Contains(t, err.Error(), "Project.budget")
	})

	t.Run("should reject invalid documents", func(t *testing.T) {
		_, err := ParseRules([]byte(`types: [1, 2]`))
		assert.Error(t, err)
		_, err = ParseRules([]byte(`types: {`))
		assert.Error(t, err)
	})

	t.Run("should accept an empty document", func(t *testing.T) {
		rs, err := ParseRules([]byte(``))
		require.NoError(t, err)
		assert.Zero(t, rs.Count())
	})
}

func TestRuleSet_Bind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(projectRules), 0o600))

	rs, err := LoadRules(path)
	require.NoError(t, err)
	require.NoError(t, rs.Bind(Default(), Project{}, Unbound{}))

	results := Validate(Project{Title: "ab", Budget: 10})
	assert.Equal(t, []string{
		"title must be at least 3.",
		"budget must be at least 100.",
	}, results.Messages())
	assert.Empty(t, Validate(Project{Title: "fast", Budget: 100}))

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
