package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunValidate(t *testing.T) {
	t.Run("should accept a valid rules file", func(t *testing.T) {
		path := writeRules(t, `
types:
  Dev:
    name: [required]
    level: ["gt=1"]
    email: [email]
`)
		var out bytes.Buffer
		require.NoError(t, runValidate(&out, path, false))
		assert.Contains(t, out.String(), "3 regras válidas em 1 tipos")
	})

	t.Run("should report every invalid spec as json", func(t *testing.T) {
		path := writeRules(t, `
types:
  Dev:
    name: [shiny]
    level: ["gt=abc"]
`)
		var out bytes.Buffer
		err := runValidate(&out, path, true)
		assert.ErrorIs(t, err, errInvalidRules)

		var report Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.False(t, report.Valid)
		assert.Len(t, report.Errors, 2)
	})

	t.Run("should fail for a missing file", func(t *testing.T) {
		var out bytes.Buffer
		assert.Error(t, runValidate(&out, filepath.Join(t.TempDir(), "none.yaml"), false))
	})
}
