package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kwararru/shell/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlManifest = `
id: flashcards
name: Flashcards
mode: flashcards
permissions: [storage]
intent_filters:
  - action: create
    data_type: flashcard/*
  - action: STUDY
`

const tomlManifest = `
id = "planner"
name = "Planner"
mode = "planner"
permissions = ["CALENDAR", "NOTIFICATIONS"]

[[intent_filters]]
action = "VIEW"
data_type = "calendar/*"
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseManifestYAML(t *testing.T) {
	m, err := ParseManifest(".yaml", []byte(yamlManifest))
	require.NoError(t, err)

	assert.Equal(t, "flashcards", m.ID)
	assert.Equal(t, []types.Permission{types.PermissionStorage}, m.Permissions)
	require.Len(t, m.IntentFilters, 2)
	assert.Equal(t, types.ActionCreate, m.IntentFilters[0].Action)
	assert.Equal(t, "flashcard/*", m.IntentFilters[0].DataType)
	assert.Empty(t, m.IntentFilters[1].DataType)
}

func TestParseManifestTOML(t *testing.T) {
	m, err := ParseManifest(".toml", []byte(tomlManifest))
	require.NoError(t, err)

	assert.Equal(t, "planner", m.ID)
	assert.Len(t, m.Permissions, 2)
	require.Len(t, m.IntentFilters, 1)
	assert.Equal(t, types.ActionView, m.IntentFilters[0].Action)
}

func TestParseManifestRejects(t *testing.T) {
	_, err := ParseManifest(".json", []byte(`{}`))
	assert.Error(t, err)

	_, err = ParseManifest(".yaml", []byte("id: x\nbogus_field: 1\n"))
	assert.Error(t, err)

	_, err = ParseManifest(".yaml", []byte("name: no id\n"))
	assert.Error(t, err)
}

func TestLoadDirLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b/planner.toml", tomlManifest)
	writeFile(t, dir, "a/flashcards.yaml", yamlManifest)
	writeFile(t, dir, "c/broken.yml", "id: [unclosed\n")
	writeFile(t, dir, "README.md", "ignored")

	c := New(nil)
	res, err := NewLoader(c, nil).LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Loaded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []string{"flashcards", "planner"}, res.IDs)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "flashcards", list[0].ID)
	assert.Equal(t, "planner", list[1].ID)
}

func TestLoadDirMissing(t *testing.T) {
	c := New(nil)
	res, err := NewLoader(c, nil).LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Zero(t, res.Loaded)
}
