package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "corpora")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestSetAndGet(t *testing.T) {
	store, _ := newTestConfigStore(t)

	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("chunking.chunk_size", 500))
	require.NoError(t, store.Set("llm.enabled", true))

	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, 500, store.GetInt("chunking.chunk_size"))
	assert.True(t, store.GetBool("llm.enabled"))
}

func TestGet_MissingKeys(t *testing.T) {
	store, _ := newTestConfigStore(t)

	_, ok := store.Get("vector.backend")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("vector.backend"))
	assert.Zero(t, store.GetInt("chunking.overlap"))
	assert.False(t, store.GetBool("llm.enabled"))
	assert.Nil(t, store.GetStringSlice("watch.extensions"))
}

func TestGet_MistypedValues(t *testing.T) {
	store, _ := newTestConfigStore(t)

	require.NoError(t, store.Set("chunking.chunk_size", "five hundred"))
	require.NoError(t, store.Set("llm.model", 7))

	assert.Zero(t, store.GetInt("chunking.chunk_size"))
	assert.Empty(t, store.GetString("llm.model"))
}

func TestPersistsAcrossReopen(t *testing.T) {
	store, dir := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("vector.backend", "qdrant"))

	reopened, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, "anthropic", reopened.GetString("llm.provider"))
	assert.Equal(t, "qdrant", reopened.GetString("vector.backend"))
}

func TestSavedFileUsesNestedTables(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("embedding.provider", "openai"))
	require.NoError(t, store.Set("embedding.model", "text-embedding-3-small"))

	data, err := os.ReadFile(store.Path())

	require.NoError(t, err)
	assert.Contains(t, string(data), "[embedding]")
	assert.NotContains(t, string(data), `"embedding.provider"`)
}

func TestLoadsHandWrittenConfig(t *testing.T) {
	dir := t.TempDir()
	config := `
[embedding]
provider = "ollama"
dimensions = 768

[chunking]
chunk_size = 400
overlap = 50

[watch]
extensions = [".txt", ".md"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(config), 0600))

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, 768, store.GetInt("embedding.dimensions"))
	assert.Equal(t, 400, store.GetInt("chunking.chunk_size"))
	assert.Equal(t, 50, store.GetInt("chunking.overlap"))
	assert.Equal(t, []string{".txt", ".md"}, store.GetStringSlice("watch.extensions"))
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not [valid toml"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestReloadPicksUpExternalEdits(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.provider", "ollama"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[llm]\nprovider = \"openai\"\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, "openai", store.GetString("llm.provider"))
}

func TestUnflattenRoundTrip(t *testing.T) {
	flat := map[string]any{
		"vector.backend":     "sqlite",
		"vector.api_key":     "secret",
		"embedding.provider": "ollama",
		"verbose":            true,
	}

	assert.Equal(t, flat, flatten(unflatten(flat), ""))
}
