package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasenlucas/undercover-bluff/internal/game"
)

func writeCatalog(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topics.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestFileSource(t *testing.T) {
	path := writeCatalog(t, `[
		{"topic": "Animals", "items": ["Cat", "Dog"]},
		{"topic": "Food", "items": ["Pizza"]}
	]`)

	entries, err := FileSource{Path: path}.Entries(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Animals", entries[0].Topic)
	assert.Equal(t, []string{"Cat", "Dog"}, entries[0].Items)
	assert.Equal(t, "Food", entries[1].Topic)
}

func TestFileSourceRereadsPerCall(t *testing.T) {
	path := writeCatalog(t, `[{"topic": "Animals", "items": ["Cat"]}]`)
	src := FileSource{Path: path}
	ctx := context.Background()

	entries, err := src.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, os.WriteFile(path, []byte(`[
		{"topic": "Animals", "items": ["Cat"]},
		{"topic": "Food", "items": ["Pizza"]}
	]`), 0o644))

	entries, err = src.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}.Entries(context.Background())
	assert.Error(t, err)
}

func TestFileSourceMalformed(t *testing.T) {
	path := writeCatalog(t, `{"not": "a list"}`)
	_, err := FileSource{Path: path}.Entries(context.Background())
	assert.Error(t, err)
}

func TestFileSourceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FileSource{Path: "unused.json"}.Entries(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatic(t *testing.T) {
	src := Static{{Topic: "Animals", Items: []string{"Cat"}}}

	entries, err := src.Entries(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []game.CatalogEntry(src), entries)
}
