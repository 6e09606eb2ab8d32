// Package catalog supplies the (topic, items) entries a round is built from.
// The controller treats it as a static read at round-start time.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lucasenlucas/undercover-bluff/internal/game"
)

// Source yields all available catalog entries.
type Source interface {
	Entries(ctx context.Context) ([]game.CatalogEntry, error)
}

// FileSource reads entries from a JSON file once per call, so the file can
// be edited between rounds without a restart.
type FileSource struct {
	Path string
}

// Entries loads and parses the catalog file.
func (f FileSource) Entries(ctx context.Context) ([]game.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	var entries []game.CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.Path, err)
	}
	return entries, nil
}

// Static is a fixed in-memory source, handy for tests and seeding.
type Static []game.CatalogEntry

func (s Static) Entries(ctx context.Context) ([]game.CatalogEntry, error) {
	return s, nil
}
