// Package migrations embeds the schema files for the sqlite room store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
