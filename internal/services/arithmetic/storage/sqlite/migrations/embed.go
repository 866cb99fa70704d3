package migrations

import "embed"

// FS contains embedded SQLite migrations for arithmetic storage.
//
//go:embed *.sql
var FS embed.FS
