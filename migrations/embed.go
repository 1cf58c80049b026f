// Package migrations embeds the SQL schema for database-backed KV stores.
package migrations

import "embed"

// FS holds goose migration files.
//
//go:embed *.sql
var FS embed.FS
