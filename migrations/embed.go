// Package migrations ships the goose SQL migrations inside the binary, so
// server bootstrap and tests can apply the schema without a migrations
// directory on disk.
package migrations

import "embed"

// FS holds the *.sql migration files. Hand it to goose whenever the schema
// needs applying at runtime.
//
//go:embed *.sql
var FS embed.FS
