// Package migrations holds the embedded schema migrations, one directory per SQL dialect.
package migrations

import "embed"

// FS contains the embedded migrations for both supported drivers.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
