package skmagentbackend

import "embed"

// Migrations holds the SQL schema migrations shipped with the binaries.
//
//go:embed migrations/*.sql
var Migrations embed.FS
