package migrations

import "embed"

// FS contains the schema for both dialects, one directory each.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
