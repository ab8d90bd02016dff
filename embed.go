package garden

import "embed"

// migrationFiles holds the artifact index schema, applied by NewStore.
//
//go:embed migrations/*.sql
var migrationFiles embed.FS
