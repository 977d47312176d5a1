// Package migrations embeds SQL migration files for use at runtime.
// Migrations are embedded so they work regardless of working directory.
// Each dialect has its own directory; files run in lexical order.
package migrations

import (
	"embed"
	"io/fs"
)

// FS is the embedded migrations filesystem.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Postgres returns the PostgreSQL migrations (e.g. 001_audit_reports.sql).
func Postgres() fs.FS { return sub("postgres") }

// SQLite returns the SQLite migrations.
func SQLite() fs.FS { return sub("sqlite") }

func sub(dir string) fs.FS {
	f, err := fs.Sub(FS, dir)
	if err != nil {
		// Only reachable with an invalid path literal above.
		panic(err)
	}
	return f
}
