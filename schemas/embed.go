// Package schemas provides embedded SQL migration files, one directory per
// database driver.
package schemas

import "embed"

// Migrations contains all SQL migration files.
//
//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var Migrations embed.FS
