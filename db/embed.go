// Package db embeds the schema migrations applied at startup.
package db

import "embed"

// Migrations holds the SQL migration files for the reference dataset schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS
