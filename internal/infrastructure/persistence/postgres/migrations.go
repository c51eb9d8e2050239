package postgres

import "embed"

// Migrations holds the schema, applied with pkg/postgres.Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the files.
const MigrationsDir = "migrations"
