package postgres

import "embed"

// Migrations holds the goose SQL migrations for the PostgreSQL schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose should read.
const MigrationsDir = "migrations"
