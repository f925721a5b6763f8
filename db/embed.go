// Package db embeds the database schema so the server and tools can migrate
// without shipping SQL files alongside the binary.
package db

import _ "embed"

// Schema holds the DDL for every application table.
//
//go:embed migrations/001_schema.sql
var Schema string
