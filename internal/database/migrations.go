package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// Statements splits an SQL script into individual statements, dropping
// "--" comment lines and empty fragments.
func Statements(script string) []string {
	var b strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	var out []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Migrate applies the embedded MySQL schema.  Statements use
// CREATE TABLE IF NOT EXISTS so running it repeatedly is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	log.Println("Running database migrations...")
	for i, stmt := range Statements(schemaSQL) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d: %w", i+1, err)
		}
	}
	log.Println("Database migrations completed successfully")
	return nil
}
