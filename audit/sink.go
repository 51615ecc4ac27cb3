// Package audit is the reference AuditSink (engine.AuditSink) implementation:
// SQLSink records completed AI interactions to a SQL database reached
// through database/sql with a pluggable driver, writing to one fixed table
// rather than offering a general query interface.
package audit

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/vibelang-org/vibe/engine"
)

// Driver names accepted by Open, matching the three database/sql drivers
// registered via blank import above.
const (
	DriverMySQL  = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite = "sqlite"
)

// SQLSink implements engine.AuditSink by inserting one row per completed
// interaction into an ai_interactions table.
type SQLSink struct {
	db     *sql.DB
	driver string
}

// Open connects to driver/dsn and ensures the ai_interactions table exists.
// driver must be one of DriverMySQL, DriverPostgres, or DriverSQLite; sqlite
// registers itself under the name "sqlite" (modernc.org/sqlite, a cgo-free
// driver, rather than mattn's cgo-based one).
func Open(ctx context.Context, driver, dsn string) (*SQLSink, error) {
	sqlDriverName := driver
	if driver == DriverPostgres {
		sqlDriverName = "postgres"
	}
	db, err := sql.Open(sqlDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: ping %s: %w", driver, err)
	}
	s := &SQLSink{db: db, driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLSink) ensureSchema(ctx context.Context) error {
	var ddl string
	switch s.driver {
	case DriverPostgres:
		ddl = `CREATE TABLE IF NOT EXISTS ai_interactions (
			id SERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			model TEXT NOT NULL,
			prompt TEXT NOT NULL,
			response TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT now()
		)`
	default: // mysql, sqlite
		ddl = `CREATE TABLE IF NOT EXISTS ai_interactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			model TEXT NOT NULL,
			prompt TEXT NOT NULL,
			response TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
		if s.driver == DriverMySQL {
			ddl = `CREATE TABLE IF NOT EXISTS ai_interactions (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				kind VARCHAR(32) NOT NULL,
				model VARCHAR(255) NOT NULL,
				prompt TEXT NOT NULL,
				response TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`
		}
	}
	_, err := s.db.ExecContext(ctx, ddl)
	if err != nil {
		return fmt.Errorf("audit: create schema: %w", err)
	}
	return nil
}

// RecordInteraction implements engine.AuditSink.
func (s *SQLSink) RecordInteraction(ctx context.Context, interaction engine.AIInteraction) error {
	query := "INSERT INTO ai_interactions (kind, model, prompt, response) VALUES (?, ?, ?, ?)"
	if s.driver == DriverPostgres {
		query = "INSERT INTO ai_interactions (kind, model, prompt, response) VALUES ($1, $2, $3, $4)"
	}
	_, err := s.db.ExecContext(ctx, query, string(interaction.Kind), interaction.Model, interaction.Prompt, interaction.Response)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLSink) Close() error {
	return s.db.Close()
}
