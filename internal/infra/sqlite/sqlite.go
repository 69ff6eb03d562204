// Package sqlite implements port.CRMStore on an embedded SQLite database.
//
// Each entity table carries indexed scalar columns for filtered scans plus a
// data_json blob holding the full serialized entity, so queries stay on cheap
// columns while reads return the full-fidelity shape. The serialization format
// lives behind codec.go and can be swapped without touching callers.
//
// The store owns a single connection shared by all callers; concurrent writers
// are serialized by capping the pool at one connection. Aggregation reads scan
// whole tables — fine at demo scale (hundreds of rows), a known boundary beyond.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fizzlab/salesintel/internal/domain"

	"go.uber.org/zap"
)

// Store is the SQLite-backed CRM store.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the database at path and ensures the schema exists.
// Calling Open against an existing database is idempotent.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &domain.ErrStorageUnavailable{Op: "open", Err: err}
		}
	}

	// Referential checks live in the service layer; deletes deliberately do
	// not cascade, so the schema carries no foreign key constraints.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "open", Err: err}
	}
	// One shared connection; writers are serialized here rather than by callers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, &domain.ErrStorageUnavailable{Op: "migrate", Err: err}
	}

	logger.Info("sqlite store opened", zap.String("path", path))
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		account_type     TEXT NOT NULL,
		region           TEXT,
		country          TEXT,
		annual_revenue   REAL,
		employee_count   INTEGER,
		health_score     REAL,
		churn_risk_score REAL,
		lifetime_value   REAL,
		created_date     TEXT,
		last_activity_date TEXT,
		updated_at       TEXT NOT NULL,
		data_json        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_accounts_region ON accounts(region);
	CREATE INDEX IF NOT EXISTS idx_accounts_type ON accounts(account_type);
	CREATE INDEX IF NOT EXISTS idx_accounts_churn ON accounts(churn_risk_score);

	CREATE TABLE IF NOT EXISTS contacts (
		id              TEXT PRIMARY KEY,
		account_id      TEXT NOT NULL,
		first_name      TEXT NOT NULL,
		last_name       TEXT NOT NULL,
		title           TEXT,
		decision_maker  INTEGER NOT NULL DEFAULT 0,
		influence_level INTEGER,
		updated_at      TEXT NOT NULL,
		data_json       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_contacts_account ON contacts(account_id);

	CREATE TABLE IF NOT EXISTS opportunities (
		id                  TEXT PRIMARY KEY,
		account_id          TEXT NOT NULL,
		name                TEXT NOT NULL,
		stage               TEXT NOT NULL,
		probability         REAL,
		amount              REAL,
		expected_close_date TEXT,
		created_date        TEXT,
		updated_at          TEXT NOT NULL,
		data_json           TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_opportunities_account ON opportunities(account_id);
	CREATE INDEX IF NOT EXISTS idx_opportunities_stage ON opportunities(stage);

	CREATE TABLE IF NOT EXISTS communications (
		id                   TEXT PRIMARY KEY,
		account_id           TEXT NOT NULL,
		contact_id           TEXT,
		opportunity_id       TEXT,
		communication_type   TEXT NOT NULL,
		subject              TEXT,
		date                 TEXT,
		direction            TEXT,
		sentiment_label      TEXT,
		sentiment_confidence REAL,
		updated_at           TEXT NOT NULL,
		data_json            TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_communications_account ON communications(account_id);
	CREATE INDEX IF NOT EXISTS idx_communications_opportunity ON communications(opportunity_id);

	CREATE TABLE IF NOT EXISTS ai_insights (
		id               TEXT PRIMARY KEY,
		account_id       TEXT,
		opportunity_id   TEXT,
		insight_type     TEXT NOT NULL,
		title            TEXT NOT NULL,
		confidence_score REAL,
		priority         TEXT,
		created_date     TEXT,
		expires_date     TEXT,
		acted_upon       INTEGER NOT NULL DEFAULT 0,
		updated_at       TEXT NOT NULL,
		data_json        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_insights_account ON ai_insights(account_id);
	CREATE INDEX IF NOT EXISTS idx_insights_type ON ai_insights(insight_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the connection. Safe to call multiple times.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil && !strings.Contains(err.Error(), "already closed") {
		return &domain.ErrStorageUnavailable{Op: "close", Err: err}
	}
	return nil
}

// ============================================================
// Shared row helpers
// ============================================================

// ts formats a timestamp for storage; zero times become the empty string so
// that absent stays absent.
func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// exec wraps Exec errors as storage failures.
func (s *Store) exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, err // caller maps to ErrDuplicateKey with context
		}
		s.logger.Error("sqlite exec failed", zap.String("op", op), zap.Error(err))
		return nil, &domain.ErrStorageUnavailable{Op: op, Err: err}
	}
	return res, nil
}

// replaceRow performs the guarded full-row replace shared by all entity
// updates: when expected is non-zero the row version must still match,
// otherwise the write is rejected as stale.
func (s *Store) replaceRow(ctx context.Context, table, resource, id string, expected time.Time, set string, args []any) error {
	op := "update " + table

	query := "UPDATE " + table + " SET " + set + " WHERE id = ?"
	args = append(args, id)
	if !expected.IsZero() {
		query += " AND updated_at = ?"
		args = append(args, ts(expected))
	}

	res, err := s.exec(ctx, op, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &domain.ErrStorageUnavailable{Op: op, Err: err}
	}
	if n > 0 {
		return nil
	}

	// Nothing matched: distinguish a missing row from a stale version.
	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+table+" WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return &domain.ErrStorageUnavailable{Op: op, Err: err}
	}
	if exists == 0 {
		return &domain.ErrNotFound{Resource: resource, ID: id}
	}
	return &domain.ErrStaleWrite{Resource: resource, ID: id}
}

// deleteRow removes a row. Deleting an absent id is a deliberate no-op: the
// end state (row gone) is identical either way, and the route layer treats
// DELETE as idempotent. Pinned by tests.
func (s *Store) deleteRow(ctx context.Context, table, id string) error {
	_, err := s.exec(ctx, "delete "+table, "DELETE FROM "+table+" WHERE id = ?", id)
	return err
}
