// Package history persists a local record of past audit runs.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/firstrun/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded audit run.
type Run struct {
	ID               int64
	SessionID        string
	Target           string
	Score            float64
	Grade            string
	RedFlagCount     int
	DurationSeconds  float64
	ValidationStatus string
	Tier             string
	CreatedAt        time.Time
}

// Store manages the SQLite database holding audit run history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
// Pass ":memory:" for an ephemeral store.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so later statements wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts one completed audit session into the history.
func (s *Store) Record(ctx context.Context, session *models.AuditSession, duration time.Duration) (int64, error) {
	status := string(models.ValidationSkipped)
	if session.Validation != nil {
		status = string(session.Validation.Status)
	}

	query := `INSERT INTO audit_runs
		(session_id, target, score, grade, red_flag_count, duration_seconds, validation_status, tier)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.Target,
		session.Score,
		session.Grade,
		len(session.RedFlags),
		duration.Seconds(),
		status,
		session.Config.Tier,
	)
	if err != nil {
		return 0, fmt.Errorf("insert audit run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first. A limit of 0 means no
// limit. Target filters to one audited path when non-empty.
func (s *Store) List(ctx context.Context, target string, limit int) ([]Run, error) {
	query := `SELECT id, session_id, target, score, grade, red_flag_count,
		duration_seconds, validation_status, tier, created_at
		FROM audit_runs`

	args := []any{}
	if target != "" {
		query += " WHERE target = ?"
		args = append(args, target)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID,
			&r.SessionID,
			&r.Target,
			&r.Score,
			&r.Grade,
			&r.RedFlagCount,
			&r.DurationSeconds,
			&r.ValidationStatus,
			&r.Tier,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit run rows: %w", err)
	}
	return runs, nil
}

// Prune removes runs older than keepDays. Zero or negative keeps everything.
// Returns the number of deleted rows.
func (s *Store) Prune(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -keepDays)
	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return deleted, nil
}
