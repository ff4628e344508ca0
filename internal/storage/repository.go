// Package storage archives uploaded statements in SQLite. The analytics
// engine itself stays stateless: only the raw text and headline counts are
// stored, and every read recomputes the views from scratch.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// ErrSnapshotNotFound is returned when a snapshot id has no row.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is one archived statement upload.
type Snapshot struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Source       string    `json:"source"`
	RawText      string    `json:"-"`
	LoanCount    int       `json:"loan_count"`
	CompanyCount int       `json:"company_count"`
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveSnapshot archives a raw statement and returns its generated id.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, source, rawText string, loanCount, companyCount int) (Snapshot, error) {
	snap := Snapshot{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Source:       source,
		RawText:      rawText,
		LoanCount:    loanCount,
		CompanyCount: companyCount,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, created_at, source, raw_text, loan_count, company_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.CreatedAt, snap.Source, snap.RawText, snap.LoanCount, snap.CompanyCount)
	if err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Statement snapshot archived",
		"snapshot_id", snap.ID,
		"source", snap.Source,
		"loan_count", snap.LoanCount,
		"company_count", snap.CompanyCount)

	return snap, nil
}

// GetSnapshot loads one archived statement, raw text included.
func (r *SQLiteRepository) GetSnapshot(ctx context.Context, id string) (Snapshot, error) {
	var snap Snapshot
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, raw_text, loan_count, company_count
		 FROM snapshots WHERE id = ?`, id).
		Scan(&snap.ID, &snap.CreatedAt, &snap.Source, &snap.RawText, &snap.LoanCount, &snap.CompanyCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return snap, nil
}

// ListSnapshots returns snapshot metadata (no raw text), newest first.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at, source, loan_count, company_count
		 FROM snapshots ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.CreatedAt, &snap.Source, &snap.LoanCount, &snap.CompanyCount); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}
