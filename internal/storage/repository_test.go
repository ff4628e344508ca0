package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "kameo.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.SaveSnapshot(ctx, "upload", "raw statement text", 3, 2)
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if saved.ID == "" {
		t.Fatal("SaveSnapshot() returned empty id")
	}

	got, err := repo.GetSnapshot(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got.RawText != "raw statement text" {
		t.Errorf("RawText = %q", got.RawText)
	}
	if got.Source != "upload" || got.LoanCount != 3 || got.CompanyCount != 2 {
		t.Errorf("snapshot = %+v", got)
	}
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetSnapshot(context.Background(), "no-such-id")
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("GetSnapshot() error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestSQLiteRepository_ListOmitsRawText(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.SaveSnapshot(ctx, "upload", "first", 1, 1); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if _, err := repo.SaveSnapshot(ctx, "demo", "second", 2, 1); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	snaps, err := repo.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}
	for _, s := range snaps {
		if s.RawText != "" {
			t.Errorf("list leaked raw text for %s", s.ID)
		}
	}
}
