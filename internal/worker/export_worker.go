// Package worker turns snapshot-ingest events into CSV exports on disk.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/TBoneMendez/kameo-dashboard/internal/amqp"
	"github.com/TBoneMendez/kameo-dashboard/internal/export"
	"github.com/TBoneMendez/kameo-dashboard/internal/lending"
	"github.com/TBoneMendez/kameo-dashboard/internal/storage"
)

// SnapshotReader is the slice of the archive the worker needs.
type SnapshotReader interface {
	GetSnapshot(ctx context.Context, id string) (storage.Snapshot, error)
}

// ExportWorker recomputes the views of an archived statement and writes
// per-view CSV files next to each other in the export directory.
type ExportWorker struct {
	archive SnapshotReader
	outDir  string
	now     func() time.Time
}

func NewExportWorker(archive SnapshotReader, outDir string) *ExportWorker {
	return &ExportWorker{
		archive: archive,
		outDir:  outDir,
		now:     time.Now,
	}
}

// HandleSnapshotMessage processes one ingest event: load the archived
// statement, rebuild the dashboard, export the loan and company views.
func (w *ExportWorker) HandleSnapshotMessage(ctx context.Context, msg *amqp.SnapshotIngestedMessage) error {
	slog.InfoContext(ctx, "Processing snapshot ingest message",
		"snapshot_id", msg.SnapshotID,
		"loan_count", msg.LoanCount)

	snap, err := w.archive.GetSnapshot(ctx, msg.SnapshotID)
	if err != nil {
		return fmt.Errorf("get snapshot from archive: %w", err)
	}

	dashboard, err := lending.BuildDashboard(snap.RawText, w.now())
	if err != nil {
		return fmt.Errorf("rebuild dashboard: %w", err)
	}

	if err := os.MkdirAll(w.outDir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	for _, view := range []string{export.ViewByLoan, export.ViewByCompany} {
		path := filepath.Join(w.outDir, fmt.Sprintf("%s_%s.csv", snap.ID, view))
		if err := w.writeViewFile(path, view, dashboard); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Exported view",
			"snapshot_id", snap.ID,
			"view", view,
			"path", path)
	}

	return nil
}

func (w *ExportWorker) writeViewFile(path, view string, d *lending.Dashboard) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file %s: %w", path, err)
	}
	defer f.Close()

	if err := export.WriteView(f, view, d); err != nil {
		return fmt.Errorf("write %s view: %w", view, err)
	}
	return nil
}
