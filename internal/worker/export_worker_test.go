package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TBoneMendez/kameo-dashboard/internal/amqp"
	"github.com/TBoneMendez/kameo-dashboard/internal/storage"
)

type fakeArchive struct {
	snapshots map[string]storage.Snapshot
}

func (f *fakeArchive) GetSnapshot(_ context.Context, id string) (storage.Snapshot, error) {
	snap, ok := f.snapshots[id]
	if !ok {
		return storage.Snapshot{}, storage.ErrSnapshotNotFound
	}
	return snap, nil
}

const workerStatement = "Acme AS - 1001 | Løpetid: 12 m | Rente: 8,5%\n" +
	"Dato\tTransaksjon\tBeløp\tValuta\tKurs\tBeløp i NOK\n" +
	"2023-01-01\tTildeling\t-10 000,00\tNOK\t\t-10 000,00\n"

func TestExportWorker_HandleSnapshotMessage(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "exports")
	archive := &fakeArchive{snapshots: map[string]storage.Snapshot{
		"snap-1": {ID: "snap-1", RawText: workerStatement},
	}}

	w := NewExportWorker(archive, outDir)
	w.now = func() time.Time { return time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC) }

	msg := &amqp.SnapshotIngestedMessage{SnapshotID: "snap-1", LoanCount: 1}
	if err := w.HandleSnapshotMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSnapshotMessage() error = %v", err)
	}

	byLoan, err := os.ReadFile(filepath.Join(outDir, "snap-1_by_loan.csv"))
	if err != nil {
		t.Fatalf("reading by_loan export: %v", err)
	}
	if !strings.Contains(string(byLoan), "Acme AS") {
		t.Errorf("by_loan export missing loan row:\n%s", byLoan)
	}

	if _, err := os.Stat(filepath.Join(outDir, "snap-1_by_company.csv")); err != nil {
		t.Errorf("by_company export missing: %v", err)
	}
}

func TestExportWorker_MissingSnapshot(t *testing.T) {
	w := NewExportWorker(&fakeArchive{snapshots: map[string]storage.Snapshot{}}, t.TempDir())

	err := w.HandleSnapshotMessage(context.Background(), &amqp.SnapshotIngestedMessage{SnapshotID: "nope"})
	if !errors.Is(err, storage.ErrSnapshotNotFound) {
		t.Fatalf("HandleSnapshotMessage() error = %v, want ErrSnapshotNotFound", err)
	}
}
