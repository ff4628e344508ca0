// Package http is the thin JSON/CSV adapter around the lending engine:
// it sources raw statement text (upload, paste, demo, archive), runs the
// pipeline, and renders the results. No computation lives here.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/TBoneMendez/kameo-dashboard/internal/storage"
)

// SnapshotArchive stores and retrieves uploaded statements. A nil archive
// disables snapshot endpoints; uploads still compute, they just are not
// archived.
type SnapshotArchive interface {
	SaveSnapshot(ctx context.Context, source, rawText string, loanCount, companyCount int) (storage.Snapshot, error)
	GetSnapshot(ctx context.Context, id string) (storage.Snapshot, error)
	ListSnapshots(ctx context.Context) ([]storage.Snapshot, error)
}

// IngestPublisher announces archived snapshots to downstream consumers.
// Nil disables publishing.
type IngestPublisher interface {
	PublishSnapshotIngested(ctx context.Context, snapshotID string, loanCount int) error
}

type Server struct {
	http.Server

	archive   SnapshotArchive
	publisher IngestPublisher
	demo      string

	// now anchors the forecast's "current month"; injectable for tests.
	now func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, archive SnapshotArchive, publisher IngestPublisher, demoStatement string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		archive:   archive,
		publisher: publisher,
		demo:      demoStatement,
		now:       time.Now,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/demo", s.withSecurityHeaders(s.handleDemo))
	mux.HandleFunc("POST /api/statements", s.withSecurityHeaders(s.handleIngestStatement))
	mux.HandleFunc("GET /api/snapshots", s.withSecurityHeaders(s.handleListSnapshots))
	mux.HandleFunc("GET /api/snapshots/{id}", s.withSecurityHeaders(s.handleGetSnapshot))
	mux.HandleFunc("GET /api/snapshots/{id}/csv", s.withSecurityHeaders(s.handleSnapshotCSV))

	return s
}

func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		next(w, r)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
