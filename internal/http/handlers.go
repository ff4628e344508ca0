package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/TBoneMendez/kameo-dashboard/internal/export"
	"github.com/TBoneMendez/kameo-dashboard/internal/lending"
	"github.com/TBoneMendez/kameo-dashboard/internal/storage"
)

// Uploaded statements are plain text; a megabyte holds years of loans.
const maxStatementBytes = 10 << 20

// dashboardResponse is the full dashboard plus the snapshot id when the
// statement was archived.
type dashboardResponse struct {
	SnapshotID string `json:"snapshot_id,omitempty"`
	*lending.Dashboard
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleDemo renders the dashboard for the embedded demo statement.
func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	dashboard, err := lending.BuildDashboard(s.demo, s.now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Demo dashboard failed", "error", err)
		writeError(w, http.StatusInternalServerError, "demo statement could not be processed")
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{Dashboard: dashboard})
}

// handleIngestStatement accepts raw statement text (request body, or a
// multipart "file" field), computes the dashboard, and archives the text
// as a snapshot when an archive is configured.
func (s *Server) handleIngestStatement(w http.ResponseWriter, r *http.Request) {
	raw, err := readStatement(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dashboard, err := lending.BuildDashboard(raw, s.now())
	if err != nil {
		// Parsing never fails, but expansion does when a loan lacks its
		// allocation row. That is a data problem, not a server problem.
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := dashboardResponse{Dashboard: dashboard}
	if s.archive != nil {
		snap, err := s.archive.SaveSnapshot(r.Context(), "upload", raw,
			dashboard.KPIs.Loans, dashboard.KPIs.Companies)
		if err != nil {
			slog.ErrorContext(r.Context(), "Archiving snapshot failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not archive statement")
			return
		}
		resp.SnapshotID = snap.ID

		if s.publisher != nil {
			if err := s.publisher.PublishSnapshotIngested(r.Context(), snap.ID, dashboard.KPIs.Loans); err != nil {
				// The dashboard is already computed and archived; a broker
				// hiccup should not fail the upload.
				slog.ErrorContext(r.Context(), "Publishing ingest event failed",
					"error", err, "snapshot_id", snap.ID)
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotFound, "snapshot archive is not configured")
		return
	}
	snaps, err := s.archive.ListSnapshots(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Listing snapshots failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list snapshots")
		return
	}
	if snaps == nil {
		snaps = []storage.Snapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}

	dashboard, err := lending.BuildDashboard(snap.RawText, s.now())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{SnapshotID: snap.ID, Dashboard: dashboard})
}

func (s *Server) handleSnapshotCSV(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}

	view := r.URL.Query().Get("view")
	switch view {
	case "":
		view = export.ViewByLoan
	case export.ViewByLoan, export.ViewByCompany, export.ViewDaily:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown view %q", view))
		return
	}

	dashboard, err := lending.BuildDashboard(snap.RawText, s.now())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", snap.ID+"_"+view+".csv"))
	if err := export.WriteView(w, view, dashboard); err != nil {
		// Headers may already be out; log and stop.
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err, "view", view)
	}
}

func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request) (storage.Snapshot, bool) {
	if s.archive == nil {
		writeError(w, http.StatusNotFound, "snapshot archive is not configured")
		return storage.Snapshot{}, false
	}
	snap, err := s.archive.GetSnapshot(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return storage.Snapshot{}, false
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Loading snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load snapshot")
		return storage.Snapshot{}, false
	}
	return snap, true
}

// readStatement extracts raw statement text from a request: a multipart
// "file" field when the form is multipart, otherwise the request body.
func readStatement(r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxStatementBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("missing statement file: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("reading statement file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("reading request body: %w", err)
	}
	return string(data), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
