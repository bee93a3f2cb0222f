package api

import (
	"fmt"
	"net/http"

	"github.com/angelarchive/archive-server/internal/export"
	"github.com/angelarchive/archive-server/internal/http/response"
)

// handleExport streams the user's collection snapshot as a file download.
// The export cooldown yields a 429 with a retry hint.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, "format must be json or csv", s.logger)
		return
	}

	userID := getUserID(r.Context())
	snapshot, err := s.exportService.Export(r.Context(), userID, format)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(userID, format)))
	w.WriteHeader(http.StatusOK)

	if err := snapshot.Write(w, format); err != nil {
		// Headers are gone; all we can do is log.
		s.logger.Error("Failed to write export", "error", err, "user_id", userID)
	}
}

// handleExportStatus reports whether the user may export now.
func (s *Server) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.exportService.Status(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, status, s.logger)
}
