package api

import (
	"net/http"

	"github.com/angelarchive/archive-server/internal/http/response"
)

// handleActivity returns the caller's recent API activity from the audit log.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.auditLog == nil {
		response.Success(w, map[string]any{"entries": []any{}, "count": 0}, s.logger)
		return
	}

	limit := queryInt(r, "limit", 50)
	entries, err := s.auditLog.ListByUser(r.Context(), getUserID(r.Context()), limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"entries": entries,
		"count":   len(entries),
	}, s.logger)
}
