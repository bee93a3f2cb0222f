package api

import (
	"net/http"

	"github.com/angelarchive/archive-server/internal/domain"
	"github.com/angelarchive/archive-server/internal/http/response"
)

// handleListAngels returns the catalog ordered by card number, optionally
// restricted to one series via the series query parameter.
func (s *Server) handleListAngels(w http.ResponseWriter, r *http.Request) {
	var (
		angels []*domain.Angel
		err    error
	)
	if seriesID := r.URL.Query().Get("series"); seriesID != "" {
		angels, err = s.catalogService.ListAngelsBySeries(r.Context(), seriesID)
	} else {
		angels, err = s.catalogService.ListAngels(r.Context())
	}
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"angels": angels,
		"count":  len(angels),
	}, s.logger)
}

// handleGetAngel returns one catalog angel.
func (s *Server) handleGetAngel(w http.ResponseWriter, r *http.Request) {
	angel, err := s.catalogService.GetAngel(r.Context(), urlParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, angel, s.logger)
}

// handleListSeries returns all series ordered by name.
func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	series, err := s.catalogService.ListSeries(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"series": series,
		"count":  len(series),
	}, s.logger)
}
