package api

import (
	"net/http"

	"github.com/angelarchive/archive-server/internal/http/response"
	"github.com/angelarchive/archive-server/internal/search"
)

// handleSearch runs a catalog search. An empty query matches everything so
// clients can browse with just a series filter.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	defaults := search.DefaultParams()
	params := search.Params{
		Query:     r.URL.Query().Get("q"),
		SeriesID:  r.URL.Query()["series"],
		Limit:     queryInt(r, "limit", defaults.Limit),
		Offset:    queryInt(r, "offset", defaults.Offset),
		Highlight: true,
	}

	result, err := s.searchService.Search(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
