package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/angelarchive/archive-server/internal/http/response"
	"github.com/angelarchive/archive-server/internal/service"
)

// handleListCollection returns the authenticated user's collection records
// with embedded catalog angels.
func (s *Server) handleListCollection(w http.ResponseWriter, r *http.Request) {
	items, err := s.collectionService.List(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"records": items,
		"count":   len(items),
	}, s.logger)
}

// handleGetRecord returns the user's record for one angel.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	item, err := s.collectionService.Get(r.Context(), getUserID(r.Context()), urlParam(r, "angelID"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, item, s.logger)
}

// handleUpsertRecord writes the user's record for an angel. A body carrying
// only default values deletes the record instead.
func (s *Server) handleUpsertRecord(w http.ResponseWriter, r *http.Request) {
	var req service.UpsertRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	item, err := s.collectionService.Upsert(r.Context(), getUserID(r.Context()), urlParam(r, "angelID"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, item, s.logger)
}

// handleDeleteRecord removes the user's record for an angel. Idempotent.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.collectionService.Delete(r.Context(), getUserID(r.Context()), urlParam(r, "angelID")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
