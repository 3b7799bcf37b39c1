package api

import (
	"net/http"

	"github.com/cardtrackapp/cardtrack-server/internal/http/response"
)

// handleSearch runs a filter set against the card catalog.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	cards, err := s.lists.Search(r.Context(), req.toDomain())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"cards": cards,
		"total": len(cards),
	}, s.logger)
}

// handleTypeOptions returns the type autocomplete values.
func (s *Server) handleTypeOptions(w http.ResponseWriter, r *http.Request) {
	types := s.lists.TypeOptions(r.Context())
	response.Success(w, map[string]any{"types": types}, s.logger)
}
