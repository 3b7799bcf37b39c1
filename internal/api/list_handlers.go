package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardtrackapp/cardtrack-server/internal/catalog"
	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/http/response"
	"github.com/cardtrackapp/cardtrack-server/internal/service"
)

// handleListLists returns the current snapshot of saved lists, newest first.
func (s *Server) handleListLists(w http.ResponseWriter, _ *http.Request) {
	lists := s.lists.Lists()
	if lists == nil {
		lists = []domain.CardList{}
	}
	response.Success(w, map[string]any{"lists": lists}, s.logger)
}

// handleCreateList saves a new list from a search.
func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	list, err := s.lists.CreateFromSearch(r.Context(), req.Name, req.toDomain())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, list, s.logger)
}

// handleGetList returns a single saved list.
func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	list, err := s.lists.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, list, s.logger)
}

// handleDeleteList removes a saved list.
func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.lists.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

// handleListCards re-runs a list's durable query. Query parameters:
// order/dir override the stored sort for this view; view narrows to
// all, acquired, or missing.
func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "id")

	list, err := s.lists.Get(listID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sortOverride := parseSortOverride(r)
	cards, err := s.lists.FetchCards(r.Context(), listID, sortOverride)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	view := service.ViewFilter(r.URL.Query().Get("view"))
	filtered := service.FilterCards(list, cards, view)
	if view == "" {
		view = service.ViewAll
	}

	response.Success(w, listCardsResponse{
		Cards:    filtered,
		Total:    len(cards),
		Progress: s.lists.Progress(list, len(cards)),
		View:     string(view),
	}, s.logger)
}

// handleToggleAcquired flips a card's acquired state on a list.
func (s *Server) handleToggleAcquired(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "id")
	cardID := chi.URLParam(r, "cardID")

	list, err := s.lists.ToggleAcquired(r.Context(), listID, cardID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, list, s.logger)
}

// parseSortOverride reads an optional order/dir override from the query
// string. Returns nil when neither is present so the stored sort applies.
func parseSortOverride(r *http.Request) *catalog.Sort {
	order := r.URL.Query().Get("order")
	dir := r.URL.Query().Get("dir")
	if order == "" && dir == "" {
		return nil
	}
	return &catalog.Sort{
		Key:       domain.SortKey(order),
		Direction: domain.SortDirection(dir),
	}
}
