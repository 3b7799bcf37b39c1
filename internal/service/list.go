// Package service implements the application operations on top of the
// session coordinator, catalog client, and list stores.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cardtrackapp/cardtrack-server/internal/catalog"
	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/errors"
	"github.com/cardtrackapp/cardtrack-server/internal/id"
	"github.com/cardtrackapp/cardtrack-server/internal/query"
	"github.com/cardtrackapp/cardtrack-server/internal/session"
	"github.com/cardtrackapp/cardtrack-server/internal/tracker"
)

// displayDateFormat is the human-readable creation date stored on a list.
const displayDateFormat = "Jan 2, 2006"

// ViewFilter narrows a list's card view by acquisition state.
type ViewFilter string

// View filters.
const (
	ViewAll      ViewFilter = "all"
	ViewAcquired ViewFilter = "acquired"
	ViewMissing  ViewFilter = "missing"
)

// ListService implements searching the catalog and managing saved lists.
type ListService struct {
	coordinator *session.Coordinator
	catalog     *catalog.Client
	tracker     *tracker.Tracker
	logger      *slog.Logger
}

// NewListService creates a list service.
func NewListService(coordinator *session.Coordinator, catalogClient *catalog.Client, acquisitions *tracker.Tracker, logger *slog.Logger) *ListService {
	return &ListService{
		coordinator: coordinator,
		catalog:     catalogClient,
		tracker:     acquisitions,
		logger:      logger,
	}
}

// Search encodes the filter set and runs it against the catalog.
func (s *ListService) Search(ctx context.Context, filters domain.FilterSet) ([]domain.Card, error) {
	if filters.IsEmpty() {
		return nil, errors.ErrEmptyQuery
	}

	q := query.Encode(filters)
	return s.catalog.Search(ctx, q, catalog.Sort{
		Key:       filters.SortKey,
		Direction: filters.SortDirection,
	})
}

// Lists returns the current snapshot of saved lists, newest first.
func (s *ListService) Lists() []domain.CardList {
	return s.coordinator.Snapshot()
}

// Get returns a single saved list from the current view.
func (s *ListService) Get(listID string) (domain.CardList, error) {
	list, ok := s.coordinator.Find(listID)
	if !ok {
		return domain.CardList{}, errors.NotFoundf("list %s not found", listID)
	}
	return list, nil
}

// CreateFromSearch saves a new list from a search: it runs the filters
// against the catalog, snapshots the filters and the derived query, and
// stores small images of the first results as preview thumbnails. The
// encoded query is persisted with the list and never regenerated.
func (s *ListService) CreateFromSearch(ctx context.Context, name string, filters domain.FilterSet) (domain.CardList, error) {
	if name == "" {
		return domain.CardList{}, errors.Validation("list name is required")
	}
	if filters.IsEmpty() {
		return domain.CardList{}, errors.ErrEmptyQuery
	}

	cards, err := s.Search(ctx, filters)
	if err != nil {
		return domain.CardList{}, err
	}

	list := domain.CardList{
		ID:                id.ListID(),
		Name:              name,
		CreatedAt:         time.Now().Format(displayDateFormat),
		Filters:           filters.Clone(),
		Query:             query.Encode(filters),
		PreviewThumbnails: previewThumbnails(cards),
		AcquiredIDs:       []string{},
	}

	if err := s.coordinator.ActiveStore().Create(ctx, &list); err != nil {
		return domain.CardList{}, err
	}

	s.logger.Info("list created", "list_id", list.ID, "name", name, "cards", len(cards))
	return list, nil
}

// previewThumbnails picks small images from the first results, skipping
// cards without one.
func previewThumbnails(cards []domain.Card) []string {
	thumbs := make([]string, 0, domain.MaxPreviewThumbnails)
	for _, card := range cards {
		if len(thumbs) == domain.MaxPreviewThumbnails {
			break
		}
		if card.ImageSmall == "" {
			continue
		}
		thumbs = append(thumbs, card.ImageSmall)
	}
	return thumbs
}

// Delete removes a saved list. Deleting a list that is already gone is not
// an error; the end state is the same.
func (s *ListService) Delete(ctx context.Context, listID string) error {
	err := s.coordinator.ActiveStore().Delete(ctx, listID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil
	}
	return err
}

// FetchCards re-runs a saved list's durable query, optionally overriding the
// stored sort for this view only. The override is not persisted.
func (s *ListService) FetchCards(ctx context.Context, listID string, sortOverride *catalog.Sort) ([]domain.Card, error) {
	list, err := s.Get(listID)
	if err != nil {
		return nil, err
	}

	sort := catalog.Sort{
		Key:       list.Filters.SortKey,
		Direction: list.Filters.SortDirection,
	}
	if sortOverride != nil {
		sort = *sortOverride
	}

	return s.catalog.Search(ctx, list.Query, sort)
}

// FilterCards narrows cards to those matching the view filter for the list.
func FilterCards(list domain.CardList, cards []domain.Card, view ViewFilter) []domain.Card {
	if view == ViewAll || view == "" {
		return cards
	}

	wantAcquired := view == ViewAcquired
	out := make([]domain.Card, 0, len(cards))
	for _, card := range cards {
		if list.HasAcquired(card.ID) == wantAcquired {
			out = append(out, card)
		}
	}
	return out
}

// ToggleAcquired flips a card's acquired state on a list and commits it
// optimistically. The returned list reflects the toggle even if persistence
// later fails.
func (s *ListService) ToggleAcquired(ctx context.Context, listID, cardID string) (domain.CardList, error) {
	list, err := s.Get(listID)
	if err != nil {
		return domain.CardList{}, err
	}

	return s.tracker.ToggleAndCommit(ctx, s.coordinator.ActiveStore(), list, cardID), nil
}

// Progress reports a list's completion percentage against the card count of
// its current fetch.
func (s *ListService) Progress(list domain.CardList, totalFetched int) int {
	return tracker.Progress(len(list.AcquiredIDs), totalFetched)
}

// TypeOptions returns the card type autocomplete values.
func (s *ListService) TypeOptions(ctx context.Context) []string {
	return s.catalog.CatalogValues(ctx, catalog.DefaultTypeCategories)
}
