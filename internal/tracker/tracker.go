// Package tracker implements acquisition tracking for card lists: the
// acquired toggle, progress computation, and optimistic persistence.
package tracker

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/errors"
	"github.com/cardtrackapp/cardtrack-server/internal/liststore"
	"github.com/cardtrackapp/cardtrack-server/internal/notify"
)

// Toggle returns a copy of the list with cardID's acquired state flipped.
// Toggling twice restores the original membership.
func Toggle(list domain.CardList, cardID string) domain.CardList {
	out := list.Clone()
	if idx := slices.Index(out.AcquiredIDs, cardID); idx >= 0 {
		out.AcquiredIDs = slices.Delete(out.AcquiredIDs, idx, idx+1)
		return out
	}
	out.AcquiredIDs = append(out.AcquiredIDs, cardID)
	return out
}

// Progress returns the completion percentage, rounded to the nearest whole
// number. A list with no fetched cards reports 0 rather than dividing by zero.
func Progress(acquired, totalFetched int) int {
	if totalFetched < 1 {
		totalFetched = 1
	}
	return int(math.Round(100 * float64(acquired) / float64(totalFetched)))
}

// Tracker commits acquisition toggles against the active list store.
type Tracker struct {
	notifier *notify.Notifier
	logger   *slog.Logger
}

// New creates a tracker.
func New(notifier *notify.Notifier, logger *slog.Logger) *Tracker {
	return &Tracker{notifier: notifier, logger: logger}
}

// ToggleAndCommit flips cardID on the list and persists the new acquired set
// through store. The toggled list is returned immediately; persistence runs
// in the background and a failure is reported through the notifier without
// rolling the returned value back.
func (t *Tracker) ToggleAndCommit(ctx context.Context, store liststore.Store, list domain.CardList, cardID string) domain.CardList {
	toggled := Toggle(list, cardID)

	patch := domain.AcquiredPatch(toggled.AcquiredIDs)

	// Detach from the request context: the commit should outlive the request
	// that triggered it.
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := store.Update(bg, toggled.ID, patch); err != nil {
			t.logger.Error("failed to persist acquired toggle",
				"list_id", toggled.ID, "card_id", cardID, "error", err)
			t.notifier.Error(string(errors.CodeInternal), "failed to save acquired state")
		}
	}()

	return toggled
}
