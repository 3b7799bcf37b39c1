// Package liststore provides persistence for saved card lists behind a single
// capability interface with two variants: a local single-process store and a
// per-owner remote document store.
package liststore

import (
	"context"
	"sync"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/id"
)

// Store is the capability set shared by both variants. Callers hold only this
// interface; the session coordinator decides which concrete variant is active.
type Store interface {
	// Create inserts a new list keyed by its id.
	// Fails with errors.ErrDuplicateID if the id already exists for the owner.
	Create(ctx context.Context, list *domain.CardList) error

	// Update merges the patch into the existing list. Fields absent from the
	// patch are left untouched. Fails with errors.ErrNotFound if no list with
	// the id exists for the current owner.
	Update(ctx context.Context, listID string, patch domain.ListPatch) error

	// Delete removes the list. Fails with errors.ErrNotFound if absent; a
	// second delete of an already-missing id is NotFound too, which callers
	// may swallow.
	Delete(ctx context.Context, listID string) error

	// Observe registers a listener invoked once immediately with the current
	// known state and again on every subsequent change, until the returned
	// unsubscribe function is called. Emitted snapshots are sorted by id
	// descending (most-recently-created first).
	Observe(fn func(lists []domain.CardList)) (unsubscribe func(), err error)

	// Close releases the store's resources and stops any subscription.
	Close() error
}

// listenerSet is the shared observation registry. Both variants deliver full
// snapshots through it; unsubscribing mid-emission is safe.
type listenerSet struct {
	mu  sync.RWMutex
	fns map[string]func([]domain.CardList)
}

func newListenerSet() *listenerSet {
	return &listenerSet{fns: make(map[string]func([]domain.CardList))}
}

// add registers a listener and returns its removal function.
func (s *listenerSet) add(fn func([]domain.CardList)) (func(), error) {
	handle, err := id.Generate("obs")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.fns[handle] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.fns, handle)
		s.mu.Unlock()
	}, nil
}

// emit invokes every registered listener with the snapshot.
func (s *listenerSet) emit(lists []domain.CardList) {
	s.mu.RLock()
	fns := make([]func([]domain.CardList), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(lists)
	}
}

// cloneSnapshot deep-copies and sorts lists for emission, so listeners can
// never alias the store's internal state.
func cloneSnapshot(lists []domain.CardList) []domain.CardList {
	out := make([]domain.CardList, 0, len(lists))
	for _, l := range lists {
		out = append(out, l.Clone())
	}
	domain.SortSnapshot(out)
	return out
}
