package liststore

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/errors"
)

// localKey is the single well-known key the whole collection lives under.
// Every mutation reserializes and rewrites the entire collection in one
// atomic update.
const localKey = "lists:v1"

// LocalStore persists the anonymous owner's lists in a local Badger database.
// There is exactly one logical writer (this process), so mutations are applied
// synchronously and listeners are invoked on the mutating goroutine.
type LocalStore struct {
	db     *badger.DB
	logger *slog.Logger

	mu        sync.Mutex
	lists     []domain.CardList
	listeners *listenerSet
}

// OpenLocal opens (or creates) the local store at path.
//
// If the underlying storage cannot be opened at all, a degraded store is
// returned alongside the error: viewing last-known in-memory state still
// works, but every mutation fails with errors.ErrStorageDisabled. The caller
// is expected to report that persistence is disabled rather than abort.
func OpenLocal(path string, logger *slog.Logger) (*LocalStore, error) {
	s := &LocalStore{
		logger:    logger,
		listeners: newListenerSet(),
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // Survive crashes without losing acknowledged writes

	db, err := badger.Open(opts)
	if err != nil {
		return s, errors.StorageDisabled("local storage unavailable").WithCause(err)
	}
	s.db = db

	if err := s.load(); err != nil {
		// A corrupt blob is unrecoverable at this layer; start empty rather
		// than refuse to serve.
		if logger != nil {
			logger.Error("failed to load local lists, starting empty", "error", err)
		}
		s.lists = nil
	}

	if logger != nil {
		logger.Info("local list store opened", "path", path, "lists", len(s.lists))
	}
	return s, nil
}

// load reads the serialized collection from the well-known key.
func (s *LocalStore) load() error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(localKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // fresh store
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s.lists)
		})
	})
}

// persist rewrites the entire collection under the well-known key.
// Caller must hold s.mu.
func (s *LocalStore) persist(lists []domain.CardList) error {
	data, err := json.Marshal(lists)
	if err != nil {
		return fmt.Errorf("marshal lists: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(localKey), data)
	})
}

// Create implements Store.
func (s *LocalStore) Create(ctx context.Context, list *domain.CardList) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db == nil {
		return errors.ErrStorageDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.lists {
		if existing.ID == list.ID {
			return errors.DuplicateID(fmt.Sprintf("list %s already exists", list.ID))
		}
	}

	next := append(cloneLists(s.lists), list.Clone())
	if err := s.persist(next); err != nil {
		return fmt.Errorf("persist lists: %w", err)
	}
	s.lists = next

	s.listeners.emit(cloneSnapshot(s.lists))
	return nil
}

// Update implements Store.
func (s *LocalStore) Update(ctx context.Context, listID string, patch domain.ListPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db == nil {
		return errors.ErrStorageDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneLists(s.lists)
	idx := -1
	for i := range next {
		if next[i].ID == listID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NotFoundf("list %s not found", listID)
	}

	patch.Apply(&next[idx])
	if err := s.persist(next); err != nil {
		return fmt.Errorf("persist lists: %w", err)
	}
	s.lists = next

	s.listeners.emit(cloneSnapshot(s.lists))
	return nil
}

// Delete implements Store.
func (s *LocalStore) Delete(ctx context.Context, listID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db == nil {
		return errors.ErrStorageDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.CardList, 0, len(s.lists))
	found := false
	for _, l := range s.lists {
		if l.ID == listID {
			found = true
			continue
		}
		next = append(next, l.Clone())
	}
	if !found {
		return errors.NotFoundf("list %s not found", listID)
	}

	if err := s.persist(next); err != nil {
		return fmt.Errorf("persist lists: %w", err)
	}
	s.lists = next

	s.listeners.emit(cloneSnapshot(s.lists))
	return nil
}

// Observe implements Store. The immediate emission happens synchronously
// before Observe returns.
func (s *LocalStore) Observe(fn func(lists []domain.CardList)) (func(), error) {
	unsubscribe, err := s.listeners.add(fn)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	snapshot := cloneSnapshot(s.lists)
	s.mu.Unlock()

	fn(snapshot)
	return unsubscribe, nil
}

// Close implements Store.
func (s *LocalStore) Close() error {
	if s.db == nil {
		return nil
	}
	if s.logger != nil {
		s.logger.Info("closing local list store")
	}
	return s.db.Close()
}

// PersistenceDisabled reports whether the store is running degraded, serving
// in-memory state only.
func (s *LocalStore) PersistenceDisabled() bool {
	return s.db == nil
}

func cloneLists(lists []domain.CardList) []domain.CardList {
	out := make([]domain.CardList, 0, len(lists))
	for _, l := range lists {
		out = append(out, l.Clone())
	}
	return out
}
