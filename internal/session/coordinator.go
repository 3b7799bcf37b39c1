// Package session coordinates which list store is active for the current
// identity and fans its observations out to registered consumers.
package session

import (
	"log/slog"
	"sync"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/id"
	"github.com/cardtrackapp/cardtrack-server/internal/liststore"
)

// RemoteFactory builds a remote store bound to an authenticated owner.
type RemoteFactory func(subjectID, token string) liststore.Store

// Consumer receives the current list snapshot whenever it changes.
type Consumer func(lists []domain.CardList)

// Coordinator owns the session's active list store. Anonymous sessions are
// served by the shared local store; authenticated sessions get a per-owner
// remote store built on demand and torn down on sign-out.
//
// Each transition bumps an epoch counter. Observation callbacks carry the
// epoch they were registered under, and emissions from a stale epoch are
// discarded, so a slow callback from a torn-down store can never overwrite
// the new identity's snapshot.
type Coordinator struct {
	local   liststore.Store
	remote  RemoteFactory
	logger  *slog.Logger

	mu        sync.Mutex
	identity  domain.Identity
	active    liststore.Store
	epoch     uint64
	unobserve func()
	snapshot  []domain.CardList
	consumers map[string]Consumer
}

// NewCoordinator creates a coordinator bound to the local store under the
// anonymous identity.
func NewCoordinator(local liststore.Store, remote RemoteFactory, logger *slog.Logger) *Coordinator {
	c := &Coordinator{
		local:     local,
		remote:    remote,
		logger:    logger,
		identity:  domain.Anonymous,
		active:    local,
		epoch:     1,
		consumers: make(map[string]Consumer),
	}
	c.observe(local, 1)
	return c
}

// SetIdentity transitions the session to the given identity, rebinding the
// active store. A transition to the identity already in effect is a no-op.
// On leaving an authenticated session the remote store is closed and its
// in-memory view discarded; nothing is copied between stores.
func (c *Coordinator) SetIdentity(identity domain.Identity, token string) {
	c.mu.Lock()
	if c.identity.Equal(identity) {
		c.mu.Unlock()
		return
	}

	c.epoch++
	epoch := c.epoch

	oldStore := c.active
	oldUnobserve := c.unobserve

	var next liststore.Store
	if identity.IsAuthenticated {
		next = c.remote(identity.SubjectID, token)
	} else {
		next = c.local
	}

	c.identity = identity
	c.active = next
	c.unobserve = nil
	c.snapshot = nil
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("session identity changed",
			"authenticated", identity.IsAuthenticated, "subject_id", identity.SubjectID)
	}

	if oldUnobserve != nil {
		oldUnobserve()
	}
	if oldStore != nil && oldStore != c.local {
		if err := oldStore.Close(); err != nil && c.logger != nil {
			c.logger.Warn("failed to close previous store", "error", err)
		}
	}

	c.observe(next, epoch)
}

// observe subscribes to store. The immediate emission delivers the new
// store's snapshot to every registered consumer.
func (c *Coordinator) observe(store liststore.Store, epoch uint64) {
	unobserve, err := store.Observe(func(lists []domain.CardList) {
		c.deliver(epoch, lists)
	})
	if err != nil {
		if c.logger != nil {
			c.logger.Error("failed to observe list store", "error", err)
		}
		return
	}

	c.mu.Lock()
	if c.epoch == epoch {
		c.unobserve = unobserve
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	// Another transition won the race; this observation is already stale.
	unobserve()
}

// deliver applies an emission if its epoch is still current.
func (c *Coordinator) deliver(epoch uint64, lists []domain.CardList) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.snapshot = lists
	fns := make([]Consumer, 0, len(c.consumers))
	for _, fn := range c.consumers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(lists)
	}
}

// Subscribe registers a consumer. It is invoked synchronously with the
// current snapshot before Subscribe returns, then on every subsequent change
// until the returned function is called.
func (c *Coordinator) Subscribe(fn Consumer) (func(), error) {
	handle, err := id.Generate("obs")
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.consumers[handle] = fn
	snapshot := c.snapshot
	c.mu.Unlock()

	fn(snapshot)

	return func() {
		c.mu.Lock()
		delete(c.consumers, handle)
		c.mu.Unlock()
	}, nil
}

// Snapshot returns the current list view.
func (c *Coordinator) Snapshot() []domain.CardList {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Find returns the list with the given id from the current view.
func (c *Coordinator) Find(listID string) (domain.CardList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.snapshot {
		if l.ID == listID {
			return l.Clone(), true
		}
	}
	return domain.CardList{}, false
}

// ActiveStore returns the store serving the current identity.
func (c *Coordinator) ActiveStore() liststore.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Identity returns the identity currently in effect.
func (c *Coordinator) Identity() domain.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Close tears down the active observation and closes the active store if it
// is not the shared local one.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	c.epoch++
	unobserve := c.unobserve
	c.unobserve = nil
	active := c.active
	c.active = nil
	c.mu.Unlock()

	if unobserve != nil {
		unobserve()
	}
	if active != nil && active != c.local {
		return active.Close()
	}
	return nil
}
