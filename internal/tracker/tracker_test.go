package tracker

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/errors"
	"github.com/cardtrackapp/cardtrack-server/internal/notify"
)

func TestToggle_AddsAndRemoves(t *testing.T) {
	list := domain.CardList{ID: "1", AcquiredIDs: []string{"a"}}

	once := Toggle(list, "b")
	assert.ElementsMatch(t, []string{"a", "b"}, once.AcquiredIDs)

	twice := Toggle(once, "b")
	assert.ElementsMatch(t, []string{"a"}, twice.AcquiredIDs)
}

func TestToggle_DoesNotMutateInput(t *testing.T) {
	list := domain.CardList{ID: "1", AcquiredIDs: []string{"a", "b"}}

	_ = Toggle(list, "a")
	assert.Equal(t, []string{"a", "b"}, list.AcquiredIDs)
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name     string
		acquired int
		total    int
		want     int
	}{
		{"empty list", 0, 0, 0},
		{"none acquired", 0, 10, 0},
		{"all acquired", 10, 10, 100},
		{"rounds down", 1, 3, 33},
		{"rounds up", 2, 3, 67},
		{"half", 5, 10, 50},
		{"zero total clamps", 3, 0, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Progress(tt.acquired, tt.total))
		})
	}
}

// fakeStore records updates and can be told to fail.
type fakeStore struct {
	mu      sync.Mutex
	updates []domain.ListPatch
	fail    bool
}

func (f *fakeStore) Create(context.Context, *domain.CardList) error { return nil }

func (f *fakeStore) Update(_ context.Context, _ string, patch domain.ListPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.Internal("boom")
	}
	f.updates = append(f.updates, patch)
	return nil
}

func (f *fakeStore) Delete(context.Context, string) error { return nil }

func (f *fakeStore) Observe(func([]domain.CardList)) (func(), error) {
	return func() {}, nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func newTestTracker(t *testing.T) (*Tracker, *notify.Notifier) {
	t.Helper()
	notifier := notify.New(slog.New(slog.DiscardHandler))
	return New(notifier, slog.New(slog.DiscardHandler)), notifier
}

func TestToggleAndCommit_PersistsToggledSet(t *testing.T) {
	tracker, _ := newTestTracker(t)
	store := &fakeStore{}
	list := domain.CardList{ID: "1700000000001"}

	toggled := tracker.ToggleAndCommit(context.Background(), store, list, "card-a")
	assert.Equal(t, []string{"card-a"}, toggled.AcquiredIDs)

	assert.Eventually(t, func() bool {
		return store.updateCount() == 1
	}, time.Second, 5*time.Millisecond)

	back := tracker.ToggleAndCommit(context.Background(), store, toggled, "card-a")
	assert.Empty(t, back.AcquiredIDs)

	assert.Eventually(t, func() bool {
		return store.updateCount() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestToggleAndCommit_FailureKeepsOptimisticValueAndNotifies(t *testing.T) {
	tracker, notifier := newTestTracker(t)
	store := &fakeStore{fail: true}

	sub, err := notifier.Subscribe()
	require.NoError(t, err)
	defer notifier.Unsubscribe(sub.ID)

	toggled := tracker.ToggleAndCommit(context.Background(), store, domain.CardList{ID: "1"}, "card-a")

	// The optimistic value stands even though persistence fails.
	assert.Equal(t, []string{"card-a"}, toggled.AcquiredIDs)

	select {
	case note := <-sub.C:
		assert.Equal(t, notify.LevelError, note.Level)
	case <-time.After(time.Second):
		t.Fatal("expected a failure notification")
	}
}

func TestToggleAndCommit_SurvivesCanceledRequestContext(t *testing.T) {
	tracker, _ := newTestTracker(t)
	store := &fakeStore{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tracker.ToggleAndCommit(ctx, store, domain.CardList{ID: "1"}, "card-a")

	assert.Eventually(t, func() bool {
		return store.updateCount() == 1
	}, time.Second, 5*time.Millisecond)
}
