package liststore

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/errors"
)

// syncServer fakes the document sync service: it records write requests and
// serves a snapshot stream fed through a channel.
type syncServer struct {
	t *testing.T

	mu       sync.Mutex
	requests []recordedRequest

	snapshots chan []domain.CardList
	server    *httptest.Server
}

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

func newSyncServer(t *testing.T) *syncServer {
	t.Helper()

	s := &syncServer{t: t, snapshots: make(chan []domain.CardList, 4)}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

func (s *syncServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/v1/cardtrack/owners/u1/lists/stream" {
		s.handleStream(w, r)
		return
	}

	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.requests = append(s.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	s.mu.Unlock()

	switch {
	case r.Method == http.MethodPut && r.URL.Path == "/v1/cardtrack/owners/u1/lists/taken":
		w.WriteHeader(http.StatusConflict)
	case r.Method == http.MethodPatch && r.URL.Path == "/v1/cardtrack/owners/u1/lists/missing":
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodDelete && r.URL.Path == "/v1/cardtrack/owners/u1/lists/missing":
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodGet && r.URL.Path == "/v1/cardtrack/owners/u1/profile/info":
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"recovery_email":"backup@example.com","updated_at":"2026-09-01T10:00:00Z"}`)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (s *syncServer) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	_ = rc.Flush()

	for {
		select {
		case lists := <-s.snapshots:
			data, err := json.Marshal(lists)
			require.NoError(s.t, err)
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
			_ = rc.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func (s *syncServer) lastRequest() recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(s.t, s.requests)
	return s.requests[len(s.requests)-1]
}

func newTestRemote(t *testing.T, s *syncServer) *RemoteStore {
	t.Helper()

	store := NewRemote(RemoteConfig{
		BaseURL:   s.server.URL,
		Namespace: "cardtrack",
		SubjectID: "u1",
		Token:     "test-token",
	})
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRemoteStore_Create(t *testing.T) {
	server := newSyncServer(t)
	store := newTestRemote(t, server)

	list := testList("1700000000001", "Dragons")
	require.NoError(t, store.Create(context.Background(), list))

	req := server.lastRequest()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/v1/cardtrack/owners/u1/lists/1700000000001", req.Path)
	assert.Equal(t, "Bearer test-token", req.Auth)

	var sent domain.CardList
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, "Dragons", sent.Name)
	assert.Equal(t, "dragon", sent.Query)
}

func TestRemoteStore_Create_Conflict(t *testing.T) {
	server := newSyncServer(t)
	store := newTestRemote(t, server)

	err := store.Create(context.Background(), testList("taken", "Dragons"))
	assert.ErrorIs(t, err, errors.ErrDuplicateID)
}

func TestRemoteStore_Update_SendsOnlyPatchedFields(t *testing.T) {
	server := newSyncServer(t)
	store := newTestRemote(t, server)

	patch := domain.AcquiredPatch([]string{"abc123"})
	require.NoError(t, store.Update(context.Background(), "1700000000001", patch))

	req := server.lastRequest()
	assert.Equal(t, http.MethodPatch, req.Method)

	// Merge contract: absent fields must not appear in the body at all, so
	// the server cannot clobber them with zero values.
	var raw map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &raw))
	assert.Contains(t, raw, "acquired_ids")
	assert.NotContains(t, raw, "name")
	assert.NotContains(t, raw, "query")
	assert.NotContains(t, raw, "created_at")
}

func TestRemoteStore_Update_NotFound(t *testing.T) {
	server := newSyncServer(t)
	store := newTestRemote(t, server)

	err := store.Update(context.Background(), "missing", domain.AcquiredPatch(nil))
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestRemoteStore_Delete_NotFound(t *testing.T) {
	server := newSyncServer(t)
	store := newTestRemote(t, server)

	err := store.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestRemoteStore_Observe_ReceivesSortedSnapshots(t *testing.T) {
	server := newSyncServer(t)
	store := newTestRemote(t, server)

	var mu sync.Mutex
	var latest []domain.CardList
	unsubscribe, err := store.Observe(func(lists []domain.CardList) {
		mu.Lock()
		latest = lists
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsubscribe()

	server.snapshots <- []domain.CardList{
		{ID: "1700000000001", Name: "older"},
		{ID: "1700000000002", Name: "newer"},
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(latest) == 2
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "newer", latest[0].Name)
	assert.Equal(t, "older", latest[1].Name)
}

func TestRemoteStore_Observe_ImmediateEmission(t *testing.T) {
	server := newSyncServer(t)
	store := newTestRemote(t, server)

	called := false
	unsubscribe, err := store.Observe(func(lists []domain.CardList) {
		called = true
		assert.Empty(t, lists)
	})
	require.NoError(t, err)
	defer unsubscribe()

	assert.True(t, called)
}

func TestRemoteStore_Profile(t *testing.T) {
	server := newSyncServer(t)
	store := newTestRemote(t, server)
	ctx := context.Background()

	profile, err := store.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "backup@example.com", profile.RecoveryEmail)

	profile.RecoveryEmail = "new@example.com"
	profile.UpdatedAt = time.Now()
	require.NoError(t, store.SaveProfile(ctx, profile))

	req := server.lastRequest()
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/v1/cardtrack/owners/u1/profile/info", req.Path)
}
