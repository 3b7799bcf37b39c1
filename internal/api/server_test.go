package api

import (
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtrackapp/cardtrack-server/internal/auth"
	"github.com/cardtrackapp/cardtrack-server/internal/catalog"
	"github.com/cardtrackapp/cardtrack-server/internal/liststore"
	"github.com/cardtrackapp/cardtrack-server/internal/notify"
	"github.com/cardtrackapp/cardtrack-server/internal/service"
	"github.com/cardtrackapp/cardtrack-server/internal/session"
	"github.com/cardtrackapp/cardtrack-server/internal/tracker"
)

const catalogPayload = `{
	"total_cards": 2,
	"data": [
		{"id": "c1", "name": "Shivan Dragon", "type_line": "Creature - Dragon",
		 "image_uris": {"small": "s1", "normal": "n1"}, "prices": {"usd": "24.99"}},
		{"id": "c2", "name": "Dragonlord Atarka", "type_line": "Legendary Creature - Elder Dragon",
		 "image_uris": {"small": "s2", "normal": "n2"}, "prices": {"usd": "9.99"}}
	]
}`

// newTestServer wires a complete server against a local store and a catalog
// fake, mirroring the production wiring.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	catalogServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/catalog/") {
			fmt.Fprint(w, `{"data": ["Dragon", "Elf"]}`)
			return
		}
		fmt.Fprint(w, catalogPayload)
	}))
	t.Cleanup(catalogServer.Close)

	local, err := liststore.OpenLocal(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })

	coordinator := session.NewCoordinator(local, func(string, string) liststore.Store { return local }, logger)
	t.Cleanup(func() { _ = coordinator.Close() })

	accounts, err := auth.OpenAccountStore(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = accounts.Close() })

	keyHex, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(keyHex, time.Hour)
	require.NoError(t, err)

	authService := auth.NewService(accounts, tokens, logger)
	_, err = authService.OnIdentityChange(coordinator.SetIdentity)
	require.NoError(t, err)

	notifier := notify.New(logger)
	acquisitions := tracker.New(notifier, logger)
	client := catalog.NewClient(catalogServer.URL, 5*time.Second, logger)

	lists := service.NewListService(coordinator, client, acquisitions, logger)
	profiles := service.NewProfileService(coordinator, logger)

	return NewServer(lists, profiles, authService, coordinator, local, notifier, logger)
}

func doJSON(t *testing.T, server *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, false, data["persistence_disabled"])
}

func TestSearch(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/cards/search",
		`{"term": "dragon", "type_filter": "Creature", "colors": ["R", "G"]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total"])
}

func TestSearch_EmptyFiltersRejected(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/cards/search", `{}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "EMPTY_QUERY", envelope["code"])
}

func TestSearch_InvalidColorRejected(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/cards/search",
		`{"term": "dragon", "colors": ["X"]}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "VALIDATION", envelope["code"])
}

func TestListLifecycle(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/lists",
		`{"name": "Dragon wants", "term": "dragon", "type_filter": "Creature"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeEnvelope(t, rec)["data"].(map[string]any)
	listID := created["id"].(string)
	assert.Equal(t, "Dragon wants", created["name"])
	assert.Equal(t, "dragon t:Creature", created["query"])

	rec = doJSON(t, server, http.MethodGet, "/api/v1/lists", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lists := decodeEnvelope(t, rec)["data"].(map[string]any)["lists"].([]any)
	require.Len(t, lists, 1)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/lists/"+listID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodDelete, "/api/v1/lists/"+listID, "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/lists/"+listID, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, rec)["code"])
}

func TestDeleteMissingListIsNoContent(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodDelete, "/api/v1/lists/never-existed", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListCardsAndToggle(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/lists",
		`{"name": "Dragon wants", "term": "dragon"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	listID := decodeEnvelope(t, rec)["data"].(map[string]any)["id"].(string)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/lists/"+listID+"/cards/c1/toggle", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decodeEnvelope(t, rec)["data"].(map[string]any)
	acquired := toggled["acquired_ids"].([]any)
	require.Len(t, acquired, 1)
	assert.Equal(t, "c1", acquired[0])

	// The background commit converges before the cards view reads progress.
	assert.Eventually(t, func() bool {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/lists/"+listID+"/cards", "", nil)
		if rec.Code != http.StatusOK {
			return false
		}
		data := decodeEnvelope(t, rec)["data"].(map[string]any)
		return data["progress"] == float64(50)
	}, 2*time.Second, 20*time.Millisecond)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/lists/"+listID+"/cards?view=acquired", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	cards := data["cards"].([]any)
	require.Len(t, cards, 1)
	assert.Equal(t, "acquired", data["view"])
	assert.Equal(t, float64(2), data["total"])
}

func TestRegisterLoginSession(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/register",
		`{"email": "alice@example.com", "password": "longenoughpassword"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])

	rec = doJSON(t, server, http.MethodGet, "/api/v1/session", "", nil)
	sess := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, true, sess["authenticated"])

	rec = doJSON(t, server, http.MethodPost, "/api/v1/auth/logout", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/session", "", nil)
	sess = decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, false, sess["authenticated"])
}

func TestLogin_BadCredentials(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/login",
		`{"email": "nobody@example.com", "password": "whatever"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeEnvelope(t, rec)["code"])
}

func TestRegister_ValidationDetails(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/register",
		`{"email": "not-an-email", "password": "short"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "VALIDATION", envelope["code"])
	details := envelope["details"].(map[string]any)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestProfile_RequiresBearerToken(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/profile", "", map[string]string{
		"Authorization": "Bearer garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
