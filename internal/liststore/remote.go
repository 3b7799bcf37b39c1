package liststore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/errors"
	"github.com/cardtrackapp/cardtrack-server/internal/notify"
)

const (
	// Reconnect backoff bounds for the snapshot stream.
	streamBackoffMin = time.Second
	streamBackoffMax = 30 * time.Second
)

// RemoteConfig configures a RemoteStore.
type RemoteConfig struct {
	// BaseURL of the document sync service.
	BaseURL string
	// Namespace scopes all owner documents on the service.
	Namespace string
	// SubjectID is the authenticated owner; it scopes every read and write.
	SubjectID string
	// Token is the bearer token sent with every request.
	Token string

	HTTPClient *http.Client
	Logger     *slog.Logger
	Notifier   *notify.Notifier
}

// RemoteStore is a client of the per-owner remote document collection: one
// document per list, merge-semantics updates, and a server-push snapshot
// stream. Multi-writer conflicts resolve last-write-wins per field; that is
// the transport's contract, not something this client re-litigates.
type RemoteStore struct {
	baseURL   string
	namespace string
	subjectID string
	token     string

	httpClient *http.Client
	logger     *slog.Logger
	notifier   *notify.Notifier

	listeners *listenerSet

	mu       sync.Mutex
	snapshot []domain.CardList

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRemote creates a RemoteStore scoped to the config's subject and starts
// its snapshot stream. Stream failures are logged and reported through the
// notifier; they never invalidate registered listeners, and the stream
// reconnects with backoff.
func NewRemote(cfg RemoteConfig) *RemoteStore {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &RemoteStore{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		namespace:  cfg.Namespace,
		subjectID:  cfg.SubjectID,
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     cfg.Logger,
		notifier:   cfg.Notifier,
		listeners:  newListenerSet(),
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go s.runStream(ctx)
	return s
}

// SubjectID returns the owner this store is scoped to.
func (s *RemoteStore) SubjectID() string {
	return s.subjectID
}

func (s *RemoteStore) listURL(listID string) string {
	return fmt.Sprintf("%s/v1/%s/owners/%s/lists/%s", s.baseURL, s.namespace, s.subjectID, listID)
}

func (s *RemoteStore) streamURL() string {
	return fmt.Sprintf("%s/v1/%s/owners/%s/lists/stream", s.baseURL, s.namespace, s.subjectID)
}

func (s *RemoteStore) profileURL() string {
	return fmt.Sprintf("%s/v1/%s/owners/%s/profile/info", s.baseURL, s.namespace, s.subjectID)
}

// Create implements Store.
func (s *RemoteStore) Create(ctx context.Context, list *domain.CardList) error {
	return s.write(ctx, http.MethodPut, s.listURL(list.ID), list)
}

// Update implements Store. The PATCH body carries only the fields present in
// the patch; the service merges them, leaving absent fields untouched.
func (s *RemoteStore) Update(ctx context.Context, listID string, patch domain.ListPatch) error {
	return s.write(ctx, http.MethodPatch, s.listURL(listID), patch)
}

// Delete implements Store.
func (s *RemoteStore) Delete(ctx context.Context, listID string) error {
	return s.write(ctx, http.MethodDelete, s.listURL(listID), nil)
}

// write performs a mutating request and maps the response status to the
// store's error taxonomy.
func (s *RemoteStore) write(ctx context.Context, method, url string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "sync request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errors.NotFoundf("remote list not found")
	case resp.StatusCode == http.StatusConflict:
		return errors.DuplicateID("remote list already exists")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.Unauthorized("sync service rejected credentials")
	default:
		return errors.Internalf("sync service returned status %d", resp.StatusCode)
	}
}

// Observe implements Store. The immediate emission carries the latest
// server-delivered snapshot, which is empty until the stream first connects.
func (s *RemoteStore) Observe(fn func(lists []domain.CardList)) (func(), error) {
	unsubscribe, err := s.listeners.add(fn)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	snapshot := cloneSnapshot(s.snapshot)
	s.mu.Unlock()

	fn(snapshot)
	return unsubscribe, nil
}

// Close implements Store: it cancels the snapshot stream and waits for it to
// stop. Pending write requests are not interrupted.
func (s *RemoteStore) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// runStream keeps the server-push subscription alive until Close.
func (s *RemoteStore) runStream(ctx context.Context) {
	defer close(s.done)

	backoff := streamBackoffMin
	for {
		err := s.consumeStream(ctx)
		if ctx.Err() != nil {
			return
		}

		if s.logger != nil {
			s.logger.Warn("list snapshot stream interrupted",
				slog.String("subject_id", s.subjectID),
				slog.String("error", err.Error()))
		}
		if s.notifier != nil {
			s.notifier.Publish(notify.LevelWarn, string(errors.CodeInternal), "cloud sync interrupted, retrying")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, streamBackoffMax)
	}
}

// consumeStream connects to the SSE endpoint and applies snapshot events
// until the connection drops or ctx is canceled.
func (s *RemoteStore) consumeStream(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.streamURL(), nil)
	if err != nil {
		return fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "text/event-stream")

	// The stream is long-lived; the client-wide timeout must not apply.
	streamClient := &http.Client{Transport: s.httpClient.Transport}

	resp, err := streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	if s.logger != nil {
		s.logger.Info("list snapshot stream connected", slog.String("subject_id", s.subjectID))
	}

	var event, data string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if event == "snapshot" && data != "" {
				s.applySnapshot(data)
			}
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data != "" {
				data += "\n"
			}
			data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case strings.HasPrefix(line, ":"):
			// Comment/heartbeat, ignore.
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return fmt.Errorf("stream closed by server")
}

// applySnapshot parses a snapshot event and re-emits it sorted.
func (s *RemoteStore) applySnapshot(data string) {
	var lists []domain.CardList
	if err := json.Unmarshal([]byte(data), &lists); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to parse list snapshot", slog.String("error", err.Error()))
		}
		return
	}

	domain.SortSnapshot(lists)

	s.mu.Lock()
	s.snapshot = lists
	s.mu.Unlock()

	s.listeners.emit(cloneSnapshot(lists))
}

// GetProfile fetches the owner's profile document. A missing document is not
// an error; it yields an empty profile.
func (s *RemoteStore) GetProfile(ctx context.Context) (domain.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.profileURL(), nil)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.Profile{}, errors.Wrap(err, errors.CodeInternal, "sync request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var profile domain.Profile
		if err := json.UnmarshalRead(resp.Body, &profile); err != nil {
			return domain.Profile{}, fmt.Errorf("parse profile: %w", err)
		}
		return profile, nil
	case http.StatusNotFound:
		return domain.Profile{}, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.Profile{}, errors.Unauthorized("sync service rejected credentials")
	default:
		return domain.Profile{}, errors.Internalf("sync service returned status %d", resp.StatusCode)
	}
}

// SaveProfile merge-writes the owner's profile document.
func (s *RemoteStore) SaveProfile(ctx context.Context, profile domain.Profile) error {
	return s.write(ctx, http.MethodPatch, s.profileURL(), profile)
}
