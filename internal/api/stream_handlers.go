package api

import (
	"encoding/json/v2"
	"fmt"
	"net/http"
	"time"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
)

// handleStream serves the live update stream over SSE. Every change to the
// active session's lists arrives as a `snapshot` event carrying the full
// current collection; storage and sync failures arrive as `notification`
// events on the side channel.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		s.logger.Error("failed to flush stream headers", "error", err)
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Snapshot emissions come from the coordinator on its own goroutines;
	// buffer them and drop to latest-wins if the client lags. Only the
	// newest snapshot matters.
	snapshots := make(chan []domain.CardList, 1)
	unsubscribe, err := s.coordinator.Subscribe(func(lists []domain.CardList) {
		for {
			select {
			case snapshots <- lists:
				return
			default:
				select {
				case <-snapshots:
				default:
				}
			}
		}
	})
	if err != nil {
		s.logger.Error("failed to subscribe stream client", "error", err)
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer unsubscribe()

	sub, err := s.notifier.Subscribe()
	if err != nil {
		s.logger.Error("failed to subscribe stream client to notifications", "error", err)
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer s.notifier.Unsubscribe(sub.ID)

	ctx := r.Context()
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case lists := <-snapshots:
			if lists == nil {
				lists = []domain.CardList{}
			}
			if err := s.sendEvent(w, rc, "snapshot", lists); err != nil {
				s.logger.Debug("stream client disconnected during send")
				return
			}

		case note, ok := <-sub.C:
			if !ok {
				return
			}
			if err := s.sendEvent(w, rc, "notification", note); err != nil {
				s.logger.Debug("stream client disconnected during notification")
				return
			}

		case <-heartbeat.C:
			if err := s.sendEvent(w, rc, "heartbeat", map[string]string{"at": time.Now().Format(time.RFC3339)}); err != nil {
				s.logger.Debug("stream client disconnected during heartbeat")
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// sendEvent writes one SSE event and flushes it.
func (s *Server) sendEvent(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, jsonData); err != nil {
		return err
	}
	return rc.Flush()
}
