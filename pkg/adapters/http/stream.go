package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/humdrum/pkg/domain"
)

// StreamManager fans model diffs out to SSE subscribers of a session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *domain.ModelDiff]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan *domain.ModelDiff]struct{}),
	}
}

// Subscribe registers a channel for sessionID. The returned func removes and
// closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan *domain.ModelDiff, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan *domain.ModelDiff, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan *domain.ModelDiff]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Publish sends diff to the subscribers of sessionID. Slow subscribers miss
// messages rather than block the dispatch. It matches session.DiffObserver.
func (sm *StreamManager) Publish(_ context.Context, sessionID string, diff *domain.ModelDiff) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- diff:
		default:
		}
	}
}

// Subscribers returns the number of open subscriptions for sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// SubscribeEvents handles GET /events?session_id=...&keys=a,b.
// With keys set, only diffs touching one of them are sent.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = sessionFromRequest(r)
	}
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	var watch []string
	if keys := r.URL.Query().Get("keys"); keys != "" {
		for _, k := range strings.Split(keys, ",") {
			if k = strings.TrimSpace(k); k != "" {
				watch = append(watch, k)
			}
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case diff, ok := <-ch:
			if !ok {
				return
			}
			if !touches(diff, watch) {
				continue
			}
			data, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("SSE: encode failed", "session_id", sessionID, "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func touches(diff *domain.ModelDiff, watch []string) bool {
	if len(watch) == 0 {
		return true
	}
	for _, k := range watch {
		if _, ok := diff.Data[k]; ok {
			return true
		}
	}
	return false
}
