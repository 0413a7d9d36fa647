package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/orca/pkg/domain"
)

// keepAlive is the interval of SSE comment pings that hold proxies open.
const keepAlive = 25 * time.Second

// StreamManager fans state diffs out to the SSE subscribers of a session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty fan-out. A nil logger discards.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
		})
	}
}

// Subscribers returns the number of listeners of a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast delivers msg to every listener. Slow listeners lose the message.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// watchFilter keeps diffs touching at least one watched part.
func watchFilter(param string) func(domain.StateDiff) bool {
	if param == "" {
		return nil
	}
	watched := make(map[string]bool)
	for _, part := range strings.Split(param, ",") {
		watched[strings.TrimSpace(part)] = true
	}
	return func(d domain.StateDiff) bool {
		return (watched["screen"] && d.Screen != nil) ||
			(watched["status"] && d.Status != nil) ||
			(watched["fields"] && len(d.Fields) > 0) ||
			(watched["errors"] && d.Errors != nil) ||
			(watched["notice"] && d.Notice != nil) ||
			(watched["outcome"] && d.Outcome != nil) ||
			(watched["history"] && d.History != nil)
	}
}

func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	sessionID := sessionFrom(r.Context())
	state, err := s.sessions.Load(r.Context(), sessionID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	ch, unsubscribe := s.streams.Subscribe(sessionID)
	defer unsubscribe()
	keep := watchFilter(r.URL.Query().Get("watch"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// The first event is the full state so late subscribers start in sync.
	if initial, err := json.Marshal(domain.Diff(nil, state.Redacted())); err == nil {
		fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", initial)
	}
	flusher.Flush()
	s.logger.Debug("SSE: subscribed", "session_id", sessionID)

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "session_id", sessionID)
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if keep != nil {
				var diff domain.StateDiff
				if err := json.Unmarshal([]byte(msg), &diff); err == nil && !keep(diff) {
					continue
				}
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
