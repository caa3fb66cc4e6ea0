package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nursabrinaas08/data-cleaning/internal/infrastructure"
)

// Hub maintains the set of open live sessions
type Hub struct {
	// Registered sessions
	sessions map[*Session]bool

	// Register requests from the sessions
	register chan *Session

	// Unregister requests from sessions
	unregister chan *Session

	mu sync.RWMutex

	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	totalSessions int64

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance. metrics may be nil.
func NewHub(metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = infrastructure.WithComponent(logger, "websocket.hub")

	return &Hub{
		sessions:   make(map[*Session]bool),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		metrics:    metrics,
		logger:     logger,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub loop
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run runs the hub's main loop until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case session := <-h.register:
			h.mu.Lock()
			h.sessions[session] = true
			count := len(h.sessions)
			h.totalSessions++
			h.mu.Unlock()

			ctx := session.context()
			infrastructure.RecordSessionChange(ctx, h.metrics, 1)
			h.logger.InfoContext(ctx, "Session registered",
				slog.Int("total_sessions", count),
				slog.String("session_id", session.id),
				slog.String("remote_addr", session.remoteAddr))

		case session := <-h.unregister:
			h.mu.Lock()
			_, ok := h.sessions[session]
			if ok {
				delete(h.sessions, session)
			}
			count := len(h.sessions)
			h.mu.Unlock()

			if !ok {
				continue
			}
			session.close()

			ctx := session.context()
			infrastructure.RecordSessionChange(ctx, h.metrics, -1)
			h.logger.InfoContext(ctx, "Session unregistered",
				slog.Int("total_sessions", count),
				slog.String("session_id", session.id),
				slog.Duration("session_duration", time.Since(session.connectedAt)))
		}
	}
}

// Register adds a session to the hub. It returns false when the hub is
// stopped.
func (h *Hub) Register(session *Session) bool {
	select {
	case h.register <- session:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a session from the hub
func (h *Hub) Unregister(session *Session) {
	select {
	case h.unregister <- session:
	case <-h.quit:
	}
}

// ClientCount returns the number of open sessions
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Stop closes every session and stops the hub loop
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)

	sessions := make([]*Session, 0, len(h.sessions))
	for session := range h.sessions {
		sessions = append(sessions, session)
		delete(h.sessions, session)
	}
	h.mu.Unlock()

	for _, session := range sessions {
		session.close()
		infrastructure.RecordSessionChange(context.Background(), h.metrics, -1)
	}
	h.logger.Info("Hub stopped", slog.Int("closed_sessions", len(sessions)))
}

// GetHubMetrics returns current hub metrics
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_sessions": len(h.sessions),
		"total_sessions":  h.totalSessions,
	}
}
