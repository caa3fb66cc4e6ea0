package websocket

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nursabrinaas08/data-cleaning/internal/config"
	"github.com/nursabrinaas08/data-cleaning/internal/infrastructure"
	appmiddleware "github.com/nursabrinaas08/data-cleaning/internal/middleware"
)

// Handler upgrades HTTP requests to live sessions
type Handler struct {
	hub      *Hub
	service  SessionService
	cfg      SessionConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates the live session endpoint handler
func NewHandler(hub *Hub, service SessionService, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = infrastructure.WithComponent(logger, "websocket.handler")

	h := &Handler{
		hub:     hub,
		service: service,
		cfg:     SessionConfigFrom(cfg),
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     originChecker(cfg.Security.AllowedOrigins, cfg.Logging.Development, logger),
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			logger.WarnContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, http.StatusText(status), status)
		},
	}
	return h
}

// ServeHTTP handles GET /api/v1/session/ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	traceID := appmiddleware.GetRequestID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already replied
		return
	}

	session := NewSession(h.hub, NewConnection(conn), h.service, h.cfg, traceID, h.logger)
	if !h.hub.Register(session) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	h.logger.InfoContext(r.Context(), "WebSocket session connected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("session_id", session.ID()),
		slog.String("request_id", traceID))

	session.Greet()
	go session.WritePump()
	go session.ReadPump()
}

// originChecker allows requests without an Origin header, requests from the
// configured origins and, in development, any origin
func originChecker(allowed []string, development bool, logger *slog.Logger) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || development {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
			slog.String("origin", origin),
			slog.Any("allowed_origins", allowed))
		return false
	}
}
