package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nursabrinaas08/data-cleaning/internal/config"
	"github.com/nursabrinaas08/data-cleaning/internal/dataprocessing"
	apierrors "github.com/nursabrinaas08/data-cleaning/internal/errors"
	"github.com/nursabrinaas08/data-cleaning/internal/infrastructure"
	appmiddleware "github.com/nursabrinaas08/data-cleaning/internal/middleware"
	"github.com/nursabrinaas08/data-cleaning/internal/services"
	api "github.com/nursabrinaas08/data-cleaning/pkg/contracts/api/v1"
	"github.com/nursabrinaas08/data-cleaning/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Outbound messages buffered per session
	sendBuffer = 16

	defaultPongWait = 60 * time.Second

	// Error codes that only exist on the live session
	CodeNoDataset      = "NO_DATASET"
	CodeInvalidMessage = "INVALID_MESSAGE"
)

// SessionConfig holds the per-connection limits
type SessionConfig struct {
	MaxMessageBytes  int64
	PingPeriod       time.Duration
	PongWait         time.Duration
	OperationTimeout time.Duration
}

// SessionConfigFrom derives session limits from the application config
func SessionConfigFrom(cfg *config.Config) SessionConfig {
	return SessionConfig{
		MaxMessageBytes:  cfg.WebSocket.MaxMessageBytes,
		PingPeriod:       cfg.WebSocket.PingPeriod,
		PongWait:         cfg.WebSocket.PongWait,
		OperationTimeout: cfg.Server.OperationTimeout,
	}
}

// Session is one live cleaning session. It holds the uploaded dataset for
// the lifetime of the connection and re-runs the cleaning on every options
// message. Messages are handled in the order they arrive.
type Session struct {
	hub     *Hub
	conn    Connection
	service SessionService
	cfg     SessionConfig

	// Buffered channel of outbound messages
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once

	// Session metadata
	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	// Dataset state, only touched by the read pump
	filename string
	dataset  *dataprocessing.Dataset
	cleaned  *dataprocessing.Dataset

	validate *validator.Validate
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger

	messagesReceived int64
	messagesSent     int64
}

// NewSession creates a session on conn. traceID may be empty.
func NewSession(hub *Hub, conn Connection, service SessionService, cfg SessionConfig, traceID string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	if cfg.PongWait <= 0 {
		cfg.PongWait = defaultPongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = (cfg.PongWait * 9) / 10
	}

	id := uuid.New().String()
	if traceID == "" {
		traceID = id
	}
	logger = logger.With(
		slog.String("component", "websocket.session"),
		slog.String("session_id", id),
		slog.String("trace_id", traceID),
	)

	return &Session{
		hub:         hub,
		conn:        conn,
		service:     service,
		cfg:         cfg,
		send:        make(chan []byte, sendBuffer),
		done:        make(chan struct{}),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		validate:    appmiddleware.NewValidator(),
		metrics:     hub.metrics,
		logger:      logger,
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

func (s *Session) context() context.Context {
	return infrastructure.WithTraceID(context.Background(), s.traceID)
}

// close stops the write pump. It is safe to call more than once.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Greet queues the connected message
func (s *Session) Greet() {
	strategies := s.service.Strategies()
	names := make([]string, len(strategies))
	for i, st := range strategies {
		names[i] = st.Name
	}

	s.reply(events.MessageTypeConnected, "", events.ConnectedPayload{
		SessionID:       s.id,
		MaxMessageBytes: s.cfg.MaxMessageBytes,
		Strategies:      names,
	})
}

// ReadPump reads client messages and handles them one at a time
func (s *Session) ReadPump() {
	defer func() {
		s.logger.Info("WebSocket session disconnected (readPump)",
			slog.Duration("session_duration", time.Since(s.connectedAt)),
			slog.Int64("messages_received", s.messagesReceived))
		s.hub.Unregister(s)
		s.close()
		s.conn.Close()
	}()

	if s.cfg.MaxMessageBytes > 0 {
		s.conn.SetReadLimit(s.cfg.MaxMessageBytes)
	}
	s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				s.logger.Warn("Session message exceeds limit",
					slog.Int64("limit_bytes", s.cfg.MaxMessageBytes))
			case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived):
				s.logger.Error("Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}

		s.messagesReceived++
		s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
		s.handleMessage(message)
	}
}

// WritePump writes queued messages and pings to the connection
func (s *Session) WritePump() {
	ticker := time.NewTicker(s.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
		s.logger.Info("WebSocket write pump stopped",
			slog.Int64("messages_sent", s.messagesSent))
	}()

	for {
		select {
		case message := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Error("Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			s.messagesSent++

		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Debug("Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

func (s *Session) handleMessage(raw []byte) {
	var msg events.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.replyError("", CodeInvalidMessage, "Message is not valid JSON", nil)
		return
	}

	ctx := s.context()
	infrastructure.RecordSessionMessage(ctx, s.metrics, string(msg.Type))
	if s.cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.OperationTimeout)
		defer cancel()
	}

	s.logger.DebugContext(ctx, "Session message received",
		slog.String("type", string(msg.Type)),
		slog.String("message_id", msg.ID),
		slog.Int("bytes", len(raw)))

	switch msg.Type {
	case events.MessageTypeUpload:
		s.handleUpload(ctx, msg)
	case events.MessageTypeOptions:
		s.handleOptions(ctx, msg)
	case events.MessageTypeExport:
		s.handleExport(ctx, msg)
	case events.MessageTypeHeartbeat:
		s.reply(events.MessageTypeHeartbeatAck, msg.ID, events.HeartbeatPayload{
			ServerTime: time.Now().UTC(),
			HasDataset: s.dataset != nil,
		})
	default:
		s.replyError(msg.ID, CodeInvalidMessage, "Unknown message type", map[string]string{"type": string(msg.Type)})
	}
}

// handleUpload replaces the session dataset. A failed upload leaves the
// previous dataset in place.
func (s *Session) handleUpload(ctx context.Context, msg events.ClientMessage) {
	var payload events.UploadPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		s.replyError(msg.ID, CodeInvalidMessage, "Upload payload is invalid", nil)
		return
	}

	ds, err := s.service.Load(ctx, services.Upload{Filename: payload.Filename, Data: payload.Content})
	if err != nil {
		s.replyServiceError(msg.ID, err)
		return
	}

	s.filename = payload.Filename
	s.dataset = ds
	s.cleaned = ds

	s.logger.InfoContext(ctx, "Session dataset loaded",
		slog.String("filename", payload.Filename),
		slog.Int("rows", ds.NumRows()))
	s.reply(events.MessageTypeDatasetLoaded, msg.ID, s.service.InspectDataset(ctx, payload.Filename, ds))
}

// handleOptions cleans the original upload with new options. Options always
// apply to the uploaded data, never to a previous cleaning result.
func (s *Session) handleOptions(ctx context.Context, msg events.ClientMessage) {
	if s.dataset == nil {
		s.replyError(msg.ID, CodeNoDataset, "Upload a file before choosing options", nil)
		return
	}

	var req events.OptionsPayload
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			s.replyError(msg.ID, CodeInvalidMessage, "Options payload is invalid", nil)
			return
		}
	}
	if err := appmiddleware.ValidateStruct(s.validate, req); err != nil {
		s.replyServiceError(msg.ID, err)
		return
	}

	resp, cleaned, err := s.service.CleanDataset(ctx, s.filename, s.dataset, req)
	if err != nil {
		s.replyServiceError(msg.ID, err)
		return
	}
	s.cleaned = cleaned
	s.reply(events.MessageTypeDatasetCleaned, msg.ID, resp)
}

func (s *Session) handleExport(ctx context.Context, msg events.ClientMessage) {
	if s.cleaned == nil {
		s.replyError(msg.ID, CodeNoDataset, "Upload a file before exporting", nil)
		return
	}

	exp, err := s.service.ExportDataset(ctx, s.filename, s.cleaned)
	if err != nil {
		s.replyServiceError(msg.ID, err)
		return
	}
	s.reply(events.MessageTypeDatasetExport, msg.ID, api.ExportResponse{
		Filename:    exp.Filename,
		ContentType: exp.ContentType,
		Format:      exp.Format,
		Size:        len(exp.Data),
		Content:     exp.Data,
	})
}

func (s *Session) reply(msgType events.MessageType, replyTo string, data interface{}) {
	msg := events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.New().String(),
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   s.traceID,
			ReplyTo:   replyTo,
		},
		Data: data,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Failed to encode session message",
			slog.String("type", string(msgType)),
			slog.String("error", err.Error()))
		return
	}
	s.enqueue(payload)
}

func (s *Session) replyError(replyTo, code, message string, details interface{}) {
	s.reply(events.MessageTypeError, replyTo, events.ErrorPayload{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// replyServiceError reports err the way the HTTP API would
func (s *Session) replyServiceError(replyTo string, err error) {
	var apiErr *apierrors.APIError
	var appErr *apierrors.AppError

	switch {
	case errors.As(err, &apiErr):
		s.replyError(replyTo, apiErr.ErrorCode, apiErr.Message, apiErr.Details)
	case errors.Is(err, context.DeadlineExceeded):
		s.replyError(replyTo, apierrors.CodeInternal, "Operation timed out", nil)
	case errors.As(err, &appErr) && appErr.Type.StatusCode() < 500:
		message := appErr.Message
		if appErr.Cause != nil {
			message += ": " + appErr.Cause.Error()
		}
		s.replyError(replyTo, appErr.Type.Code(), message, nil)
	default:
		s.logger.Error("Session operation failed",
			slog.String("error", err.Error()))
		s.replyError(replyTo, apierrors.CodeInternal, "An unexpected error occurred", nil)
	}
}

// enqueue hands a message to the write pump. It waits at most writeWait for
// buffer space and drops the message once the session is closed.
func (s *Session) enqueue(message []byte) bool {
	timer := time.NewTimer(writeWait)
	defer timer.Stop()

	select {
	case s.send <- message:
		return true
	case <-s.done:
		return false
	case <-timer.C:
		s.logger.Warn("Dropping session message, send buffer full",
			slog.Int("bytes", len(message)))
		return false
	}
}
