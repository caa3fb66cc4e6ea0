// Package events contains the message contracts of the live cleaning session
// spoken over WebSocket.
package events

import (
	"encoding/json"
	"time"

	api "github.com/nursabrinaas08/data-cleaning/pkg/contracts/api/v1"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client to server
	MessageTypeUpload    MessageType = "upload"
	MessageTypeOptions   MessageType = "options"
	MessageTypeExport    MessageType = "export"
	MessageTypeHeartbeat MessageType = "heartbeat"

	// Server to client
	MessageTypeConnected      MessageType = "connected"
	MessageTypeDatasetLoaded  MessageType = "dataset:loaded"
	MessageTypeDatasetCleaned MessageType = "dataset:cleaned"
	MessageTypeDatasetExport  MessageType = "dataset:export"
	MessageTypeHeartbeatAck   MessageType = "heartbeat:ack"
	MessageTypeError          MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	ReplyTo   string      `json:"reply_to,omitempty"` // ID of the client message being answered
}

// WebSocketMessage is a server message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// ClientMessage is a message sent by the browser. Data is decoded once the
// type is known.
type ClientMessage struct {
	ID   string          `json:"id,omitempty"`
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UploadPayload carries a whole file. Content is base64 in JSON.
type UploadPayload struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// OptionsPayload selects the cleaning applied to the session's dataset
type OptionsPayload = api.CleaningOptionsRequest

// ConnectedPayload greets a new session
type ConnectedPayload struct {
	SessionID       string   `json:"session_id"`
	MaxMessageBytes int64    `json:"max_message_bytes"`
	Strategies      []string `json:"strategies"`
}

// ErrorPayload reports a failed client message. The session stays usable
// unless Fatal is set.
type ErrorPayload struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Fatal   bool        `json:"fatal"`
}

// HeartbeatPayload answers a client heartbeat
type HeartbeatPayload struct {
	ServerTime time.Time `json:"server_time"`
	HasDataset bool      `json:"has_dataset"`
}
