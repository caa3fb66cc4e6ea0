package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MockConnection is an in-memory Connection. Reads replay the queued frames
// and then report a normal close.
type MockConnection struct {
	mu sync.Mutex

	written []mockFrame
	queued  []mockFrame
	closed  bool

	ReadLimit int64
}

type mockFrame struct {
	Type int
	Data []byte
	Err  error
}

// NewMockConnection creates an open connection with nothing queued
func NewMockConnection() *MockConnection {
	return &MockConnection{}
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.New("connection closed")
	}
	m.written = append(m.written, mockFrame{Type: messageType, Data: data})
	return nil
}

func (m *MockConnection) ReadMessage() (messageType int, p []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, nil, errors.New("connection closed")
	}
	if len(m.queued) == 0 {
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
	msg := m.queued[0]
	m.queued = m.queued[1:]
	return msg.Type, msg.Data, msg.Err
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *MockConnection) SetWriteDeadline(time.Time) error { return nil }
func (m *MockConnection) SetPongHandler(func(string) error) {}
func (m *MockConnection) RemoteAddr() string                { return "127.0.0.1:8080" }

func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadLimit = limit
}

// AddReadMessage queues a frame for ReadMessage
func (m *MockConnection) AddReadMessage(messageType int, data []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, mockFrame{Type: messageType, Data: data, Err: err})
}

// GetWrittenMessages returns every frame written so far
func (m *MockConnection) GetWrittenMessages() []mockFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mockFrame(nil), m.written...)
}

// TextMessages returns the payloads of the text frames written so far
func (m *MockConnection) TextMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out [][]byte
	for _, msg := range m.written {
		if msg.Type == websocket.TextMessage {
			out = append(out, msg.Data)
		}
	}
	return out
}

// IsClosed reports whether Close was called
func (m *MockConnection) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
