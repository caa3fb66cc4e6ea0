package websocket

import (
	"context"
	"time"

	"github.com/nursabrinaas08/data-cleaning/internal/dataprocessing"
	"github.com/nursabrinaas08/data-cleaning/internal/exporter"
	"github.com/nursabrinaas08/data-cleaning/internal/services"
	api "github.com/nursabrinaas08/data-cleaning/pkg/contracts/api/v1"
)

// Connection defines the interface for WebSocket connections
// This allows for proper mocking in tests
type Connection interface {
	// WriteMessage writes a message with the given message type and payload
	WriteMessage(messageType int, data []byte) error

	// ReadMessage reads a message from the connection
	ReadMessage() (messageType int, p []byte, err error)

	Close() error

	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error

	// SetReadLimit sets the maximum size for a message read from the connection
	SetReadLimit(limit int64)

	SetPongHandler(h func(string) error)

	// RemoteAddr returns the remote network address
	RemoteAddr() string
}

// SessionService is the part of the cleaning service a live session drives.
// The session keeps the parsed dataset, so only the dataset variants are used.
type SessionService interface {
	Load(ctx context.Context, upload services.Upload) (*dataprocessing.Dataset, error)
	InspectDataset(ctx context.Context, filename string, ds *dataprocessing.Dataset) *api.InspectResponse
	CleanDataset(ctx context.Context, filename string, ds *dataprocessing.Dataset, req api.CleaningOptionsRequest) (*api.CleanResponse, *dataprocessing.Dataset, error)
	ExportDataset(ctx context.Context, filename string, ds *dataprocessing.Dataset) (*exporter.Export, error)
	Strategies() []api.StrategyInfo
}
