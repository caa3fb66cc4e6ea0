package http

import (
	"context"

	"github.com/nursabrinaas08/data-cleaning/internal/exporter"
	"github.com/nursabrinaas08/data-cleaning/internal/services"
	api "github.com/nursabrinaas08/data-cleaning/pkg/contracts/api/v1"
)

// CleaningServiceInterface defines the cleaning operations used by the handlers
type CleaningServiceInterface interface {
	Inspect(ctx context.Context, upload services.Upload) (*api.InspectResponse, error)
	Clean(ctx context.Context, upload services.Upload, req api.CleaningOptionsRequest) (*api.CleanResponse, error)
	Export(ctx context.Context, upload services.Upload, req api.CleaningOptionsRequest) (*exporter.Export, error)
	Report(ctx context.Context, upload services.Upload, req api.CleaningOptionsRequest) ([]byte, error)
	Strategies() []api.StrategyInfo
}
