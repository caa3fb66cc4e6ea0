package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nursabrinaas08/data-cleaning/internal/config"
	"github.com/nursabrinaas08/data-cleaning/internal/dataprocessing"
	apierrors "github.com/nursabrinaas08/data-cleaning/internal/errors"
	"github.com/nursabrinaas08/data-cleaning/internal/exporter"
	"github.com/nursabrinaas08/data-cleaning/internal/infrastructure"
	"github.com/nursabrinaas08/data-cleaning/internal/validation"
	api "github.com/nursabrinaas08/data-cleaning/pkg/contracts/api/v1"
)

// Upload is one uploaded file held in memory for the duration of a request
type Upload struct {
	Filename string
	Data     []byte
}

// CleaningService runs the ingest, profile, clean and export pipeline on
// uploads. It keeps no state between calls.
type CleaningService struct {
	validator       *validation.FileValidator
	cleaner         dataprocessing.Processor
	exporter        *exporter.Exporter
	metrics         *infrastructure.BusinessMetrics
	tracer          trace.Tracer
	previewRows     int
	includeDescribe bool
	logger          *slog.Logger
}

// NewCleaningService creates a cleaning service. metrics may be nil.
func NewCleaningService(cfg *config.Config, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *CleaningService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "cleaning_service")

	logger.Info("CleaningService initialized",
		slog.Int64("max_upload_bytes", cfg.Upload.MaxBytes),
		slog.Any("allowed_extensions", cfg.Upload.AllowedExtensions),
		slog.Int("preview_rows", cfg.Cleaning.PreviewRows))

	return &CleaningService{
		validator:       validation.NewFileValidator(cfg.Upload, logger),
		cleaner:         dataprocessing.NewCleaner(logger),
		exporter:        exporter.New(logger),
		metrics:         metrics,
		tracer:          otel.Tracer(infrastructure.MeterName),
		previewRows:     cfg.Cleaning.PreviewRows,
		includeDescribe: cfg.Cleaning.IncludeDescribe,
		logger:          logger,
	}
}

// Load validates and parses an upload into a dataset
func (s *CleaningService) Load(ctx context.Context, upload Upload) (*dataprocessing.Dataset, error) {
	ctx, span := s.tracer.Start(ctx, "cleaning.ingest",
		trace.WithAttributes(
			attribute.String("file.name", upload.Filename),
			attribute.Int("file.size", len(upload.Data)),
		))
	defer span.End()

	logger := infrastructure.WithUpload(s.logger, upload.Filename, len(upload.Data))
	format := formatLabel(upload.Filename)
	start := time.Now()

	fail := func(err error) (*dataprocessing.Dataset, error) {
		infrastructure.RecordIngest(ctx, s.metrics, format, 0, time.Since(start), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "ingest failed")
		mapped := uploadError(err, s.validator.MaxBytes())
		logger.WarnContext(ctx, "Upload rejected",
			slog.String("error", err.Error()),
			slog.String("error_type", string(apierrors.TypeOf(mapped))),
			slog.String("trace_id", infrastructure.GetTraceID(ctx)))
		return nil, mapped
	}

	if err := s.validator.ValidateUpload(upload.Filename, int64(len(upload.Data))); err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := dataprocessing.IngestBytes(filepath.Base(upload.Filename), upload.Data)
	if err != nil {
		return fail(err)
	}

	infrastructure.RecordIngest(ctx, s.metrics, format, ds.NumRows(), time.Since(start), nil)
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"dataset.rows":    ds.NumRows(),
		"dataset.columns": ds.NumColumns(),
		"file.format":     format,
	})
	logger.InfoContext(ctx, "Upload ingested",
		slog.String("format", format),
		slog.Int("rows", ds.NumRows()),
		slog.Int("columns", ds.NumColumns()),
		slog.Duration("duration", time.Since(start)),
		slog.String("trace_id", infrastructure.GetTraceID(ctx)))
	return ds, nil
}

// Inspect profiles an upload without changing it
func (s *CleaningService) Inspect(ctx context.Context, upload Upload) (*api.InspectResponse, error) {
	ds, err := s.Load(ctx, upload)
	if err != nil {
		return nil, err
	}
	return s.InspectDataset(ctx, upload.Filename, ds), nil
}

// InspectDataset profiles an already parsed dataset
func (s *CleaningService) InspectDataset(ctx context.Context, filename string, ds *dataprocessing.Dataset) *api.InspectResponse {
	_, span := s.tracer.Start(ctx, "cleaning.profile")
	defer span.End()

	resp := &api.InspectResponse{
		Filename: filepath.Base(filename),
		Format:   formatLabel(filename),
		Report:   toQualityReport(dataprocessing.Profile(ds)),
		Preview:  toTable(dataprocessing.Preview(ds, s.previewRows)),
	}
	if s.includeDescribe {
		resp.Statistics = toStatistics(dataprocessing.Describe(ds))
	}
	return resp
}

// Clean parses an upload and applies the cleaning options to it
func (s *CleaningService) Clean(ctx context.Context, upload Upload, req api.CleaningOptionsRequest) (*api.CleanResponse, error) {
	if _, err := toCleaningOptions(req); err != nil {
		return nil, optionsError(err)
	}

	ds, err := s.Load(ctx, upload)
	if err != nil {
		return nil, err
	}

	resp, _, err := s.CleanDataset(ctx, upload.Filename, ds, req)
	return resp, err
}

// CleanDataset applies the cleaning options to a parsed dataset and returns
// the report together with the cleaned copy. ds is not modified.
func (s *CleaningService) CleanDataset(ctx context.Context, filename string, ds *dataprocessing.Dataset, req api.CleaningOptionsRequest) (*api.CleanResponse, *dataprocessing.Dataset, error) {
	opts, err := toCleaningOptions(req)
	if err != nil {
		return nil, nil, optionsError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Nothing to apply, so there is no cleaning run to trace or count
	if opts.IsNoop() {
		cleaned := ds.Clone()
		report := dataprocessing.Profile(cleaned)
		return s.cleanResponse(ctx, filename, opts, report, report, cleaned, 0), cleaned, nil
	}

	ctx, span := s.tracer.Start(ctx, "cleaning.clean",
		trace.WithAttributes(
			attribute.String("cleaning.strategy", string(opts.MissingStrategy)),
			attribute.Bool("cleaning.deduplicate", opts.Deduplicate),
		))
	defer span.End()

	start := time.Now()
	before := dataprocessing.Profile(ds)

	cleaned, err := s.cleaner.Clean(ctx, ds, opts)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, nil, optionsError(err)
	}

	after := dataprocessing.Profile(cleaned)
	duration := time.Since(start)

	resp := s.cleanResponse(ctx, filename, opts, before, after, cleaned, duration)
	infrastructure.RecordCleaning(ctx, s.metrics, infrastructure.CleaningObservation{
		Strategy:    string(opts.MissingStrategy),
		Deduplicate: opts.Deduplicate,
		RowsBefore:  before.Rows,
		RowsAfter:   after.Rows,
		CellsFilled: resp.CellsFilled,
		Duration:    duration,
	})
	return resp, cleaned, nil
}

func (s *CleaningService) cleanResponse(ctx context.Context, filename string, opts dataprocessing.CleaningOptions,
	before, after dataprocessing.QualityReport, cleaned *dataprocessing.Dataset, duration time.Duration) *api.CleanResponse {
	cellsFilled := 0
	if opts.MissingStrategy != dataprocessing.StrategyDrop && opts.MissingStrategy != dataprocessing.StrategyNone {
		cellsFilled = before.MissingTotal - after.MissingTotal
	}

	download := exporter.DownloadFor(filename)
	resp := &api.CleanResponse{
		Filename:    filepath.Base(filename),
		Options:     toAppliedOptions(opts),
		Before:      toQualityReport(before),
		After:       toQualityReport(after),
		Preview:     toTable(dataprocessing.Preview(cleaned, s.previewRows)),
		RowsRemoved: before.Rows - after.Rows,
		CellsFilled: cellsFilled,
		Download:    api.DownloadInfo{Filename: download.Filename, ContentType: download.ContentType},
		Duration:    duration,
	}
	if s.includeDescribe {
		resp.Statistics = toStatistics(dataprocessing.Describe(cleaned))
	}

	s.logger.InfoContext(ctx, "Dataset cleaned",
		slog.String("filename", resp.Filename),
		slog.String("strategy", string(opts.MissingStrategy)),
		slog.Bool("deduplicate", opts.Deduplicate),
		slog.Int("rows_before", before.Rows),
		slog.Int("rows_after", after.Rows),
		slog.Int("cells_filled", cellsFilled),
		slog.Duration("duration", duration),
		slog.String("trace_id", infrastructure.GetTraceID(ctx)))
	return resp
}

// Export parses an upload, cleans it and serializes the result in the
// format of the original file
func (s *CleaningService) Export(ctx context.Context, upload Upload, req api.CleaningOptionsRequest) (*exporter.Export, error) {
	opts, err := toCleaningOptions(req)
	if err != nil {
		return nil, optionsError(err)
	}

	ds, err := s.Load(ctx, upload)
	if err != nil {
		return nil, err
	}

	cleaned, err := s.cleaner.Clean(ctx, ds, opts)
	if err != nil {
		return nil, optionsError(err)
	}
	return s.ExportDataset(ctx, upload.Filename, cleaned)
}

// ExportDataset serializes a dataset for download
func (s *CleaningService) ExportDataset(ctx context.Context, filename string, ds *dataprocessing.Dataset) (*exporter.Export, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "cleaning.export")
	defer span.End()

	exp, err := s.exporter.Export(ds, filename)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.RecordSystemError(ctx, s.metrics, "exporter")
		logServiceError(ctx, "cleaning_service", "export", "Export failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return nil, err
	}

	infrastructure.RecordExport(ctx, s.metrics, exp.Format, len(exp.Data))
	s.logger.InfoContext(ctx, "Dataset exported",
		slog.String("filename", exp.Filename),
		slog.String("format", exp.Format),
		slog.Int("bytes", len(exp.Data)),
		slog.String("trace_id", infrastructure.GetTraceID(ctx)))
	return exp, nil
}

// Strategies documents the accepted missing-value strategies
func (s *CleaningService) Strategies() []api.StrategyInfo {
	descriptions := map[dataprocessing.MissingStrategy]string{
		dataprocessing.StrategyNone:       "Keep missing values as they are",
		dataprocessing.StrategyDrop:       "Remove every row holding a missing value",
		dataprocessing.StrategyFillMean:   "Fill numeric columns with the column mean",
		dataprocessing.StrategyFillMedian: "Fill numeric columns with the column median",
		dataprocessing.StrategyFillMode:   "Fill every column with its most frequent value",
		dataprocessing.StrategyFillCustom: "Fill every missing cell with a given value",
	}

	infos := make([]api.StrategyInfo, 0, len(dataprocessing.Strategies))
	for _, st := range dataprocessing.Strategies {
		infos = append(infos, api.StrategyInfo{
			Name:          string(st),
			Description:   descriptions[st],
			RequiresValue: st == dataprocessing.StrategyFillCustom,
		})
	}
	return infos
}

// formatLabel names the upload format for metrics and logs
func formatLabel(filename string) string {
	if format, err := dataprocessing.DetectFormat(filename); err == nil {
		return format
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}
