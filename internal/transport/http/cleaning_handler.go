package http

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/nursabrinaas08/data-cleaning/internal/config"
	apierrors "github.com/nursabrinaas08/data-cleaning/internal/errors"
	"github.com/nursabrinaas08/data-cleaning/internal/infrastructure"
	appmiddleware "github.com/nursabrinaas08/data-cleaning/internal/middleware"
	"github.com/nursabrinaas08/data-cleaning/internal/services"
	api "github.com/nursabrinaas08/data-cleaning/pkg/contracts/api/v1"
)

// multipartMemory is the part of a multipart body kept in memory before
// spilling to temporary files
const multipartMemory = 32 << 20

// CleaningHandler handles upload, cleaning and download requests with
// RFC 7807 errors
type CleaningHandler struct {
	service      CleaningServiceInterface
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewCleaningHandler creates a new cleaning handler
func NewCleaningHandler(service CleaningServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CleaningHandler {
	return &CleaningHandler{
		service:      service,
		validate:     appmiddleware.NewValidator(),
		logger:       infrastructure.WithComponent(logger, "cleaning_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the cleaning routes
func (h *CleaningHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/strategies", h.Strategies)

	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))

		r.Post("/inspect", h.Inspect)
		r.Post("/clean", h.Clean)
		r.Post("/clean/download", h.Download)
		r.Post("/clean/report", h.Report)
	})

	return r
}

// Inspect handles POST /api/v1/inspect
func (h *CleaningHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	upload, err := h.readUpload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Inspect(r.Context(), upload)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.NewSuccessResponse(resp))
}

// Clean handles POST /api/v1/clean
func (h *CleaningHandler) Clean(w http.ResponseWriter, r *http.Request) {
	upload, req, err := h.readCleaningRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Clean(r.Context(), upload, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "cleaning completed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("filename", resp.Filename),
		slog.Int("rows_removed", resp.RowsRemoved),
		slog.Int("cells_filled", resp.CellsFilled))

	render.JSON(w, r, api.NewSuccessResponse(resp))
}

// Download handles POST /api/v1/clean/download and streams the cleaned file
func (h *CleaningHandler) Download(w http.ResponseWriter, r *http.Request) {
	upload, req, err := h.readCleaningRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	exp, err := h.service.Export(r.Context(), upload, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exp.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	w.WriteHeader(http.StatusOK)
	h.writeBody(w, r, "download", exp.Data)
}

// Report handles POST /api/v1/clean/report
func (h *CleaningHandler) Report(w http.ResponseWriter, r *http.Request) {
	upload, req, err := h.readCleaningRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.service.Report(r.Context(), upload, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", services.ReportContentType)
	w.WriteHeader(http.StatusOK)
	h.writeBody(w, r, "report", page)
}

// writeBody sends a response body after the headers are committed, so a
// failed write can only be logged
func (h *CleaningHandler) writeBody(w http.ResponseWriter, r *http.Request, what string, body []byte) {
	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(r.Context(), what+" interrupted",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
	}
}

// Strategies handles GET /api/v1/strategies
func (h *CleaningHandler) Strategies(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.NewSuccessResponse(h.service.Strategies()))
}

// readCleaningRequest reads the uploaded file and the cleaning options. The
// options are validated before the file is read.
func (h *CleaningHandler) readCleaningRequest(r *http.Request) (services.Upload, api.CleaningOptionsRequest, error) {
	if err := h.parseForm(r); err != nil {
		return services.Upload{}, api.CleaningOptionsRequest{}, err
	}

	req, err := h.decodeOptions(r)
	if err != nil {
		return services.Upload{}, api.CleaningOptionsRequest{}, err
	}

	upload, err := h.readUpload(r)
	return upload, req, err
}

func (h *CleaningHandler) decodeOptions(r *http.Request) (api.CleaningOptionsRequest, error) {
	req := api.CleaningOptionsRequest{
		MissingStrategy: strings.TrimSpace(r.FormValue(config.FormFieldMissingStrategy)),
		CustomFillValue: r.FormValue(config.FormFieldCustomFillValue),
	}

	dedup, err := parseFormBool(r.FormValue(config.FormFieldDeduplicate))
	if err != nil {
		return req, apierrors.ErrValidation(config.FormFieldDeduplicate, "deduplicate must be true or false")
	}
	req.Deduplicate = dedup

	if err := appmiddleware.ValidateStruct(h.validate, req); err != nil {
		return req, err
	}
	return req, nil
}

func (h *CleaningHandler) parseForm(r *http.Request) error {
	if r.MultipartForm != nil {
		return nil
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return apierrors.InvalidRequestWithError(err)
	}
	return nil
}

// readUpload reads the file form field into memory
func (h *CleaningHandler) readUpload(r *http.Request) (services.Upload, error) {
	if err := h.parseForm(r); err != nil {
		return services.Upload{}, err
	}

	file, header, err := r.FormFile(config.FormFieldFile)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return services.Upload{}, apierrors.ErrMissingFile
		}
		return services.Upload{}, apierrors.InvalidRequestWithError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return services.Upload{}, err
	}

	h.logger.DebugContext(r.Context(), "upload received",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("filename", header.Filename),
		slog.Int("size", len(data)))

	return services.Upload{Filename: header.Filename, Data: data}, nil
}

// parseFormBool accepts the values HTML checkboxes and clients send. The
// empty string is false.
func parseFormBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return false, nil
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}
