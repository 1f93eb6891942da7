package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/auth"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/service"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/source"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PipelineHandler struct {
	pipelineService *service.PipelineService
	maxUploadBytes  int64
	logger          *zap.Logger
}

func NewPipelineHandler(pipelineService *service.PipelineService, maxUploadSizeMB int64, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipelineService: pipelineService,
		maxUploadBytes:  maxUploadSizeMB * 1024 * 1024,
		logger:          logger,
	}
}

// Run godoc
// @Summary Repopulate the database
// @Description Purges the store and imports catalog, roster, synthetic leads and sales.
// @Description Runs synchronously and returns the run report. A run that fails after
// @Description the purge still returns its report with state "failed".
// @Tags Pipeline
// @Produce json
// @Success 200 {object} pipeline.Report
// @Failure 409 {object} domain.APIError
// @Failure 500 {object} pipeline.Report
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /pipeline/run [post]
func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	trigger := "api"
	if userCtx, ok := auth.FromContext(r.Context()); ok && userCtx.Name != "" {
		trigger = "api:" + userCtx.Name
	}

	report, err := h.pipelineService.Run(r.Context(), trigger)
	if err != nil {
		if errors.Is(err, service.ErrConflict) || report == nil {
			handleServiceError(w, h.logger, err, "run pipeline")
			return
		}
		h.logger.Error("pipeline run failed", zap.String("run_id", report.RunID), zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, report)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Status godoc
// @Summary Pipeline status
// @Tags Pipeline
// @Produce json
// @Success 200 {object} service.PipelineStatus
// @Router /pipeline/status [get]
func (h *PipelineHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.pipelineService.Status())
}

// UploadSource godoc
// @Summary Replace a source file
// @Description Uploads a new catalog, roster or sales file. The body is either the raw
// @Description file or a multipart form with a "file" field. The file must carry every
// @Description required column of its kind.
// @Tags Pipeline
// @Accept octet-stream
// @Accept mpfd
// @Produce json
// @Param kind path string true "Source kind" Enums(catalog, roster, sales)
// @Success 200 {object} service.SourceUpload
// @Failure 400 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /pipeline/sources/{kind} [put]
func (h *PipelineHandler) UploadSource(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if _, ok := source.SchemaFor(kind); !ok {
		respondWithError(w, http.StatusBadRequest, "Unknown source kind: "+kind)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			if isTooLarge(err) {
				respondWithError(w, http.StatusRequestEntityTooLarge, "File too large")
				return
			}
			respondWithError(w, http.StatusBadRequest, "Missing file field")
			return
		}
		defer file.Close()
		body = file
	}

	upload, err := h.pipelineService.UploadSource(r.Context(), kind, body)
	if err != nil {
		if isTooLarge(err) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		handleServiceError(w, h.logger, err, "upload source")
		return
	}
	respondJSON(w, http.StatusOK, upload)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
