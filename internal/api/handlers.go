// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Boakye-20/ai-compliance-tool/internal/catalog"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
	"github.com/Boakye-20/ai-compliance-tool/internal/services"
	"github.com/Boakye-20/ai-compliance-tool/internal/store"
)

// Analyzer is the job lifecycle the handlers drive. *services.Analyzer implements it.
type Analyzer interface {
	Analyze(ctx context.Context, filename string, doc []byte, frameworks []models.Framework, onStatus services.StatusFunc) (*models.AnalysisJob, error)
	Job(ctx context.Context, id string) (*models.AnalysisJob, error)
}

const defaultMaxUploadBytes = 32 << 20

type Handler struct {
	analyzer       Analyzer
	catalog        *catalog.Catalog
	validate       *validator.Validate
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHandler(analyzer Analyzer, maxUploadBytes int64, logger *slog.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		analyzer:       analyzer,
		catalog:        catalog.Default(),
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Frameworks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Infos())
}

// Analyze accepts a multipart form with a "file" part and one or more "frameworks"
// values. A single value may also carry a comma-separated list.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	tooLarge := fmt.Sprintf("Upload exceeds %d bytes.", h.maxUploadBytes)
	if r.ContentLength > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "Request must be multipart/form-data.")
		return
	}

	req, problem := h.readAnalyzeRequest(r)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}
	frameworks, err := models.ParseFrameworks(req.Frameworks)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logCtx := h.logger.With("filename", req.Filename)
	job, err := h.analyzer.Analyze(r.Context(), req.Filename, req.Document, frameworks, nil)
	switch {
	case errors.Is(err, services.ErrInvalidDocument):
		logCtx.WarnContext(r.Context(), "Rejected unreadable document.", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "The uploaded file could not be read as a PDF.")
		return
	case err != nil:
		logCtx.ErrorContext(r.Context(), "Analysis failed.", "error", err)
		writeError(w, http.StatusInternalServerError, "Analysis did not produce a result.")
		return
	}

	resp := models.AnalyzeResponse{JobID: job.ID, Analysis: job.Run}
	if len(job.ReportBytes) > 0 {
		encoded := base64.StdEncoding.EncodeToString(job.ReportBytes)
		resp.ReportBase64 = &encoded
	}
	writeJSON(w, http.StatusOK, resp)
}

// readAnalyzeRequest returns the validated request, or a message for the caller.
func (h *Handler) readAnalyzeRequest(r *http.Request) (*models.AnalyzeRequest, string) {
	req := &models.AnalyzeRequest{}
	for _, v := range r.MultipartForm.Value["frameworks"] {
		for _, code := range strings.Split(v, ",") {
			if code = strings.TrimSpace(code); code != "" {
				req.Frameworks = append(req.Frameworks, code)
			}
		}
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		req.Filename = header.Filename
		if req.Document, err = io.ReadAll(file); err != nil {
			return nil, "Could not read the uploaded file."
		}
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].StructField() == "Frameworks" {
			return nil, "At least one framework must be selected."
		}
		return nil, "A PDF file is required."
	}
	return req, ""
}

// Report streams the stored report of a job as an attachment.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("job_id")
	job, err := h.analyzer.Job(r.Context(), id)
	if errors.Is(err, store.ErrJobNotFound) || (err == nil && len(job.ReportBytes) == 0) {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to load job.", "jobId", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Could not load report.")
		return
	}

	contentType := job.ReportContentType
	if contentType == "" {
		contentType = services.MarkdownContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="compliance_report_%s%s"`, job.ID, reportExtension(contentType)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(job.ReportBytes)
}

func reportExtension(contentType string) string {
	if strings.HasPrefix(contentType, "application/pdf") {
		return ".pdf"
	}
	return ".md"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response.", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
