package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/wonny/ipo-scorecard/internal/analyze"
	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/pkg/logger"
)

// multipartSlack covers form boundaries and the optional slug field
const multipartSlack = 1 << 20

// Analyzer runs the full document pipeline
type Analyzer interface {
	Run(ctx context.Context, up analyze.Upload) (*contracts.Report, error)
}

// AnalyzeHandler handles document uploads
// ⭐ SSOT: 업로드 분석 API 핸들러는 이 구조체에서만
type AnalyzeHandler struct {
	analyzer Analyzer
	maxBytes int64
	logger   *logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analyzer Analyzer, maxBytes int64, log *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		maxBytes: maxBytes,
		logger:   log,
	}
}

// Analyze accepts a multipart PDF upload and returns the report
// POST /analyze (file, slug?)
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.logger.WithContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartSlack)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
			return
		}
		respondError(w, http.StatusBadRequest, "Expected a multipart form with a file field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		respondError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		log.WithError(err).Error("Failed to read upload")
		respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	report, err := h.analyzer.Run(ctx, analyze.Upload{
		Content:  content,
		Filename: header.Filename,
		Slug:     r.FormValue("slug"),
	})
	switch {
	case errors.Is(err, analyze.ErrNotPDF):
		respondError(w, http.StatusBadRequest, "Only PDF files are accepted")
		return
	case errors.Is(err, analyze.ErrEmptyUpload):
		respondError(w, http.StatusBadRequest, "Uploaded file is empty")
		return
	case err != nil:
		log.WithError(err).WithField("filename", header.Filename).Error("Analysis failed")
		respondError(w, http.StatusInternalServerError, "Failed to analyze document")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
