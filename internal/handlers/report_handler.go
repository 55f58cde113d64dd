package handlers

import (
	"errors"
	"io"
	"net/http"

	"literacylead/internal/service"
)

// ReportHandler serves analysis, report retrieval and document ingestion.
type ReportHandler struct {
	analysisService *service.AnalysisService
	ingestService   *service.IngestService
	maxUploadSize   int64
}

// NewReportHandler creates a new report handler.
func NewReportHandler(analysisService *service.AnalysisService, ingestService *service.IngestService, maxUploadSize int64) *ReportHandler {
	return &ReportHandler{
		analysisService: analysisService,
		ingestService:   ingestService,
		maxUploadSize:   maxUploadSize,
	}
}

// Analyze handles POST /api/analyze: kicks off an asynchronous run over the
// current roster and returns its sequence number immediately.
func (h *ReportHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	seq := h.analysisService.Trigger()
	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"analysisSeq": seq,
	})
}

// GetReport handles GET /api/report. It returns the latest applied report
// (null before the first success), the run status and dashboard aggregates
// derived from class health.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, status := h.analysisService.Snapshot()

	body := map[string]interface{}{
		"report": report,
		"status": status,
	}
	if report != nil {
		health := report.ClassHealth
		body["dashboard"] = map[string]interface{}{
			"atOrAbovePercent": health.AtOrAbovePercent(),
			"criticalNeeds":    health.WellBelow,
			"tieredStudents":   health.Total(),
			"missingData":      len(report.MissingDataStudents),
		}
	}
	respondJSON(w, http.StatusOK, body)
}

// Ingest handles POST /api/ingest?mode=sample|roster with a multipart file
// field. Roster mode replaces the entire class; sample mode appends one
// assessment to the matching student.
func (h *ReportHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode != "sample" && mode != "roster" {
		respondError(w, http.StatusBadRequest, "mode must be sample or roster", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "Upload too large", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing file upload", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read upload", err)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	if mode == "sample" {
		result, err := h.ingestService.IngestSample(r.Context(), data, mimeType)
		if err != nil {
			h.ingestError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
		return
	}

	count, seq, err := h.ingestService.IngestRoster(r.Context(), data, mimeType)
	if err != nil {
		h.ingestError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"students":    count,
		"analysisSeq": seq,
	})
}

func (h *ReportHandler) ingestError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrUnreadableDocument) {
		respondError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	}
	respondError(w, http.StatusInternalServerError, "Ingestion failed", err)
}
