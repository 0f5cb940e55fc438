// Package handlers exposes the submission and query operations over HTTP.
// Handlers translate between wire shapes and the intake service; no ledger
// logic lives here.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ledgerbot/internal/api/middleware"
	"github.com/dvloznov/ledgerbot/internal/dates"
	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/extract"
	"github.com/dvloznov/ledgerbot/internal/intake"
	"github.com/dvloznov/ledgerbot/internal/jobs"
	"github.com/dvloznov/ledgerbot/internal/ledger"
	"github.com/dvloznov/ledgerbot/internal/money"
)

// maxImageBytes bounds visual submission payloads.
const maxImageBytes = 10 << 20

// SubmissionsHandler handles the three submission endpoints.
type SubmissionsHandler struct {
	svc       *intake.Service
	publisher jobs.Publisher
	log       zerolog.Logger
}

func NewSubmissionsHandler(svc *intake.Service, publisher jobs.Publisher, log zerolog.Logger) *SubmissionsHandler {
	return &SubmissionsHandler{svc: svc, publisher: publisher, log: log}
}

type submitRequest struct {
	Kind      string `json:"kind,omitempty"`
	Text      string `json:"text"`
	UserLabel string `json:"user_label,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

// SubmitDirect handles POST /api/submissions/direct
func (h *SubmissionsHandler) SubmitDirect(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	kind, ok := domain.ParseKind(req.Kind)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Kind must be inflow or outflow")
		return
	}

	sub := intake.Submission{UserID: userID, UserLabel: req.UserLabel, MessageID: req.MessageID}
	conf, err := h.svc.SubmitDirect(r.Context(), sub, kind, req.Text)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, conf)
}

// SubmitText handles POST /api/submissions/text
func (h *SubmissionsHandler) SubmitText(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Text is required")
		return
	}

	sub := intake.Submission{UserID: userID, UserLabel: req.UserLabel, MessageID: req.MessageID}
	conf, err := h.svc.SubmitText(r.Context(), sub, req.Text)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, conf)
}

// SubmitVisual handles POST /api/submissions/visual. The image travels as the
// raw request body; analysis runs asynchronously and the caller polls the
// returned job id.
func (h *SubmissionsHandler) SubmitVisual(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	image, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}
	if len(image) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Image body is required")
		return
	}

	job := &jobs.AnalyzeReceiptJob{
		UserID:    userID,
		UserLabel: r.URL.Query().Get("user_label"),
		MessageID: r.URL.Query().Get("message_id"),
		Image:     image,
		MimeType:  mimeType,
		Filename:  r.URL.Query().Get("filename"),
	}

	if err := h.publisher.PublishAnalyzeReceipt(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue receipt analysis")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to enqueue analysis")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// writeSubmitError maps pipeline failures to status codes: caller mistakes to
// 400, unusable oracle output to 422, storage trouble to 502.
func (h *SubmissionsHandler) writeSubmitError(w http.ResponseWriter, err error) {
	var (
		verr *domain.ValidationError
		derr *dates.InvalidDateError
		eerr *extract.ExtractionError
		werr *ledger.WriteError
	)

	switch {
	case errors.As(err, &verr), errors.As(err, &derr), errors.Is(err, money.ErrInvalidAmount):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &eerr):
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &werr):
		h.log.Error().Err(err).Msg("Ledger write failed")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to record entry")
	default:
		h.log.Error().Err(err).Msg("Submission failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// LedgerHandler handles the read-side endpoints.
type LedgerHandler struct {
	svc *intake.Service
	log zerolog.Logger
}

func NewLedgerHandler(svc *intake.Service, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{svc: svc, log: log}
}

// Balance handles GET /api/balance
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	bal, err := h.svc.Balance(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Balance scan failed")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to compute balance")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, bal)
}

// Report handles GET /api/report?month=YYYY-MM
func (h *LedgerHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	report, err := h.svc.Report(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		var rerr *ledger.ReadError
		if errors.As(err, &rerr) {
			h.log.Error().Err(err).Msg("Report scan failed")
			middleware.WriteError(w, http.StatusBadGateway, "Failed to build report")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, report)
}

// JobsHandler exposes job status.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter := jobs.JobFilter{
		UserID: middleware.UserID(r),
		Status: jobs.JobStatus(r.URL.Query().Get("status")),
		Limit:  50,
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}
