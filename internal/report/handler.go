package report

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/expense-reports/internal"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	"github.com/frahmantamala/expense-reports/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateReport(ctx context.Context, userID int64, dto CreateReportDTO) (*Report, error)
	GetReport(ctx context.Context, id string) (*Report, error)
	ListReports(ctx context.Context, filter ListFilter) ([]*Report, error)
	UpdateReportFields(ctx context.Context, id string, dto UpdateReportDTO) (*Report, error)
	DeleteReport(ctx context.Context, id string) error
	Submit(ctx context.Context, id string) (*Report, error)
	Validate(ctx context.Context, id string) (*Report, error)
	Reject(ctx context.Context, id string) (*Report, error)
	Pay(ctx context.Context, id string) (*Report, error)
	Reopen(ctx context.Context, id string) (*Report, error)
	Summary(ctx context.Context, userID int64) (*SummaryResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := errors.UserIDFromContext(r.Context())
	if !ok {
		h.Logger.Warn("CreateReport: user not found in context")
		h.HandleServiceError(w, r, errors.ErrUnauthenticated)
		return
	}

	var dto CreateReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Warn("CreateReport: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.Service.CreateReport(r.Context(), userID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, report.ToResponse())
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	filter := ListFilter{Limit: limit, Offset: offset}

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status, err := reportstatus.Parse(statusStr)
		if err != nil {
			h.HandleServiceError(w, r, errors.NewValidationFieldError("status", err.Error(), errors.ErrCodeInvalidStatus))
			return
		}
		filter.Status = &status
	}

	if userStr := r.URL.Query().Get("user_id"); userStr != "" {
		userID, err := strconv.ParseInt(userStr, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &userID
	}

	reports, err := h.Service.ListReports(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	responses := make([]ReportResponse, len(reports))
	for i, report := range reports {
		responses[i] = report.ToResponse()
	}

	h.WriteJSON(w, http.StatusOK, ReportsResponse{
		Reports: responses,
		Limit:   limit,
		Offset:  offset,
	})
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report.ToResponse())
}

func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "id")

	var dto UpdateReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Warn("UpdateReport: invalid request body", "error", err, "report_id", reportID)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.Service.UpdateReportFields(r.Context(), reportID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report.ToResponse())
}

func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteReport(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := errors.UserIDFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, errors.ErrUnauthenticated)
		return
	}

	summary, err := h.Service.Summary(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.Service.Submit)
}

func (h *Handler) ValidateReport(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.Service.Validate)
}

func (h *Handler) RejectReport(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.Service.Reject)
}

func (h *Handler) PayReport(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.Service.Pay)
}

func (h *Handler) ReopenReport(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.Service.Reopen)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) (*Report, error)) {
	reportID := chi.URLParam(r, "id")

	report, err := apply(r.Context(), reportID)
	if err != nil {
		h.Logger.Warn("report transition failed", "error", err, "report_id", reportID, "path", r.URL.Path)
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report.ToResponse())
}
