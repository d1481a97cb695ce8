package expense

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/expense-reports/internal/transport"
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

type ServiceAPI interface {
	CreateExpense(ctx context.Context, dto CreateExpenseDTO) (*Expense, error)
	UpdateExpense(ctx context.Context, id string, patch UpdateExpenseDTO) (*Expense, error)
	RemoveExpense(ctx context.Context, id string) error
	RecalculateTotal(ctx context.Context, reportID string) (decimal.Decimal, error)
	GetExpense(ctx context.Context, id string) (*Expense, error)
	ListByReport(ctx context.Context, reportID string) ([]*Expense, error)
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

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var dto CreateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Warn("CreateExpense: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense, err := h.Service.CreateExpense(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("CreateExpense: service error", "error", err, "report_id", dto.ReportID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, expense.ToResponse())
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.Service.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, expense.ToResponse())
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "id")

	var patch UpdateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.Logger.Warn("UpdateExpense: invalid request body", "error", err, "expense_id", expenseID)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense, err := h.Service.UpdateExpense(r.Context(), expenseID, patch)
	if err != nil {
		h.Logger.Warn("UpdateExpense: service error", "error", err, "expense_id", expenseID)
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, expense.ToResponse())
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "id")

	if err := h.Service.RemoveExpense(r.Context(), expenseID); err != nil {
		h.Logger.Warn("DeleteExpense: service error", "error", err, "expense_id", expenseID)
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReportExpenses handles GET /reports/{id}/expenses
func (h *Handler) ListReportExpenses(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "id")

	expenses, err := h.Service.ListByReport(r.Context(), reportID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	responses := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		responses[i] = e.ToResponse()
	}
	h.WriteJSON(w, http.StatusOK, ExpensesResponse{
		ReportID: reportID,
		Expenses: responses,
	})
}
