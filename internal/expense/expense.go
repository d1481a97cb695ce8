package expense

import (
	"encoding/json"
	"time"

	expenseDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-reports/internal/core/date"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          string
	ReportID    string
	Category    string
	ExpenseName *string
	Description *string
	Amount      decimal.Decimal
	ExpenseDate date.Date
	// Status mirrors the report lifecycle for display only; nothing enforces it.
	Status    reportstatus.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewExpense(dto CreateExpenseDTO) *Expense {
	now := time.Now()
	return &Expense{
		ID:          uuid.New().String(),
		ReportID:    dto.ReportID,
		Category:    dto.Category,
		ExpenseName: dto.ExpenseName,
		Description: dto.Description,
		Amount:      dto.Amount.Round(2),
		ExpenseDate: dto.ExpenseDate,
		Status:      reportstatus.Created,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply copies the present patch fields onto e and reports whether the amount changed.
func (e *Expense) Apply(patch UpdateExpenseDTO) bool {
	amountChanged := false
	if patch.Category != nil {
		e.Category = *patch.Category
	}
	if patch.ExpenseName != nil {
		e.ExpenseName = patch.ExpenseName
	}
	if patch.Description != nil {
		e.Description = patch.Description
	}
	if patch.Amount != nil && !patch.Amount.Equal(e.Amount) {
		e.Amount = patch.Amount.Round(2)
		amountChanged = true
	}
	if patch.ExpenseDate != nil {
		e.ExpenseDate = *patch.ExpenseDate
	}
	e.UpdatedAt = time.Now()
	return amountChanged
}

func (e *Expense) ToResponse() ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		ReportID:    e.ReportID,
		Category:    e.Category,
		ExpenseName: e.ExpenseName,
		Description: e.Description,
		Amount:      json.Number(e.Amount.StringFixed(2)),
		ExpenseDate: e.ExpenseDate,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:          e.ID,
		ReportID:    e.ReportID,
		Category:    e.Category,
		ExpenseName: e.ExpenseName,
		Description: e.Description,
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:          e.ID,
		ReportID:    e.ReportID,
		Category:    e.Category,
		ExpenseName: e.ExpenseName,
		Description: e.Description,
		Amount:      e.Amount.Round(2),
		ExpenseDate: e.ExpenseDate,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func FromDataModelSlice(expenses []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(expenses))
	for i, e := range expenses {
		result[i] = FromDataModel(e)
	}
	return result
}
