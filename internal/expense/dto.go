package expense

import (
	"encoding/json"
	"time"

	errors "github.com/frahmantamala/expense-reports/internal"
	"github.com/frahmantamala/expense-reports/internal/category"
	"github.com/frahmantamala/expense-reports/internal/core/common/validation"
	"github.com/frahmantamala/expense-reports/internal/core/date"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	"github.com/shopspring/decimal"
)

type CreateExpenseDTO struct {
	ReportID    string          `json:"reportId"`
	Category    string          `json:"category"`
	ExpenseName *string         `json:"expenseName,omitempty"`
	Description *string         `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate date.Date       `json:"expenseDate"`
}

func (dto CreateExpenseDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("reportId", dto.ReportID).
		Required()
	validator.Field("category", dto.Category).
		Required().
		OneOf(category.Names(), errors.ErrCodeInvalidCategory)
	validator.Field("amount", dto.Amount).
		Custom(amountRule)
	validator.Field("expenseDate", dto.ExpenseDate).
		Required()
	validator.Field("expenseName", dto.ExpenseName).
		MaxLength(100)
	validator.Field("description", dto.Description).
		MaxLength(500)
	return validator.Validate()
}

// UpdateExpenseDTO is a partial update. A nil field is left unchanged.
type UpdateExpenseDTO struct {
	Category    *string          `json:"category,omitempty"`
	ExpenseName *string          `json:"expenseName,omitempty"`
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	ExpenseDate *date.Date       `json:"expenseDate,omitempty"`
}

func (dto UpdateExpenseDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	if dto.Category != nil {
		validator.Field("category", *dto.Category).
			OneOf(category.Names(), errors.ErrCodeInvalidCategory)
	}
	if dto.Amount != nil {
		validator.Field("amount", *dto.Amount).
			Custom(amountRule)
	}
	if dto.ExpenseDate != nil {
		validator.Field("expenseDate", *dto.ExpenseDate).
			Required()
	}
	validator.Field("expenseName", dto.ExpenseName).
		MaxLength(100)
	validator.Field("description", dto.Description).
		MaxLength(500)
	return validator.Validate()
}

func amountRule(value interface{}) *errors.AppError {
	amount, _ := value.(decimal.Decimal)
	return validation.ValidateExpenseAmount(amount)
}

type ExpenseResponse struct {
	ID          string              `json:"id"`
	ReportID    string              `json:"reportId"`
	Category    string              `json:"category"`
	ExpenseName *string             `json:"expenseName"`
	Description *string             `json:"description"`
	Amount      json.Number         `json:"amount"`
	ExpenseDate date.Date           `json:"expenseDate"`
	Status      reportstatus.Status `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type ExpensesResponse struct {
	ReportID string            `json:"reportId"`
	Expenses []ExpenseResponse `json:"expenses"`
}
