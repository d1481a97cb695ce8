package report

import (
	"encoding/json"
	"time"

	errors "github.com/frahmantamala/expense-reports/internal"
	"github.com/frahmantamala/expense-reports/internal/core/common/validation"
	"github.com/frahmantamala/expense-reports/internal/core/date"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
)

type CreateReportDTO struct {
	Purpose    string    `json:"purpose"`
	ReportDate date.Date `json:"reportDate"`
}

func (dto CreateReportDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("purpose", dto.Purpose).
		Required().
		MinLength(5).
		MaxLength(255)
	validator.Field("reportDate", dto.ReportDate).
		Required()
	return validator.Validate()
}

// UpdateReportDTO carries the editable report fields. Absent fields are left as they are.
type UpdateReportDTO struct {
	Purpose    *string    `json:"purpose,omitempty"`
	ReportDate *date.Date `json:"reportDate,omitempty"`
}

func (dto UpdateReportDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	if dto.Purpose != nil {
		validator.Field("purpose", *dto.Purpose).
			Required().
			MinLength(5).
			MaxLength(255)
	}
	if dto.ReportDate != nil {
		validator.Field("reportDate", *dto.ReportDate).
			Required()
	}
	return validator.Validate()
}

func (dto UpdateReportDTO) IsEmpty() bool {
	return dto.Purpose == nil && dto.ReportDate == nil
}

type ListFilter struct {
	Status *reportstatus.Status
	UserID *int64
	Limit  int
	Offset int
}

type ReportResponse struct {
	ID           string                `json:"id"`
	Purpose      string                `json:"purpose"`
	ReportDate   date.Date             `json:"reportDate"`
	TotalAmount  json.Number           `json:"totalAmount"`
	Status       reportstatus.Status   `json:"status"`
	PaymentDate  *date.Date            `json:"paymentDate"`
	UserID       int64                 `json:"userId"`
	NextStatuses []reportstatus.Status `json:"nextStatuses"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

type ReportsResponse struct {
	Reports []ReportResponse `json:"reports"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

type StatusSummaryResponse struct {
	Status      reportstatus.Status `json:"status"`
	Count       int64               `json:"count"`
	TotalAmount json.Number         `json:"totalAmount"`
}

type SummaryResponse struct {
	UserID   int64                   `json:"userId"`
	Statuses []StatusSummaryResponse `json:"statuses"`
}
