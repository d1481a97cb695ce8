package report

import (
	"encoding/json"
	"time"

	reportDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/report"
	"github.com/frahmantamala/expense-reports/internal/core/date"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Report struct {
	ID          string
	Purpose     string
	ReportDate  date.Date
	TotalAmount decimal.Decimal
	Status      reportstatus.Status
	PaymentDate *date.Date
	UserID      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewReport starts a report in CREATED with a zero total. Any status, total or
// payment date on the request is ignored.
func NewReport(userID int64, dto CreateReportDTO) *Report {
	now := time.Now()
	return &Report{
		ID:          uuid.New().String(),
		Purpose:     dto.Purpose,
		ReportDate:  dto.ReportDate,
		TotalAmount: decimal.Zero,
		Status:      reportstatus.Created,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (r *Report) CanModify() bool {
	return reportstatus.CanModify(r.Status)
}

func (r *Report) CanDelete() bool {
	return reportstatus.CanDelete(r.Status)
}

func (r *Report) ToResponse() ReportResponse {
	return ReportResponse{
		ID:           r.ID,
		Purpose:      r.Purpose,
		ReportDate:   r.ReportDate,
		TotalAmount:  json.Number(r.TotalAmount.StringFixed(2)),
		Status:       r.Status,
		PaymentDate:  r.PaymentDate,
		UserID:       r.UserID,
		NextStatuses: reportstatus.NextStatuses(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func ToDataModel(r *Report) *reportDatamodel.Report {
	return &reportDatamodel.Report{
		ID:          r.ID,
		Purpose:     r.Purpose,
		ReportDate:  r.ReportDate,
		TotalAmount: r.TotalAmount,
		Status:      r.Status,
		PaymentDate: r.PaymentDate,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModel(r *reportDatamodel.Report) *Report {
	return &Report{
		ID:          r.ID,
		Purpose:     r.Purpose,
		ReportDate:  r.ReportDate,
		TotalAmount: r.TotalAmount.Round(2),
		Status:      r.Status,
		PaymentDate: r.PaymentDate,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModelSlice(reports []*reportDatamodel.Report) []*Report {
	result := make([]*Report, len(reports))
	for i, r := range reports {
		result[i] = FromDataModel(r)
	}
	return result
}
