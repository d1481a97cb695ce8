package report

import (
	"time"

	"github.com/frahmantamala/expense-reports/internal/core/date"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	"github.com/shopspring/decimal"
)

type Report struct {
	ID          string              `gorm:"type:varchar(36);primaryKey"`
	Purpose     string              `gorm:"column:purpose;not null"`
	ReportDate  date.Date           `gorm:"column:report_date;type:date;not null"`
	TotalAmount decimal.Decimal     `gorm:"column:total_amount;type:decimal(12,2);not null"`
	Status      reportstatus.Status `gorm:"column:status;type:varchar(16);not null;index"`
	PaymentDate *date.Date          `gorm:"column:payment_date;type:date"`
	UserID      int64               `gorm:"column:user_id;not null;index"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Report) TableName() string {
	return "expense_reports"
}

// StatusSummary is one row of the per-status aggregate for a user's reports.
type StatusSummary struct {
	Status      reportstatus.Status `db:"status"`
	Count       int64               `db:"report_count"`
	TotalAmount decimal.Decimal     `db:"total_amount"`
}
