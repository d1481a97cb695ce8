package expense

import (
	"time"

	"github.com/frahmantamala/expense-reports/internal/core/date"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          string              `gorm:"type:varchar(36);primaryKey"`
	ReportID    string              `gorm:"column:report_id;type:varchar(36);not null;index"`
	Category    string              `gorm:"column:category;type:varchar(32);not null"`
	ExpenseName *string             `gorm:"column:expense_name"`
	Description *string             `gorm:"column:description"`
	Amount      decimal.Decimal     `gorm:"column:amount;type:decimal(12,2);not null"`
	ExpenseDate date.Date           `gorm:"column:expense_date;type:date;not null"`
	Status      reportstatus.Status `gorm:"column:status;type:varchar(16);not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}
