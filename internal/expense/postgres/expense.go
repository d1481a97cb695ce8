package postgres

import (
	"context"
	"errors"
	"time"

	appErrors "github.com/frahmantamala/expense-reports/internal"
	expenseDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/expense"
	reportDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/report"
	"github.com/frahmantamala/expense-reports/internal/expense"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExpenseRepository implements expense.RepositoryAPI using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*expenseDatamodel.Expense, error) {
	var exp expenseDatamodel.Expense
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&exp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrExpenseNotFound
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepository) ListByReportID(ctx context.Context, reportID string) ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("expense_date ASC").
		Order("created_at ASC").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) Create(ctx context.Context, exp *expenseDatamodel.Expense) error {
	return r.db.WithContext(ctx).Create(exp).Error
}

func (r *ExpenseRepository) Update(ctx context.Context, exp *expenseDatamodel.Expense) error {
	exp.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&expenseDatamodel.Expense{}).
		Where("id = ?", exp.ID).
		Updates(map[string]interface{}{
			"category":     exp.Category,
			"expense_name": exp.ExpenseName,
			"description":  exp.Description,
			"amount":       exp.Amount,
			"expense_date": exp.ExpenseDate,
			"updated_at":   exp.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrExpenseNotFound
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&expenseDatamodel.Expense{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrExpenseNotFound
	}
	return nil
}

func (r *ExpenseRepository) SumAmountsByReportID(ctx context.Context, reportID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&expenseDatamodel.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("report_id = ?", reportID).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// ReportStore is the report side of the aggregation.
type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) expense.ReportStore {
	return &ReportStore{db: db}
}

func (s *ReportStore) FindByID(ctx context.Context, id string) (*reportDatamodel.Report, error) {
	var rep reportDatamodel.Report
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rep).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrReportNotFound
		}
		return nil, err
	}
	return &rep, nil
}

func (s *ReportStore) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	result := s.db.WithContext(ctx).
		Model(&reportDatamodel.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_amount": total,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrReportNotFound
	}
	return nil
}

// Transactor runs expense writes and the total recomputation in one
// transaction that holds SELECT ... FOR UPDATE on the report row, so writers to
// the same report queue up behind each other.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) expense.Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinReport(ctx context.Context, reportID string, fn func(report *reportDatamodel.Report, uow expense.UnitOfWork) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rep reportDatamodel.Report
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", reportID).First(&rep).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return appErrors.ErrReportNotFound
			}
			return err
		}

		return fn(&rep, expense.UnitOfWork{
			Expenses: NewExpenseRepository(tx),
			Reports:  NewReportStore(tx),
		})
	})
}
