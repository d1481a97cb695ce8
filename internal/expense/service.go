package expense

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/expense-reports/internal"
	expenseDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/expense"
	reportDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/report"
	"github.com/frahmantamala/expense-reports/internal/core/events"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	"github.com/frahmantamala/expense-reports/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	TriggerCreate    = "create_expense"
	TriggerUpdate    = "update_expense"
	TriggerRemove    = "remove_expense"
	TriggerRecompute = "recalculate"
)

// RepositoryAPI is the expense store. GetByID returns errors.ErrExpenseNotFound
// for unknown ids.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id string) (*expenseDatamodel.Expense, error)
	ListByReportID(ctx context.Context, reportID string) ([]*expenseDatamodel.Expense, error)
	Create(ctx context.Context, expense *expenseDatamodel.Expense) error
	Update(ctx context.Context, expense *expenseDatamodel.Expense) error
	Delete(ctx context.Context, id string) error
	// SumAmountsByReportID is zero when the report has no expenses.
	SumAmountsByReportID(ctx context.Context, reportID string) (decimal.Decimal, error)
}

// ReportStore is the slice of the report store the aggregation needs.
type ReportStore interface {
	FindByID(ctx context.Context, id string) (*reportDatamodel.Report, error)
	UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error
}

// UnitOfWork exposes stores bound to one open transaction.
type UnitOfWork struct {
	Expenses RepositoryAPI
	Reports  ReportStore
}

type Transactor interface {
	// WithinReport locks the report row and runs fn in a single transaction.
	// A non-nil error from fn rolls back every write made through uow.
	// It returns errors.ErrReportNotFound when the report does not exist.
	WithinReport(ctx context.Context, reportID string, fn func(report *reportDatamodel.Report, uow UnitOfWork) error) error
}

type Service struct {
	expenses  RepositoryAPI
	reports   ReportStore
	tx        Transactor
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(expenses RepositoryAPI, reports ReportStore, tx Transactor, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		expenses:  expenses,
		reports:   reports,
		tx:        tx,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) CreateExpense(ctx context.Context, dto CreateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.log(ctx).Warn("expense validation failed", "error", err, "report_id", dto.ReportID)
		return nil, err
	}

	expense := NewExpense(dto)
	var total decimal.Decimal

	err := s.tx.WithinReport(ctx, dto.ReportID, func(report *reportDatamodel.Report, uow UnitOfWork) error {
		if !reportstatus.CanModify(report.Status) {
			return errors.NewNotModifiableError(report.Status.String())
		}
		if err := uow.Expenses.Create(ctx, ToDataModel(expense)); err != nil {
			return err
		}
		var err error
		total, err = s.recalculate(ctx, uow, report.ID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "failed to create expense", err, "report_id", dto.ReportID)
		return nil, errors.WrapStorage(err, "failed to create expense")
	}

	s.log(ctx).Info("expense created",
		"expense_id", expense.ID,
		"report_id", expense.ReportID,
		"amount", expense.Amount.StringFixed(2),
		"report_total", total.StringFixed(2))
	s.publishTotal(ctx, expense.ReportID, total, TriggerCreate)
	return expense, nil
}

// UpdateExpense applies the present patch fields. The report total is only
// recomputed when the amount actually changes.
func (s *Service) UpdateExpense(ctx context.Context, id string, patch UpdateExpenseDTO) (*Expense, error) {
	if err := patch.Validate(); err != nil {
		s.log(ctx).Warn("expense update validation failed", "error", err, "expense_id", id)
		return nil, err
	}

	existing, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		s.logFailure(ctx, "failed to get expense", err, "expense_id", id)
		return nil, errors.WrapStorage(err, "failed to get expense")
	}

	var (
		updated       *Expense
		total         decimal.Decimal
		amountChanged bool
	)
	err = s.tx.WithinReport(ctx, existing.ReportID, func(report *reportDatamodel.Report, uow UnitOfWork) error {
		if !reportstatus.CanModify(report.Status) {
			return errors.NewNotModifiableError(report.Status.String())
		}

		// re-read under the report lock
		current, err := uow.Expenses.GetByID(ctx, id)
		if err != nil {
			return err
		}
		updated = FromDataModel(current)
		amountChanged = updated.Apply(patch)

		if err := uow.Expenses.Update(ctx, ToDataModel(updated)); err != nil {
			return err
		}
		if !amountChanged {
			return nil
		}
		total, err = s.recalculate(ctx, uow, report.ID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "failed to update expense", err, "expense_id", id, "report_id", existing.ReportID)
		return nil, errors.WrapStorage(err, "failed to update expense")
	}

	s.log(ctx).Info("expense updated", "expense_id", id, "report_id", updated.ReportID, "amount_changed", amountChanged)
	if amountChanged {
		s.publishTotal(ctx, updated.ReportID, total, TriggerUpdate)
	}
	return updated, nil
}

func (s *Service) RemoveExpense(ctx context.Context, id string) error {
	existing, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		s.logFailure(ctx, "failed to get expense", err, "expense_id", id)
		return errors.WrapStorage(err, "failed to get expense")
	}

	var total decimal.Decimal
	err = s.tx.WithinReport(ctx, existing.ReportID, func(report *reportDatamodel.Report, uow UnitOfWork) error {
		if !reportstatus.CanModify(report.Status) {
			return errors.NewNotModifiableError(report.Status.String())
		}
		if err := uow.Expenses.Delete(ctx, id); err != nil {
			return err
		}
		var err error
		total, err = s.recalculate(ctx, uow, report.ID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "failed to remove expense", err, "expense_id", id, "report_id", existing.ReportID)
		return errors.WrapStorage(err, "failed to remove expense")
	}

	s.log(ctx).Info("expense removed", "expense_id", id, "report_id", existing.ReportID, "report_total", total.StringFixed(2))
	s.publishTotal(ctx, existing.ReportID, total, TriggerRemove)
	return nil
}

// RecalculateTotal rewrites the report total from its current expenses. It is
// bookkeeping, so it runs whatever the report status is.
func (s *Service) RecalculateTotal(ctx context.Context, reportID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.tx.WithinReport(ctx, reportID, func(report *reportDatamodel.Report, uow UnitOfWork) error {
		var err error
		total, err = s.recalculate(ctx, uow, report.ID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "failed to recalculate report total", err, "report_id", reportID)
		return decimal.Zero, errors.WrapStorage(err, "failed to recalculate report total")
	}

	s.publishTotal(ctx, reportID, total, TriggerRecompute)
	return total, nil
}

func (s *Service) GetExpense(ctx context.Context, id string) (*Expense, error) {
	data, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		s.logFailure(ctx, "failed to get expense", err, "expense_id", id)
		return nil, errors.WrapStorage(err, "failed to get expense")
	}
	return FromDataModel(data), nil
}

func (s *Service) ListByReport(ctx context.Context, reportID string) ([]*Expense, error) {
	if _, err := s.reports.FindByID(ctx, reportID); err != nil {
		s.logFailure(ctx, "failed to get report", err, "report_id", reportID)
		return nil, errors.WrapStorage(err, "failed to get report")
	}

	data, err := s.expenses.ListByReportID(ctx, reportID)
	if err != nil {
		s.log(ctx).Error("failed to list expenses", "error", err, "report_id", reportID)
		return nil, errors.WrapStorage(err, "failed to list expenses")
	}
	return FromDataModelSlice(data), nil
}

func (s *Service) recalculate(ctx context.Context, uow UnitOfWork, reportID string) (decimal.Decimal, error) {
	sum, err := uow.Expenses.SumAmountsByReportID(ctx, reportID)
	if err != nil {
		return decimal.Zero, err
	}
	total := sum.Round(2)
	if err := uow.Reports.UpdateTotal(ctx, reportID, total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (s *Service) publishTotal(ctx context.Context, reportID string, total decimal.Decimal, trigger string) {
	if s.publisher == nil {
		return
	}
	event := events.NewReportTotalRecalculatedEvent(reportID, total.StringFixed(2), trigger)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log(ctx).Error("failed to publish total recalculation", "error", err, "report_id", reportID)
	}
}

// logFailure logs domain rejections at warn and everything else at error.
func (s *Service) logFailure(ctx context.Context, msg string, err error, args ...interface{}) {
	args = append(args, "error", err)
	if appErr, ok := errors.IsAppError(err); ok && appErr.Type != errors.ErrorTypeInternal {
		s.log(ctx).Warn(msg, args...)
		return
	}
	s.log(ctx).Error(msg, args...)
}

// log returns the service logger with the request's bound fields.
func (s *Service) log(ctx context.Context) *slog.Logger {
	return logger.Bind(ctx, s.logger)
}
