package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/expense-reports/internal"
	reportDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/report"
	"github.com/frahmantamala/expense-reports/internal/core/date"
	"github.com/frahmantamala/expense-reports/internal/core/events"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	"github.com/frahmantamala/expense-reports/pkg/logger"
	"github.com/shopspring/decimal"
)

// RepositoryAPI is the report store. Writes that race with a status change
// return errors.ErrReportStatusChanged instead of touching the row.
type RepositoryAPI interface {
	Create(ctx context.Context, report *reportDatamodel.Report) error
	GetByID(ctx context.Context, id string) (*reportDatamodel.Report, error)
	List(ctx context.Context, filter ListFilter) ([]*reportDatamodel.Report, error)
	UpdateFields(ctx context.Context, id string, purpose *string, reportDate *date.Date) error
	UpdateStatus(ctx context.Context, id string, from, to reportstatus.Status, paymentDate *date.Date) error
	// Delete removes a CREATED report with its expenses and attachment rows,
	// returning the stored paths of the removed attachments.
	Delete(ctx context.Context, id string) ([]string, error)
}

type SummaryReader interface {
	Summary(ctx context.Context, userID int64) ([]reportDatamodel.StatusSummary, error)
}

type UserFinder interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

type FileRemover interface {
	Delete(ctx context.Context, path string) error
}

type Service struct {
	repo      RepositoryAPI
	summaries SummaryReader
	users     UserFinder
	files     FileRemover
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, summaries SummaryReader, users UserFinder, files FileRemover, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		summaries: summaries,
		users:     users,
		files:     files,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) CreateReport(ctx context.Context, userID int64, dto CreateReportDTO) (*Report, error) {
	if err := dto.Validate(); err != nil {
		s.log(ctx).Warn("report validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		s.log(ctx).Error("failed to look up report owner", "error", err, "user_id", userID)
		return nil, errors.WrapStorage(err, "failed to create report")
	}
	if !exists {
		return nil, errors.ErrUserNotFound
	}

	report := NewReport(userID, dto)
	if err := s.repo.Create(ctx, ToDataModel(report)); err != nil {
		s.log(ctx).Error("failed to create report", "error", err, "user_id", userID)
		return nil, errors.WrapStorage(err, "failed to create report")
	}

	s.log(ctx).Info("report created", "report_id", report.ID, "user_id", userID)
	return report, nil
}

func (s *Service) GetReport(ctx context.Context, id string) (*Report, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeReportNotFound) {
			s.log(ctx).Error("failed to get report", "error", err, "report_id", id)
		}
		return nil, errors.WrapStorage(err, "failed to get report")
	}
	return FromDataModel(data), nil
}

func (s *Service) ListReports(ctx context.Context, filter ListFilter) ([]*Report, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	data, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log(ctx).Error("failed to list reports", "error", err)
		return nil, errors.WrapStorage(err, "failed to list reports")
	}
	return FromDataModelSlice(data), nil
}

// UpdateReportFields edits purpose and report date. Status and total are never touched here.
func (s *Service) UpdateReportFields(ctx context.Context, id string, dto UpdateReportDTO) (*Report, error) {
	if err := dto.Validate(); err != nil {
		s.log(ctx).Warn("report update validation failed", "error", err, "report_id", id)
		return nil, err
	}

	current, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.CanModify() {
		s.log(ctx).Warn("report not modifiable", "report_id", id, "status", current.Status)
		return nil, errors.NewNotModifiableError(current.Status.String())
	}
	if dto.IsEmpty() {
		return current, nil
	}

	if err := s.repo.UpdateFields(ctx, id, dto.Purpose, dto.ReportDate); err != nil {
		s.log(ctx).Error("failed to update report", "error", err, "report_id", id)
		return nil, errors.WrapStorage(err, "failed to update report")
	}

	s.log(ctx).Info("report updated", "report_id", id)
	return s.GetReport(ctx, id)
}

func (s *Service) DeleteReport(ctx context.Context, id string) error {
	current, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}
	if !current.CanDelete() {
		s.log(ctx).Warn("report not deletable", "report_id", id, "status", current.Status)
		return errors.NewNotDeletableError(current.Status.String())
	}

	paths, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log(ctx).Error("failed to delete report", "error", err, "report_id", id)
		return errors.WrapStorage(err, "failed to delete report")
	}

	// rows are gone at this point, a leftover file is only logged
	for _, path := range paths {
		if err := s.files.Delete(ctx, path); err != nil {
			s.log(ctx).Warn("failed to remove attachment file", "error", err, "report_id", id, "path", path)
		}
	}

	s.log(ctx).Info("report deleted", "report_id", id, "attachments_removed", len(paths))
	return nil
}

func (s *Service) Submit(ctx context.Context, id string) (*Report, error) {
	return s.transition(ctx, id, reportstatus.Submitted)
}

func (s *Service) Validate(ctx context.Context, id string) (*Report, error) {
	return s.transition(ctx, id, reportstatus.Validated)
}

func (s *Service) Reject(ctx context.Context, id string) (*Report, error) {
	return s.transition(ctx, id, reportstatus.Rejected)
}

// Pay moves the report to PAID and stamps today's payment date in the same write.
func (s *Service) Pay(ctx context.Context, id string) (*Report, error) {
	return s.transition(ctx, id, reportstatus.Paid)
}

// Reopen sends a rejected report back to CREATED for another round.
func (s *Service) Reopen(ctx context.Context, id string) (*Report, error) {
	return s.transition(ctx, id, reportstatus.Created)
}

func (s *Service) transition(ctx context.Context, id string, target reportstatus.Status) (*Report, error) {
	current, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if !reportstatus.CanTransitionTo(current.Status, target) {
		s.log(ctx).Warn("illegal report transition",
			"report_id", id,
			"from", current.Status,
			"to", target)
		return nil, errors.NewInvalidTransitionError(current.Status.String(), target.String())
	}

	var paymentDate *date.Date
	if target == reportstatus.Paid {
		today := date.Today()
		paymentDate = &today
	}

	if err := s.repo.UpdateStatus(ctx, id, current.Status, target, paymentDate); err != nil {
		s.log(ctx).Error("failed to update report status", "error", err, "report_id", id, "to", target)
		return nil, errors.WrapStorage(err, "failed to update report status")
	}

	s.log(ctx).Info("report status changed", "report_id", id, "from", current.Status, "to", target)
	s.publishStatusChanged(ctx, current, target, paymentDate)

	return s.GetReport(ctx, id)
}

func (s *Service) publishStatusChanged(ctx context.Context, r *Report, to reportstatus.Status, paymentDate *date.Date) {
	if s.publisher == nil {
		return
	}
	var paidAt *time.Time
	if paymentDate != nil {
		t := paymentDate.Time
		paidAt = &t
	}
	event := events.NewReportStatusChangedEvent(r.ID, r.UserID, r.Status.String(), to.String(), paidAt)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log(ctx).Error("failed to publish status change", "error", err, "report_id", r.ID)
	}
}

// Summary returns one row per status for the user, zero-filled for statuses
// the user has no reports in.
func (s *Service) Summary(ctx context.Context, userID int64) (*SummaryResponse, error) {
	rows, err := s.summaries.Summary(ctx, userID)
	if err != nil {
		s.log(ctx).Error("failed to summarize reports", "error", err, "user_id", userID)
		return nil, errors.WrapStorage(err, "failed to summarize reports")
	}

	byStatus := make(map[reportstatus.Status]reportDatamodel.StatusSummary, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row
	}

	response := &SummaryResponse{UserID: userID}
	for _, status := range reportstatus.All() {
		row, ok := byStatus[status]
		total := decimal.Zero
		if ok {
			total = row.TotalAmount.Round(2)
		}
		response.Statuses = append(response.Statuses, StatusSummaryResponse{
			Status:      status,
			Count:       row.Count,
			TotalAmount: json.Number(total.StringFixed(2)),
		})
	}
	return response, nil
}

// log returns the service logger with the request's bound fields.
func (s *Service) log(ctx context.Context) *slog.Logger {
	return logger.Bind(ctx, s.logger)
}
