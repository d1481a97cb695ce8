package postgres

import (
	"context"
	"errors"
	"time"

	appErrors "github.com/frahmantamala/expense-reports/internal"
	attachmentDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/attachment"
	expenseDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/expense"
	reportDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/report"
	"github.com/frahmantamala/expense-reports/internal/core/date"
	"github.com/frahmantamala/expense-reports/internal/report"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var modifiableStatuses = []string{string(reportstatus.Created), string(reportstatus.Submitted)}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, rep *reportDatamodel.Report) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*reportDatamodel.Report, error) {
	var rep reportDatamodel.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rep).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrReportNotFound
		}
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepository) List(ctx context.Context, filter report.ListFilter) ([]*reportDatamodel.Report, error) {
	query := r.db.WithContext(ctx).Model(&reportDatamodel.Report{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var reports []*reportDatamodel.Report
	err := query.
		Order("created_at DESC").
		Order("id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&reports).Error
	return reports, err
}

// UpdateFields only matches rows still in a modifiable status.
func (r *ReportRepository) UpdateFields(ctx context.Context, id string, purpose *string, reportDate *date.Date) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if purpose != nil {
		updates["purpose"] = *purpose
	}
	if reportDate != nil {
		updates["report_date"] = *reportDate
	}

	result := r.db.WithContext(ctx).
		Model(&reportDatamodel.Report{}).
		Where("id = ? AND status IN ?", id, modifiableStatuses).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrChanged(ctx, id)
	}
	return nil
}

// UpdateStatus is a compare-and-set on the status column: it only applies when
// the row is still in from.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, from, to reportstatus.Status, paymentDate *date.Date) error {
	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": time.Now(),
	}
	if paymentDate != nil {
		updates["payment_date"] = *paymentDate
	}

	result := r.db.WithContext(ctx).
		Model(&reportDatamodel.Report{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrChanged(ctx, id)
	}
	return nil
}

func (r *ReportRepository) Delete(ctx context.Context, id string) ([]string, error) {
	var paths []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rep reportDatamodel.Report
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&rep).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return appErrors.ErrReportNotFound
			}
			return err
		}
		if !reportstatus.CanDelete(rep.Status) {
			return appErrors.ErrReportStatusChanged
		}

		expenseIDs := tx.Model(&expenseDatamodel.Expense{}).Select("id").Where("report_id = ?", id)

		var attachments []attachmentDatamodel.Attachment
		if err := tx.Where("expense_id IN (?)", expenseIDs).Find(&attachments).Error; err != nil {
			return err
		}
		if len(attachments) > 0 {
			ids := make([]string, len(attachments))
			for i, a := range attachments {
				ids[i] = a.ID
				paths = append(paths, a.FilePath)
			}
			if err := tx.Where("id IN ?", ids).Delete(&attachmentDatamodel.Attachment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("report_id = ?", id).Delete(&expenseDatamodel.Expense{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&reportDatamodel.Report{}).Error
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *ReportRepository) missingOrChanged(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&reportDatamodel.Report{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return appErrors.ErrReportNotFound
	}
	return appErrors.ErrReportStatusChanged
}
