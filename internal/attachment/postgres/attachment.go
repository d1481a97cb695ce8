package postgres

import (
	"context"
	"errors"

	appErrors "github.com/frahmantamala/expense-reports/internal"
	"github.com/frahmantamala/expense-reports/internal/attachment"
	attachmentDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/attachment"
	"gorm.io/gorm"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) attachment.RepositoryAPI {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, att *attachmentDatamodel.Attachment) error {
	return r.db.WithContext(ctx).Create(att).Error
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*attachmentDatamodel.Attachment, error) {
	var att attachmentDatamodel.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&att).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &att, nil
}

func (r *AttachmentRepository) ListByExpenseID(ctx context.Context, expenseID string) ([]*attachmentDatamodel.Attachment, error) {
	var attachments []*attachmentDatamodel.Attachment
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Order("created_at ASC").
		Find(&attachments).Error
	return attachments, err
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&attachmentDatamodel.Attachment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrAttachmentNotFound
	}
	return nil
}
