package attachment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/expense-reports/internal"
	attachmentDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/attachment"
	expenseDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-reports/pkg/logger"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	Create(ctx context.Context, attachment *attachmentDatamodel.Attachment) error
	GetByID(ctx context.Context, id string) (*attachmentDatamodel.Attachment, error)
	ListByExpenseID(ctx context.Context, expenseID string) ([]*attachmentDatamodel.Attachment, error)
	Delete(ctx context.Context, id string) error
}

// ExpenseFinder returns errors.ErrExpenseNotFound for unknown ids.
type ExpenseFinder interface {
	GetByID(ctx context.Context, id string) (*expenseDatamodel.Expense, error)
}

type UploadInput struct {
	ExpenseID string
	FileName  string
	MimeType  string
	Content   io.Reader
}

type Service struct {
	repo     RepositoryAPI
	expenses ExpenseFinder
	storage  FileStorage
	maxBytes int64
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, expenses ExpenseFinder, storage FileStorage, maxBytes int64, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		expenses: expenses,
		storage:  storage,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

func (s *Service) Upload(ctx context.Context, in UploadInput) (*Attachment, error) {
	if in.FileName == "" {
		return nil, errors.NewValidationFieldError("file", "file name is required", errors.ErrCodeValidationFailed)
	}
	if _, err := s.expenses.GetByID(ctx, in.ExpenseID); err != nil {
		s.log(ctx).Warn("attachment upload for unknown expense", "error", err, "expense_id", in.ExpenseID)
		return nil, errors.WrapStorage(err, "failed to get expense")
	}

	// read one byte past the limit so an oversized upload is detectable
	stored, err := s.storage.Store(ctx, in.ExpenseID, in.FileName, io.LimitReader(in.Content, s.maxBytes+1))
	if err != nil {
		s.log(ctx).Error("failed to store attachment", "error", err, "expense_id", in.ExpenseID)
		return nil, errors.NewInternalError("failed to store attachment", err)
	}
	if stored.Size > s.maxBytes {
		s.discard(ctx, stored.Path)
		return nil, errors.NewValidationError(
			fmt.Sprintf("file exceeds the %d byte upload limit", s.maxBytes),
			errors.ErrCodeFileTooLarge,
		)
	}

	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	att := &Attachment{
		ID:        uuid.New().String(),
		ExpenseID: in.ExpenseID,
		FileName:  stored.Name,
		FilePath:  stored.Path,
		MimeType:  mimeType,
		Size:      stored.Size,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, ToDataModel(att)); err != nil {
		s.discard(ctx, stored.Path)
		s.log(ctx).Error("failed to save attachment", "error", err, "expense_id", in.ExpenseID)
		return nil, errors.WrapStorage(err, "failed to save attachment")
	}

	s.log(ctx).Info("attachment uploaded",
		"attachment_id", att.ID,
		"expense_id", att.ExpenseID,
		"size", att.Size)
	return att, nil
}

func (s *Service) ListByExpense(ctx context.Context, expenseID string) ([]*Attachment, error) {
	if _, err := s.expenses.GetByID(ctx, expenseID); err != nil {
		return nil, errors.WrapStorage(err, "failed to get expense")
	}
	data, err := s.repo.ListByExpenseID(ctx, expenseID)
	if err != nil {
		s.log(ctx).Error("failed to list attachments", "error", err, "expense_id", expenseID)
		return nil, errors.WrapStorage(err, "failed to list attachments")
	}

	attachments := make([]*Attachment, len(data))
	for i, a := range data {
		attachments[i] = FromDataModel(a)
	}
	return attachments, nil
}

func (s *Service) GetAttachment(ctx context.Context, id string) (*Attachment, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.WrapStorage(err, "failed to get attachment")
	}
	return FromDataModel(data), nil
}

// Open returns the attachment metadata and its content. The caller closes the reader.
func (s *Service) Open(ctx context.Context, id string) (*Attachment, io.ReadCloser, error) {
	att, err := s.GetAttachment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.storage.Open(ctx, att.FilePath)
	if err != nil {
		s.log(ctx).Error("attachment file unreadable", "error", err, "attachment_id", id, "path", att.FilePath)
		return nil, nil, errors.NewInternalError("failed to read attachment", err)
	}
	return att, content, nil
}

// Delete removes the row first, then the file. A file that is already gone is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	att, err := s.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log(ctx).Error("failed to delete attachment", "error", err, "attachment_id", id)
		return errors.WrapStorage(err, "failed to delete attachment")
	}
	s.discard(ctx, att.FilePath)

	s.log(ctx).Info("attachment deleted", "attachment_id", id, "expense_id", att.ExpenseID)
	return nil
}

func (s *Service) discard(ctx context.Context, path string) {
	if err := s.storage.Delete(ctx, path); err != nil {
		s.log(ctx).Warn("failed to remove attachment file", "error", err, "path", path)
	}
}

// log returns the service logger with the request's bound fields.
func (s *Service) log(ctx context.Context) *slog.Logger {
	return logger.Bind(ctx, s.logger)
}
