package user

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/expense-reports/internal"
	userDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-reports/pkg/logger"
)

// RepositoryAPI returns errors.ErrUserNotFound for unknown ids.
type RepositoryAPI interface {
	GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error)
	Create(ctx context.Context, user *userDatamodel.User) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		s.log(ctx).Error("failed to get user", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to get user", err)
	}
	return FromDataModel(u), nil
}

// Exists reports whether an active user with the id is on record.
func (s *Service) Exists(ctx context.Context, userID int64) (bool, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.IsActiveUser(), nil
}

// log returns the service logger with the request's bound fields.
func (s *Service) log(ctx context.Context) *slog.Logger {
	return logger.Bind(ctx, s.logger)
}
