package notification

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/email"
	"github.com/medassist/assistant-api/internal/model"
	"github.com/medassist/assistant-api/internal/repository"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
	"github.com/medassist/assistant-api/pkg/logger"
)

// Service manages the per-user notification inbox. Email mirroring is
// optional and best effort.
type Service struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(repo repository.NotificationRepository, userRepo repository.UserRepository, emailSvc email.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		emailSvc: emailSvc,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, message string) (*model.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidation("message is required", nil)
	}

	notif := &model.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Message: message,
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		return nil, err
	}

	if s.emailSvc != nil && s.userRepo != nil {
		if user, err := s.userRepo.Get(ctx, userID); err == nil && user.Email != "" {
			if err := s.emailSvc.SendNotification(ctx, user.Email, "Medical Assistant", message); err != nil {
				s.logger.Error(err, "failed to mirror notification to email")
			}
		}
	}

	return notif, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	return s.repo.ListForUser(ctx, userID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) ClearAll(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Clear(ctx, userID)
}
