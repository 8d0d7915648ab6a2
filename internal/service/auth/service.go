package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/email"
	"github.com/medassist/assistant-api/internal/model"
	"github.com/medassist/assistant-api/internal/repository"
	"github.com/medassist/assistant-api/pkg/auth"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
	"github.com/medassist/assistant-api/pkg/logger"
	"github.com/medassist/assistant-api/pkg/security"
)

type Service struct {
	repo     repository.UserRepository
	hasher   security.PasswordHasher
	jwt      auth.JWTService
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, jwt auth.JWTService, emailSvc email.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		jwt:      jwt,
		emailSvc: emailSvc,
		logger:   logger,
	}
}

// Register creates an account. Usernames are unique; the welcome mail
// is best effort and never fails the registration.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("username already taken", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.NewValidation("invalid password", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        req.Email,
		Phone:        req.Phone,
		FullName:     req.FullName,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.emailSvc != nil && user.Email != "" {
		if err := s.emailSvc.SendWelcome(ctx, user.Email, user.FullName); err != nil {
			s.logger.Error(err, "failed to send welcome email")
		}
	}

	return user, nil
}

// Login verifies credentials and issues an access token. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}

	token, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.TokenResponse{AccessToken: token}, nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *model.ChangePasswordRequest) error {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperrors.Unauthorized(model.ErrInvalidCredentials)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.NewValidation("invalid new password", err)
	}

	return s.repo.UpdatePassword(ctx, userID, hash)
}
