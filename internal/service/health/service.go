package health

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/model"
	"github.com/medassist/assistant-api/internal/repository"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
)

const defaultListLimit = 50

type Service struct {
	repo repository.HealthReadingRepository
}

func NewService(repo repository.HealthReadingRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Record(ctx context.Context, userID uuid.UUID, req *model.RecordReadingRequest) (*model.HealthReading, error) {
	readingType := strings.TrimSpace(strings.ToLower(req.ReadingType))
	if readingType == "" {
		return nil, apperrors.NewValidation("reading type is required", nil)
	}

	reading := &model.HealthReading{
		ID:          uuid.New(),
		UserID:      userID,
		ReadingType: readingType,
		Value:       strings.TrimSpace(req.Value),
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, readingType string, limit int) ([]*model.HealthReading, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListForUser(ctx, userID, strings.TrimSpace(strings.ToLower(readingType)), limit)
}

// ClassifyReading buckets a pulse reading; non-pulse or non-numeric
// values have no classification.
func (s *Service) ClassifyReading(reading *model.HealthReading) (model.PulseLevel, bool) {
	if reading.ReadingType != "pulse" {
		return "", false
	}
	bpm, err := strconv.ParseFloat(reading.Value, 64)
	if err != nil {
		return "", false
	}
	return model.ClassifyPulse(bpm), true
}
