package record

import (
	"context"

	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/model"
	"github.com/medassist/assistant-api/internal/repository"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
	"github.com/medassist/assistant-api/pkg/security"
	"github.com/medassist/assistant-api/pkg/validator"
)

// Service manages medical record metadata. Descriptions are encrypted
// at rest; all other columns stay queryable plaintext.
type Service struct {
	repo      repository.MedicalRecordRepository
	encryptor security.Encryptor
	validate  *validator.Validator
}

func NewService(repo repository.MedicalRecordRepository, encryptor security.Encryptor) *Service {
	return &Service{repo: repo, encryptor: encryptor, validate: validator.New()}
}

func (s *Service) Add(ctx context.Context, userID uuid.UUID, req *model.AddRecordRequest) (*model.MedicalRecord, error) {
	if err := s.validate.Var(req.RecordDate, "legacydate"); err != nil {
		return nil, err
	}

	description := req.Description
	if s.encryptor != nil {
		encrypted, err := security.EncryptString(s.encryptor, description)
		if err != nil {
			return nil, apperrors.NewInternal(err)
		}
		description = encrypted
	}

	record := &model.MedicalRecord{
		ID:          uuid.New(),
		UserID:      userID,
		FileName:    req.FileName,
		FilePath:    req.FilePath,
		RecordType:  req.RecordType,
		RecordDate:  req.RecordDate,
		Provider:    req.Provider,
		Description: description,
		Tags:        model.JoinTags(req.Tags),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	record.Description = req.Description
	return record, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*model.MedicalRecord, error) {
	record, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.decrypt(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error) {
	records, err := s.repo.List(ctx, userID, filters)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := s.decrypt(record); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) decrypt(record *model.MedicalRecord) error {
	if s.encryptor == nil {
		return nil
	}
	plaintext, err := security.DecryptString(s.encryptor, record.Description)
	if err != nil {
		return apperrors.NewInternal(err)
	}
	record.Description = plaintext
	return nil
}
