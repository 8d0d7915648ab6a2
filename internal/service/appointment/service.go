package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/model"
	"github.com/medassist/assistant-api/internal/repository"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
	"github.com/medassist/assistant-api/pkg/validator"
)

type Service struct {
	repo     repository.AppointmentRepository
	validate *validator.Validator
}

func NewService(repo repository.AppointmentRepository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// validateSlot checks a date/time pair against the legacy layouts.
func (s *Service) validateSlot(date, clock string) error {
	if err := s.validate.Var(date, "legacydate"); err != nil {
		return err
	}
	return s.validate.Var(clock, "legacytime")
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := s.validateSlot(req.Date, req.Time); err != nil {
		return nil, err
	}

	reminder := true
	if req.Reminder != nil {
		reminder = *req.Reminder
	}

	apt := &model.Appointment{
		ID:       uuid.New(),
		UserID:   userID,
		Date:     req.Date,
		Time:     req.Time,
		Doctor:   req.Doctor,
		Type:     req.Type,
		Notes:    req.Notes,
		Reminder: reminder,
		Status:   model.AppointmentStatusScheduled,
	}
	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.UserID != userID {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		if err := s.validate.Var(*req.Date, "legacydate"); err != nil {
			return nil, err
		}
		apt.Date = *req.Date
	}
	if req.Time != nil {
		if err := s.validate.Var(*req.Time, "legacytime"); err != nil {
			return nil, err
		}
		apt.Time = *req.Time
	}
	if req.Doctor != nil {
		apt.Doctor = *req.Doctor
	}
	if req.Type != nil {
		apt.Type = *req.Type
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}
	if req.Reminder != nil {
		apt.Reminder = *req.Reminder
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, apperrors.NewValidation(fmt.Sprintf("unknown status %q", *req.Status), nil)
		}
		apt.Status = *req.Status
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

// Cancel marks an appointment cancelled. Completed appointments cannot
// be cancelled and cancelling twice is a conflict.
func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	switch apt.Status {
	case model.AppointmentStatusCompleted:
		return nil, apperrors.NewConflict("completed appointment cannot be cancelled", nil)
	case model.AppointmentStatusCancelled:
		return nil, apperrors.NewConflict("appointment is already cancelled", nil)
	}

	apt.Status = model.AppointmentStatusCancelled
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

// Reschedule moves an active appointment to a new date/time slot.
func (s *Service) Reschedule(ctx context.Context, userID, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	if err := s.validateSlot(req.Date, req.Time); err != nil {
		return nil, err
	}

	apt, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	switch apt.Status {
	case model.AppointmentStatusCompleted:
		return nil, apperrors.NewConflict("completed appointment cannot be rescheduled", nil)
	case model.AppointmentStatusCancelled:
		return nil, apperrors.NewConflict("cancelled appointment cannot be rescheduled", nil)
	}

	apt.Date = req.Date
	apt.Time = req.Time
	apt.Status = model.AppointmentStatusRescheduled
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func validStatus(status model.AppointmentStatus) bool {
	switch status {
	case model.AppointmentStatusScheduled,
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusRescheduled:
		return true
	}
	return false
}
