package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
		List(ctx context.Context) ([]*model.User, error)
	}

	MedicationRepository interface {
		Create(ctx context.Context, medication *model.Medication) error
		Get(ctx context.Context, id uuid.UUID) (*model.Medication, error)
		GetByName(ctx context.Context, name string) (*model.Medication, error)
		List(ctx context.Context) ([]*model.Medication, error)
		Search(ctx context.Context, term string) ([]*model.Medication, error)
		Count(ctx context.Context) (int, error)
	}

	ReminderRepository interface {
		Create(ctx context.Context, reminder *model.Reminder) error
		Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error)
		ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.ReminderWithMedication, error)
		Delete(ctx context.Context, userID, id uuid.UUID) error
		DeleteByContent(ctx context.Context, userID, medicationID uuid.UUID, dose, date, clock string) (int64, error)
		// ListDue returns unnotified reminders on the given date whose
		// time-of-day is at or before clock (overdue-inclusive).
		ListDue(ctx context.Context, userID uuid.UUID, date, clock string) ([]*model.ReminderWithMedication, error)
		// ListUpcoming returns reminders on the given date strictly after
		// from and at or before to.
		ListUpcoming(ctx context.Context, userID uuid.UUID, date, from, to string) ([]*model.ReminderWithMedication, error)
		MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error)
		// ListUpcoming returns reminder-flagged, still-active appointments
		// on the given date with time in (from, to].
		ListUpcoming(ctx context.Context, userID uuid.UUID, date, from, to string) ([]*model.Appointment, error)
	}

	CartRepository interface {
		GetLine(ctx context.Context, userID, medicationID uuid.UUID) (*model.CartItem, error)
		GetLineByID(ctx context.Context, userID, lineID uuid.UUID) (*model.CartItem, error)
		ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.CartLine, error)
		CreateLine(ctx context.Context, item *model.CartItem) error
		UpdateLine(ctx context.Context, item *model.CartItem) error
		DeleteLine(ctx context.Context, userID, lineID uuid.UUID) error
		Clear(ctx context.Context, userID uuid.UUID) error
		// Checkout re-validates every line against current stock,
		// decrements and clears the cart in a single transaction.
		Checkout(ctx context.Context, userID uuid.UUID) (*model.Receipt, error)
	}

	HealthReadingRepository interface {
		Create(ctx context.Context, reading *model.HealthReading) error
		ListForUser(ctx context.Context, userID uuid.UUID, readingType string, limit int) ([]*model.HealthReading, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
		MarkRead(ctx context.Context, userID, id uuid.UUID) error
		MarkAllRead(ctx context.Context, userID uuid.UUID) error
		Delete(ctx context.Context, userID, id uuid.UUID) error
		Clear(ctx context.Context, userID uuid.UUID) error
		DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		Get(ctx context.Context, userID, id uuid.UUID) (*model.MedicalRecord, error)
		List(ctx context.Context, userID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error)
		Delete(ctx context.Context, userID, id uuid.UUID) error
	}
)
