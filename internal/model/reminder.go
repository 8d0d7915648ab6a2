package model

import (
	"time"

	"github.com/google/uuid"
)

// Reminder schedules a single medication dose. Date and Time keep the
// legacy string formats (DD-MM-YYYY, HH:MM at minute granularity);
// NotifiedAt records first delivery so an overdue reminder fires once.
type Reminder struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UserID       uuid.UUID  `db:"user_id" json:"user_id"`
	MedicationID uuid.UUID  `db:"medication_id" json:"medication_id"`
	Dose         string     `db:"dose" json:"dose"`
	Date         string     `db:"date" json:"date"`
	Time         string     `db:"time" json:"time"`
	Frequency    string     `db:"frequency" json:"frequency"`
	NotifiedAt   *time.Time `db:"notified_at" json:"notified_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// ReminderWithMedication is the list/due-check projection joined with
// the medication name.
type ReminderWithMedication struct {
	Reminder
	MedicationName string `db:"medication_name" json:"medication_name"`
}

type CreateReminderRequest struct {
	MedicationName string `json:"medication_name" binding:"required"`
	Dose           string `json:"dose" binding:"required"`
	Date           string `json:"date" binding:"required"`
	Time           string `json:"time" binding:"required"`
	Frequency      string `json:"frequency"`
}

// DeleteReminderByContentRequest matches the legacy content-based
// deletion used before reminders had surrogate identity.
type DeleteReminderByContentRequest struct {
	MedicationName string `json:"medication_name" binding:"required"`
	Dose           string `json:"dose" binding:"required"`
	Date           string `json:"date" binding:"required"`
	Time           string `json:"time" binding:"required"`
}
