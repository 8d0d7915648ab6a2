package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "Scheduled"
	AppointmentStatusConfirmed   AppointmentStatus = "Confirmed"
	AppointmentStatusCompleted   AppointmentStatus = "Completed"
	AppointmentStatusCancelled   AppointmentStatus = "Cancelled"
	AppointmentStatusRescheduled AppointmentStatus = "Rescheduled"
)

type Appointment struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	UserID    uuid.UUID         `db:"user_id" json:"user_id"`
	Date      string            `db:"date" json:"date"`
	Time      string            `db:"time" json:"time"`
	Doctor    string            `db:"doctor" json:"doctor"`
	Type      string            `db:"type" json:"type"`
	Notes     string            `db:"notes" json:"notes,omitempty"`
	Reminder  bool              `db:"reminder" json:"reminder"`
	Status    AppointmentStatus `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

type CreateAppointmentRequest struct {
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
	Doctor   string `json:"doctor" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Notes    string `json:"notes" binding:"max=1000"`
	Reminder *bool  `json:"reminder"`
}

type UpdateAppointmentRequest struct {
	Date     *string            `json:"date"`
	Time     *string            `json:"time"`
	Doctor   *string            `json:"doctor"`
	Type     *string            `json:"type"`
	Notes    *string            `json:"notes"`
	Reminder *bool              `json:"reminder"`
	Status   *AppointmentStatus `json:"status"`
}

type RescheduleAppointmentRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}
