package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/model"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
)

func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	query := `
		INSERT INTO reminders (
			id, user_id, medication_id, dose, date, time, frequency, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	reminder.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.UserID,
		reminder.MedicationID,
		reminder.Dose,
		reminder.Date,
		reminder.Time,
		reminder.Frequency,
		reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (r *reminderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	query := `
		SELECT id, user_id, medication_id, dose, date, time, frequency,
			   notified_at, created_at
		FROM reminders
		WHERE id = $1
	`
	var reminder model.Reminder
	err := r.db.GetContext(ctx, &reminder, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("reminder", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return &reminder, nil
}

func (r *reminderRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.ReminderWithMedication, error) {
	query := `
		SELECT r.id, r.user_id, r.medication_id, r.dose, r.date, r.time,
			   r.frequency, r.notified_at, r.created_at,
			   m.name AS medication_name
		FROM reminders r
		JOIN medications m ON r.medication_id = m.id
		WHERE r.user_id = $1
		ORDER BY r.date ASC, r.time ASC
	`
	var reminders []*model.ReminderWithMedication
	err := r.db.SelectContext(ctx, &reminders, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (r *reminderRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		DELETE FROM reminders
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("reminder", nil)
	}

	return nil
}

// DeleteByContent removes reminders matching the legacy identity tuple.
// Duplicates are possible, so all matches go.
func (r *reminderRepository) DeleteByContent(ctx context.Context, userID, medicationID uuid.UUID, dose, date, clock string) (int64, error) {
	query := `
		DELETE FROM reminders
		WHERE user_id = $1 AND medication_id = $2 AND dose = $3
		  AND date = $4 AND time = $5
	`
	result, err := r.db.ExecContext(ctx, query, userID, medicationID, dose, date, clock)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reminders by content: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

// HH:MM strings compare correctly as text, so the lexicographic
// comparisons below match chronological order within a day.

func (r *reminderRepository) ListDue(ctx context.Context, userID uuid.UUID, date, clock string) ([]*model.ReminderWithMedication, error) {
	query := `
		SELECT r.id, r.user_id, r.medication_id, r.dose, r.date, r.time,
			   r.frequency, r.notified_at, r.created_at,
			   m.name AS medication_name
		FROM reminders r
		JOIN medications m ON r.medication_id = m.id
		WHERE r.user_id = $1 AND r.date = $2 AND r.time <= $3
		  AND r.notified_at IS NULL
		ORDER BY r.time ASC
	`
	var reminders []*model.ReminderWithMedication
	err := r.db.SelectContext(ctx, &reminders, query, userID, date, clock)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return reminders, nil
}

func (r *reminderRepository) ListUpcoming(ctx context.Context, userID uuid.UUID, date, from, to string) ([]*model.ReminderWithMedication, error) {
	query := `
		SELECT r.id, r.user_id, r.medication_id, r.dose, r.date, r.time,
			   r.frequency, r.notified_at, r.created_at,
			   m.name AS medication_name
		FROM reminders r
		JOIN medications m ON r.medication_id = m.id
		WHERE r.user_id = $1 AND r.date = $2 AND r.time > $3 AND r.time <= $4
		ORDER BY r.time ASC
	`
	var reminders []*model.ReminderWithMedication
	err := r.db.SelectContext(ctx, &reminders, query, userID, date, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming reminders: %w", err)
	}
	return reminders, nil
}

func (r *reminderRepository) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE reminders
		SET notified_at = $1
		WHERE id = $2 AND notified_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to mark reminder notified: %w", err)
	}
	return nil
}
