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

func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (
			id, user_id, file_name, file_path, record_type, record_date,
			provider, description, tags, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.FileName,
		record.FilePath,
		record.RecordType,
		record.RecordDate,
		record.Provider,
		record.Description,
		record.Tags,
		record.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (r *medicalRecordRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.MedicalRecord, error) {
	query := `
		SELECT id, user_id, file_name, file_path, record_type, record_date,
			   provider, description, tags, uploaded_at
		FROM medical_records
		WHERE id = $1 AND user_id = $2
	`
	var record model.MedicalRecord
	err := r.db.GetContext(ctx, &record, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("medical record", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return &record, nil
}

func (r *medicalRecordRepository) List(ctx context.Context, userID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error) {
	query := `
		SELECT id, user_id, file_name, file_path, record_type, record_date,
			   provider, description, tags, uploaded_at
		FROM medical_records
		WHERE user_id = $1
	`
	args := []interface{}{userID}

	if filters != nil && filters.RecordType != "" {
		args = append(args, filters.RecordType)
		query += fmt.Sprintf(" AND record_type = $%d", len(args))
	}
	if filters != nil && filters.Tag != "" {
		// Tags are stored as a comma-joined string; match whole tags only.
		args = append(args, filters.Tag)
		query += fmt.Sprintf(" AND $%d = ANY(string_to_array(tags, ','))", len(args))
	}
	query += " ORDER BY uploaded_at DESC"

	var records []*model.MedicalRecord
	err := r.db.SelectContext(ctx, &records, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

func (r *medicalRecordRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		DELETE FROM medical_records
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete medical record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("medical record", nil)
	}

	return nil
}
