package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/model"
)

func (r *healthReadingRepository) Create(ctx context.Context, reading *model.HealthReading) error {
	query := `
		INSERT INTO health_readings (
			id, user_id, reading_type, value, notes, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	if reading.RecordedAt.IsZero() {
		reading.RecordedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		reading.ID,
		reading.UserID,
		reading.ReadingType,
		reading.Value,
		reading.Notes,
		reading.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create health reading: %w", err)
	}
	return nil
}

func (r *healthReadingRepository) ListForUser(ctx context.Context, userID uuid.UUID, readingType string, limit int) ([]*model.HealthReading, error) {
	query := `
		SELECT id, user_id, reading_type, value, notes, recorded_at
		FROM health_readings
		WHERE user_id = $1
		  AND ($2 = '' OR reading_type = $2)
		ORDER BY recorded_at DESC
		LIMIT $3
	`
	if limit <= 0 {
		limit = 100
	}

	var readings []*model.HealthReading
	err := r.db.SelectContext(ctx, &readings, query, userID, readingType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list health readings: %w", err)
	}
	return readings, nil
}
