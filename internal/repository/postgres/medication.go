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

func (r *medicationRepository) Create(ctx context.Context, medication *model.Medication) error {
	query := `
		INSERT INTO medications (
			id, name, price_cents, description, quantity,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	medication.CreatedAt = time.Now()
	medication.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		medication.ID,
		medication.Name,
		medication.PriceCents,
		medication.Description,
		medication.Quantity,
		medication.CreatedAt,
		medication.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	query := `
		SELECT id, name, price_cents, description, quantity, created_at, updated_at
		FROM medications
		WHERE id = $1
	`
	var medication model.Medication
	err := r.db.GetContext(ctx, &medication, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("medication", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return &medication, nil
}

func (r *medicationRepository) GetByName(ctx context.Context, name string) (*model.Medication, error) {
	query := `
		SELECT id, name, price_cents, description, quantity, created_at, updated_at
		FROM medications
		WHERE name = $1
	`
	var medication model.Medication
	err := r.db.GetContext(ctx, &medication, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("medication", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medication by name: %w", err)
	}
	return &medication, nil
}

func (r *medicationRepository) List(ctx context.Context) ([]*model.Medication, error) {
	query := `
		SELECT id, name, price_cents, description, quantity, created_at, updated_at
		FROM medications
		ORDER BY name ASC
	`
	var medications []*model.Medication
	err := r.db.SelectContext(ctx, &medications, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}

func (r *medicationRepository) Search(ctx context.Context, term string) ([]*model.Medication, error) {
	query := `
		SELECT id, name, price_cents, description, quantity, created_at, updated_at
		FROM medications
		WHERE name ILIKE $1
		ORDER BY name ASC
	`
	var medications []*model.Medication
	err := r.db.SelectContext(ctx, &medications, query, "%"+term+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search medications: %w", err)
	}
	return medications, nil
}

func (r *medicationRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM medications`)
	if err != nil {
		return 0, fmt.Errorf("failed to count medications: %w", err)
	}
	return count, nil
}
