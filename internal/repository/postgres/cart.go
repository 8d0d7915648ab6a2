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

func (r *cartRepository) GetLine(ctx context.Context, userID, medicationID uuid.UUID) (*model.CartItem, error) {
	query := `
		SELECT id, user_id, medication_id, quantity, price_cents,
			   created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND medication_id = $2
	`
	var item model.CartItem
	err := r.db.GetContext(ctx, &item, query, userID, medicationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("cart line", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart line: %w", err)
	}
	return &item, nil
}

func (r *cartRepository) GetLineByID(ctx context.Context, userID, lineID uuid.UUID) (*model.CartItem, error) {
	query := `
		SELECT id, user_id, medication_id, quantity, price_cents,
			   created_at, updated_at
		FROM cart_items
		WHERE id = $1 AND user_id = $2
	`
	var item model.CartItem
	err := r.db.GetContext(ctx, &item, query, lineID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("cart line", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart line: %w", err)
	}
	return &item, nil
}

func (r *cartRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.CartLine, error) {
	query := `
		SELECT c.id, c.user_id, c.medication_id, c.quantity, c.price_cents,
			   c.created_at, c.updated_at,
			   m.name AS medication_name
		FROM cart_items c
		JOIN medications m ON c.medication_id = m.id
		WHERE c.user_id = $1
		ORDER BY c.created_at ASC
	`
	var lines []*model.CartLine
	err := r.db.SelectContext(ctx, &lines, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	return lines, nil
}

func (r *cartRepository) CreateLine(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (
			id, user_id, medication_id, quantity, price_cents,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.UserID,
		item.MedicationID,
		item.Quantity,
		item.PriceCents,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create cart line: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateLine(ctx context.Context, item *model.CartItem) error {
	query := `
		UPDATE cart_items
		SET quantity = $1, price_cents = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`
	item.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		item.Quantity,
		item.PriceCents,
		item.UpdatedAt,
		item.ID,
		item.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cart line: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("cart line", nil)
	}

	return nil
}

func (r *cartRepository) DeleteLine(ctx context.Context, userID, lineID uuid.UUID) error {
	query := `
		DELETE FROM cart_items
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, lineID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart line: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("cart line", nil)
	}

	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	query := `
		DELETE FROM cart_items
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Checkout converts the user's cart lines into stock decrements inside
// one transaction. Every line is re-validated with a guarded decrement;
// if any medication can no longer cover its line the whole checkout
// aborts and stock is untouched.
func (r *cartRepository) Checkout(ctx context.Context, userID uuid.UUID) (*model.Receipt, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin checkout transaction: %w", err)
	}
	defer tx.Rollback()

	linesQuery := `
		SELECT c.id, c.user_id, c.medication_id, c.quantity, c.price_cents,
			   c.created_at, c.updated_at,
			   m.name AS medication_name
		FROM cart_items c
		JOIN medications m ON c.medication_id = m.id
		WHERE c.user_id = $1
		ORDER BY c.created_at ASC
		FOR UPDATE OF c, m
	`
	var lines []*model.CartLine
	if err := tx.SelectContext(ctx, &lines, linesQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to load cart for checkout: %w", err)
	}

	receipt := &model.Receipt{PlacedAt: time.Now()}
	if len(lines) == 0 {
		return receipt, nil
	}

	decrement := `
		UPDATE medications
		SET quantity = quantity - $1, updated_at = $2
		WHERE id = $3 AND quantity >= $1
	`
	for _, line := range lines {
		result, err := tx.ExecContext(ctx, decrement, line.Quantity, time.Now(), line.MedicationID)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for %s: %w", line.MedicationName, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			var available int
			if err := tx.GetContext(ctx, &available,
				`SELECT quantity FROM medications WHERE id = $1`, line.MedicationID); err != nil {
				return nil, fmt.Errorf("failed to read stock for %s: %w", line.MedicationName, err)
			}
			return nil, apperrors.NewInsufficientStock(line.MedicationName, available)
		}

		receipt.Lines = append(receipt.Lines, model.ReceiptLine{
			MedicationID:   line.MedicationID,
			MedicationName: line.MedicationName,
			Quantity:       line.Quantity,
			PriceCents:     line.PriceCents,
			SubtotalCents:  line.SubtotalCents(),
		})
		receipt.TotalCents += line.SubtotalCents()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}
	return receipt, nil
}
