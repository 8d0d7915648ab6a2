package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem ties a user to a medication with a quantity and the price
// snapshotted at add-time. One line per (user, medication) pair.
type CartItem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	MedicationID uuid.UUID `db:"medication_id" json:"medication_id"`
	Quantity     int       `db:"quantity" json:"quantity"`
	PriceCents   int64     `db:"price_cents" json:"price_cents"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CartLine is the cart display projection joined with the medication
// name. Subtotal uses the snapshot price, not the live catalog price.
type CartLine struct {
	CartItem
	MedicationName string `db:"medication_name" json:"medication_name"`
}

func (l *CartLine) SubtotalCents() int64 {
	return int64(l.Quantity) * l.PriceCents
}

type AddToCartRequest struct {
	MedicationName string `json:"medication_name" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required"`
}

type UpdateCartLineRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// ReceiptLine is one purchased line of a completed checkout.
type ReceiptLine struct {
	MedicationID   uuid.UUID `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	Quantity       int       `json:"quantity"`
	PriceCents     int64     `json:"price_cents"`
	SubtotalCents  int64     `json:"subtotal_cents"`
}

// Receipt summarizes a completed checkout.
type Receipt struct {
	Lines      []ReceiptLine `json:"lines"`
	TotalCents int64         `json:"total_cents"`
	PlacedAt   time.Time     `json:"placed_at"`
}

func (r *Receipt) Empty() bool {
	return len(r.Lines) == 0
}
