package model

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a catalog item. Quantity is the stock counter the cart
// checkout decrements; PriceCents keeps currency in integer minor units.
type Medication struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	Description string    `db:"description" json:"description,omitempty"`
	Quantity    int       `db:"quantity" json:"quantity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
