package model

import (
	"time"

	"github.com/google/uuid"
)

// HealthReading is append-only; Value stays text for legacy
// compatibility even though it is numeric in practice.
type HealthReading struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	ReadingType string    `db:"reading_type" json:"reading_type"`
	Value       string    `db:"value" json:"value"`
	Notes       string    `db:"notes" json:"notes,omitempty"`
	RecordedAt  time.Time `db:"recorded_at" json:"recorded_at"`
}

type RecordReadingRequest struct {
	ReadingType string `json:"reading_type" binding:"required"`
	Value       string `json:"value" binding:"required"`
	Notes       string `json:"notes"`
}

type PulseLevel string

const (
	PulseLevelLow    PulseLevel = "low"
	PulseLevelNormal PulseLevel = "normal"
	PulseLevelHigh   PulseLevel = "high"
)

// ClassifyPulse buckets a BPM value using the same thresholds the
// monitoring display uses.
func ClassifyPulse(bpm float64) PulseLevel {
	switch {
	case bpm < 60:
		return PulseLevelLow
	case bpm > 100:
		return PulseLevelHigh
	default:
		return PulseLevelNormal
	}
}
