package health

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/assistant-api/internal/model"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
)

type fakeReadingRepo struct {
	readings []*model.HealthReading
}

func (f *fakeReadingRepo) Create(_ context.Context, reading *model.HealthReading) error {
	f.readings = append(f.readings, reading)
	return nil
}

func (f *fakeReadingRepo) ListForUser(_ context.Context, userID uuid.UUID, readingType string, limit int) ([]*model.HealthReading, error) {
	var out []*model.HealthReading
	for _, r := range f.readings {
		if r.UserID != userID {
			continue
		}
		if readingType != "" && r.ReadingType != readingType {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

func TestRecordNormalizesType(t *testing.T) {
	repo := &fakeReadingRepo{}
	svc := NewService(repo)
	userID := uuid.New()

	reading, err := svc.Record(context.Background(), userID, &model.RecordReadingRequest{
		ReadingType: "  Pulse ",
		Value:       " 72 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "pulse", reading.ReadingType)
	assert.Equal(t, "72", reading.Value)

	_, err = svc.Record(context.Background(), userID, &model.RecordReadingRequest{
		ReadingType: "   ",
		Value:       "72",
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestListFiltersByType(t *testing.T) {
	repo := &fakeReadingRepo{}
	svc := NewService(repo)
	userID := uuid.New()

	_, err := svc.Record(context.Background(), userID, &model.RecordReadingRequest{ReadingType: "pulse", Value: "70"})
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), userID, &model.RecordReadingRequest{ReadingType: "weight", Value: "80.5"})
	require.NoError(t, err)

	pulses, err := svc.List(context.Background(), userID, "PULSE", 0)
	require.NoError(t, err)
	require.Len(t, pulses, 1)
	assert.Equal(t, "pulse", pulses[0].ReadingType)

	all, err := svc.List(context.Background(), userID, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestClassifyReading(t *testing.T) {
	svc := NewService(&fakeReadingRepo{})

	level, ok := svc.ClassifyReading(&model.HealthReading{ReadingType: "pulse", Value: "55"})
	require.True(t, ok)
	assert.Equal(t, model.PulseLevelLow, level)

	level, ok = svc.ClassifyReading(&model.HealthReading{ReadingType: "pulse", Value: "110"})
	require.True(t, ok)
	assert.Equal(t, model.PulseLevelHigh, level)

	_, ok = svc.ClassifyReading(&model.HealthReading{ReadingType: "weight", Value: "80"})
	assert.False(t, ok)

	_, ok = svc.ClassifyReading(&model.HealthReading{ReadingType: "pulse", Value: "fast"})
	assert.False(t, ok)
}
