package medication

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/assistant-api/internal/model"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
)

type fakeMedicationRepo struct {
	meds      map[uuid.UUID]*model.Medication
	listCalls int
}

func newFakeMedicationRepo() *fakeMedicationRepo {
	return &fakeMedicationRepo{meds: make(map[uuid.UUID]*model.Medication)}
}

func (f *fakeMedicationRepo) Create(_ context.Context, med *model.Medication) error {
	f.meds[med.ID] = med
	return nil
}

func (f *fakeMedicationRepo) Get(_ context.Context, id uuid.UUID) (*model.Medication, error) {
	med, ok := f.meds[id]
	if !ok {
		return nil, apperrors.NewNotFound("medication", nil)
	}
	return med, nil
}

func (f *fakeMedicationRepo) GetByName(_ context.Context, name string) (*model.Medication, error) {
	for _, med := range f.meds {
		if strings.EqualFold(med.Name, name) {
			return med, nil
		}
	}
	return nil, apperrors.NewNotFound("medication", nil)
}

func (f *fakeMedicationRepo) List(_ context.Context) ([]*model.Medication, error) {
	f.listCalls++
	out := make([]*model.Medication, 0, len(f.meds))
	for _, med := range f.meds {
		out = append(out, med)
	}
	return out, nil
}

func (f *fakeMedicationRepo) Search(_ context.Context, term string) ([]*model.Medication, error) {
	var out []*model.Medication
	for _, med := range f.meds {
		if strings.Contains(strings.ToLower(med.Name), strings.ToLower(term)) {
			out = append(out, med)
		}
	}
	return out, nil
}

func (f *fakeMedicationRepo) Count(_ context.Context) (int, error) {
	return len(f.meds), nil
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := NewService(repo)

	require.NoError(t, svc.Seed(context.Background()))
	seeded := len(repo.meds)
	assert.Greater(t, seeded, 0)

	require.NoError(t, svc.Seed(context.Background()))
	assert.Equal(t, seeded, len(repo.meds))
}

func TestListUsesCache(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := NewService(repo)
	require.NoError(t, svc.Seed(context.Background()))

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	svc.InvalidateCache()
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestGetByNameTrimsAndValidates(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := NewService(repo)
	require.NoError(t, svc.Seed(context.Background()))

	med, err := svc.GetByName(context.Background(), "  Paracetamol ")
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", med.Name)

	_, err = svc.GetByName(context.Background(), "   ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestSearchFallsBackToFullList(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := NewService(repo)
	require.NoError(t, svc.Seed(context.Background()))

	all, err := svc.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, len(repo.meds), len(all))

	some, err := svc.Search(context.Background(), "para")
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "Paracetamol", some[0].Name)
}
