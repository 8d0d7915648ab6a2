package medication

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/medassist/assistant-api/internal/model"
	"github.com/medassist/assistant-api/internal/repository"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
)

const (
	catalogCacheKey = "catalog"
	cacheTTL        = 30 * time.Second
)

// Service serves the medication catalog. The full catalog list is
// cached briefly; stock counts read through the cache may lag a
// checkout by up to the TTL, which the cart re-validates anyway.
type Service struct {
	repo  repository.MedicationRepository
	cache *cache.Cache
}

func NewService(repo repository.MedicationRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(cacheTTL, 2*cacheTTL),
	}
}

func (s *Service) List(ctx context.Context) ([]*model.Medication, error) {
	if cached, found := s.cache.Get(catalogCacheKey); found {
		return cached.([]*model.Medication), nil
	}

	medications, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}

	s.cache.Set(catalogCacheKey, medications, cache.DefaultExpiration)
	return medications, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*model.Medication, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidation("medication name is required", nil)
	}
	return s.repo.GetByName(ctx, name)
}

func (s *Service) Search(ctx context.Context, term string) ([]*model.Medication, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx)
	}
	return s.repo.Search(ctx, term)
}

// InvalidateCache drops the cached catalog. The cart service calls it
// after a successful checkout so stock counts refresh immediately.
func (s *Service) InvalidateCache() {
	s.cache.Delete(catalogCacheKey)
}

type seedItem struct {
	name        string
	priceCents  int64
	description string
	quantity    int
}

var defaultCatalog = []seedItem{
	{"Paracetamol", 599, "Pain reliever and fever reducer", 50},
	{"Ibuprofen", 799, "Anti-inflammatory pain reliever", 40},
	{"Aspirin", 499, "Pain reliever, blood thinner", 45},
	{"Amoxicillin", 1599, "Antibiotic for bacterial infections", 30},
	{"Cetirizine", 899, "Antihistamine for allergies", 35},
	{"Omeprazole", 1299, "Reduces stomach acid", 25},
	{"Metformin", 1099, "Blood sugar control for type 2 diabetes", 30},
	{"Atorvastatin", 1899, "Lowers cholesterol", 20},
	{"Amlodipine", 1499, "Blood pressure medication", 25},
	{"Salbutamol", 2499, "Asthma inhaler reliever", 15},
	{"Loratadine", 849, "Non-drowsy antihistamine", 40},
	{"Vitamin D3", 699, "Bone health supplement", 60},
	{"Insulin Glargine", 4599, "Long-acting insulin", 10},
	{"Levothyroxine", 1199, "Thyroid hormone replacement", 20},
}

// Seed loads the default catalog when the medications table is empty.
func (s *Service) Seed(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count medications: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, item := range defaultCatalog {
		med := &model.Medication{
			ID:          uuid.New(),
			Name:        item.name,
			PriceCents:  item.priceCents,
			Description: item.description,
			Quantity:    item.quantity,
		}
		if err := s.repo.Create(ctx, med); err != nil {
			return fmt.Errorf("failed to seed medication %s: %w", item.name, err)
		}
	}
	return nil
}
