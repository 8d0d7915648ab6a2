package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/model"
	"github.com/medassist/assistant-api/internal/repository"
	"github.com/medassist/assistant-api/internal/service/medication"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
	"github.com/medassist/assistant-api/pkg/metrics"
)

type Service struct {
	repo      repository.CartRepository
	medRepo   repository.MedicationRepository
	medSvc    *medication.Service
	notifRepo repository.NotificationRepository
	metrics   *metrics.Metrics
}

func NewService(repo repository.CartRepository, medRepo repository.MedicationRepository, medSvc *medication.Service, notifRepo repository.NotificationRepository, m *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		medRepo:   medRepo,
		medSvc:    medSvc,
		notifRepo: notifRepo,
		metrics:   m,
	}
}

// AddToCart adds quantity units of a medication to the user's cart.
// An existing line for the same medication is merged; the stock check
// covers only the additional units, and the merged line re-snapshots
// the current catalog price.
func (s *Service) AddToCart(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.CartItem, error) {
	if req.Quantity <= 0 {
		return nil, apperrors.NewValidation("quantity must be positive", nil)
	}

	med, err := s.medRepo.GetByName(ctx, req.MedicationName)
	if err != nil {
		return nil, err
	}

	if med.Quantity < req.Quantity {
		return nil, apperrors.NewInsufficientStock(med.Name, med.Quantity)
	}

	existing, err := s.repo.GetLine(ctx, userID, med.ID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up cart line: %w", err)
	}

	if existing == nil {
		item := &model.CartItem{
			ID:           uuid.New(),
			UserID:       userID,
			MedicationID: med.ID,
			Quantity:     req.Quantity,
			PriceCents:   med.PriceCents,
		}
		if err := s.repo.CreateLine(ctx, item); err != nil {
			return nil, err
		}
		return item, nil
	}

	// The units already in the cart count against stock, so the merge
	// only has room for what remains beyond them.
	if existing.Quantity+req.Quantity > med.Quantity {
		return nil, apperrors.NewInsufficientStock(med.Name, med.Quantity-existing.Quantity)
	}

	existing.Quantity += req.Quantity
	existing.PriceCents = med.PriceCents
	if err := s.repo.UpdateLine(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) ListCart(ctx context.Context, userID uuid.UUID) ([]*model.CartLine, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Total returns the cart total in cents using snapshot prices.
func (s *Service) Total(ctx context.Context, userID uuid.UUID) (int64, error) {
	lines, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, line := range lines {
		total += line.SubtotalCents()
	}
	return total, nil
}

// UpdateLine sets a cart line to an absolute quantity, checked against
// current stock. Quantity zero removes the line.
func (s *Service) UpdateLine(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*model.CartItem, error) {
	if quantity < 0 {
		return nil, apperrors.NewValidation("quantity cannot be negative", nil)
	}

	line, err := s.repo.GetLineByID(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		if err := s.repo.DeleteLine(ctx, userID, lineID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	med, err := s.medRepo.Get(ctx, line.MedicationID)
	if err != nil {
		return nil, err
	}
	if med.Quantity < quantity {
		return nil, apperrors.NewInsufficientStock(med.Name, med.Quantity)
	}

	line.Quantity = quantity
	if err := s.repo.UpdateLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *Service) RemoveLine(ctx context.Context, userID, lineID uuid.UUID) error {
	return s.repo.DeleteLine(ctx, userID, lineID)
}

func (s *Service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Clear(ctx, userID)
}

// Checkout places the order. All stock validation and decrementing
// happens inside one store transaction: either every line is fulfilled
// or nothing changes. An empty cart checks out successfully with an
// empty receipt.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID) (*model.Receipt, error) {
	start := time.Now()
	receipt, err := s.repo.Checkout(ctx, userID)
	if s.metrics != nil {
		s.metrics.CheckoutLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			if apperrors.IsInsufficientStock(err) {
				s.metrics.CheckoutsTotal.WithLabelValues("insufficient_stock").Inc()
			} else {
				s.metrics.CheckoutsTotal.WithLabelValues("error").Inc()
			}
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CheckoutsTotal.WithLabelValues("success").Inc()
	}
	if !receipt.Empty() {
		if s.medSvc != nil {
			s.medSvc.InvalidateCache()
		}
		if s.notifRepo != nil {
			// Confirmation delivery is best effort, the order already
			// committed.
			notif := &model.Notification{
				ID:      uuid.New(),
				UserID:  userID,
				Message: fmt.Sprintf("Order placed: %d items, total $%.2f", len(receipt.Lines), float64(receipt.TotalCents)/100),
			}
			_ = s.notifRepo.Create(ctx, notif)
		}
	}
	return receipt, nil
}
