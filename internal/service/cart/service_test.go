package cart

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/assistant-api/internal/model"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
)

type fakeMedicationRepo struct {
	meds map[uuid.UUID]*model.Medication
}

func newFakeMedicationRepo() *fakeMedicationRepo {
	return &fakeMedicationRepo{meds: make(map[uuid.UUID]*model.Medication)}
}

func (r *fakeMedicationRepo) add(name string, priceCents int64, quantity int) *model.Medication {
	med := &model.Medication{
		ID:         uuid.New(),
		Name:       name,
		PriceCents: priceCents,
		Quantity:   quantity,
	}
	r.meds[med.ID] = med
	return med
}

func (r *fakeMedicationRepo) Create(ctx context.Context, med *model.Medication) error {
	r.meds[med.ID] = med
	return nil
}

func (r *fakeMedicationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	med, ok := r.meds[id]
	if !ok {
		return nil, apperrors.NewNotFound("medication", nil)
	}
	copied := *med
	return &copied, nil
}

func (r *fakeMedicationRepo) GetByName(ctx context.Context, name string) (*model.Medication, error) {
	for _, med := range r.meds {
		if strings.EqualFold(med.Name, name) {
			copied := *med
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("medication", nil)
}

func (r *fakeMedicationRepo) List(ctx context.Context) ([]*model.Medication, error) {
	var out []*model.Medication
	for _, med := range r.meds {
		copied := *med
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMedicationRepo) Search(ctx context.Context, term string) ([]*model.Medication, error) {
	var out []*model.Medication
	for _, med := range r.meds {
		if strings.Contains(strings.ToLower(med.Name), strings.ToLower(term)) {
			copied := *med
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMedicationRepo) Count(ctx context.Context) (int, error) {
	return len(r.meds), nil
}

type fakeCartRepo struct {
	meds  *fakeMedicationRepo
	lines map[uuid.UUID]*model.CartItem
}

func newFakeCartRepo(meds *fakeMedicationRepo) *fakeCartRepo {
	return &fakeCartRepo{meds: meds, lines: make(map[uuid.UUID]*model.CartItem)}
}

func (r *fakeCartRepo) GetLine(ctx context.Context, userID, medicationID uuid.UUID) (*model.CartItem, error) {
	for _, line := range r.lines {
		if line.UserID == userID && line.MedicationID == medicationID {
			copied := *line
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("cart line", nil)
}

func (r *fakeCartRepo) GetLineByID(ctx context.Context, userID, lineID uuid.UUID) (*model.CartItem, error) {
	line, ok := r.lines[lineID]
	if !ok || line.UserID != userID {
		return nil, apperrors.NewNotFound("cart line", nil)
	}
	copied := *line
	return &copied, nil
}

func (r *fakeCartRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.CartLine, error) {
	var out []*model.CartLine
	for _, line := range r.lines {
		if line.UserID != userID {
			continue
		}
		med := r.meds.meds[line.MedicationID]
		out = append(out, &model.CartLine{CartItem: *line, MedicationName: med.Name})
	}
	return out, nil
}

func (r *fakeCartRepo) CreateLine(ctx context.Context, item *model.CartItem) error {
	copied := *item
	r.lines[item.ID] = &copied
	return nil
}

func (r *fakeCartRepo) UpdateLine(ctx context.Context, item *model.CartItem) error {
	if _, ok := r.lines[item.ID]; !ok {
		return apperrors.NewNotFound("cart line", nil)
	}
	copied := *item
	r.lines[item.ID] = &copied
	return nil
}

func (r *fakeCartRepo) DeleteLine(ctx context.Context, userID, lineID uuid.UUID) error {
	line, ok := r.lines[lineID]
	if !ok || line.UserID != userID {
		return apperrors.NewNotFound("cart line", nil)
	}
	delete(r.lines, lineID)
	return nil
}

func (r *fakeCartRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	for id, line := range r.lines {
		if line.UserID == userID {
			delete(r.lines, id)
		}
	}
	return nil
}

func (r *fakeCartRepo) Checkout(ctx context.Context, userID uuid.UUID) (*model.Receipt, error) {
	lines, _ := r.ListForUser(ctx, userID)
	receipt := &model.Receipt{PlacedAt: time.Now()}
	if len(lines) == 0 {
		return receipt, nil
	}

	// Validate every line before touching stock so a failure leaves
	// both stock and the cart untouched.
	for _, line := range lines {
		med := r.meds.meds[line.MedicationID]
		if med.Quantity < line.Quantity {
			return nil, apperrors.NewInsufficientStock(med.Name, med.Quantity)
		}
	}

	for _, line := range lines {
		med := r.meds.meds[line.MedicationID]
		med.Quantity -= line.Quantity
		receipt.Lines = append(receipt.Lines, model.ReceiptLine{
			MedicationID:   line.MedicationID,
			MedicationName: line.MedicationName,
			Quantity:       line.Quantity,
			PriceCents:     line.PriceCents,
			SubtotalCents:  line.SubtotalCents(),
		})
		receipt.TotalCents += line.SubtotalCents()
	}
	r.Clear(ctx, userID)
	return receipt, nil
}

func newTestService() (*Service, *fakeMedicationRepo, *fakeCartRepo) {
	meds := newFakeMedicationRepo()
	carts := newFakeCartRepo(meds)
	return NewService(carts, meds, nil, nil, nil), meds, carts
}

func TestAddToCart_WithinStock(t *testing.T) {
	svc, meds, _ := newTestService()
	meds.add("Paracetamol", 599, 10)
	userID := uuid.New()

	item, err := svc.AddToCart(context.Background(), userID, &model.AddToCartRequest{
		MedicationName: "Paracetamol",
		Quantity:       4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)
	assert.Equal(t, int64(599), item.PriceCents)
}

func TestAddToCart_BeyondStock(t *testing.T) {
	svc, meds, _ := newTestService()
	meds.add("Paracetamol", 599, 10)
	userID := uuid.New()

	_, err := svc.AddToCart(context.Background(), userID, &model.AddToCartRequest{
		MedicationName: "Paracetamol",
		Quantity:       11,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientStock(err))

	stock, ok := apperrors.StockDetails(err)
	require.True(t, ok)
	assert.Equal(t, "Paracetamol", stock.Medication)
	assert.Equal(t, 10, stock.Available)
}

func TestAddToCart_MergeChecksAdditionalUnits(t *testing.T) {
	svc, meds, _ := newTestService()
	meds.add("Paracetamol", 599, 10)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, userID, &model.AddToCartRequest{MedicationName: "Paracetamol", Quantity: 4})
	require.NoError(t, err)

	// 8 more would exceed the 10 in stock as additional units.
	_, err = svc.AddToCart(ctx, userID, &model.AddToCartRequest{MedicationName: "Paracetamol", Quantity: 8})
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientStock(err))

	// The reported availability is the room left beyond the cart line.
	stock, ok := apperrors.StockDetails(err)
	require.True(t, ok)
	assert.Equal(t, 6, stock.Available)

	// 6 more merges to exactly the stock level.
	item, err := svc.AddToCart(ctx, userID, &model.AddToCartRequest{MedicationName: "Paracetamol", Quantity: 6})
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
}

func TestAddToCart_MergeResnapshotsPrice(t *testing.T) {
	svc, meds, _ := newTestService()
	med := meds.add("Ibuprofen", 799, 20)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, userID, &model.AddToCartRequest{MedicationName: "Ibuprofen", Quantity: 2})
	require.NoError(t, err)

	meds.meds[med.ID].PriceCents = 899

	item, err := svc.AddToCart(ctx, userID, &model.AddToCartRequest{MedicationName: "Ibuprofen", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(899), item.PriceCents)
}

func TestAddToCart_RejectsNonPositiveQuantity(t *testing.T) {
	svc, meds, _ := newTestService()
	meds.add("Aspirin", 499, 10)

	_, err := svc.AddToCart(context.Background(), uuid.New(), &model.AddToCartRequest{
		MedicationName: "Aspirin",
		Quantity:       0,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestAddToCart_UnknownMedication(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddToCart(context.Background(), uuid.New(), &model.AddToCartRequest{
		MedicationName: "Unobtainium",
		Quantity:       1,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateLine_StockCheckedAndZeroRemoves(t *testing.T) {
	svc, meds, carts := newTestService()
	meds.add("Cetirizine", 899, 5)
	userID := uuid.New()
	ctx := context.Background()

	item, err := svc.AddToCart(ctx, userID, &model.AddToCartRequest{MedicationName: "Cetirizine", Quantity: 2})
	require.NoError(t, err)

	_, err = svc.UpdateLine(ctx, userID, item.ID, 6)
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientStock(err))

	updated, err := svc.UpdateLine(ctx, userID, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	removed, err := svc.UpdateLine(ctx, userID, item.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, removed)
	assert.Empty(t, carts.lines)
}

func TestTotal_UsesSnapshotPrices(t *testing.T) {
	svc, meds, _ := newTestService()
	med := meds.add("Omeprazole", 1299, 30)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, userID, &model.AddToCartRequest{MedicationName: "Omeprazole", Quantity: 3})
	require.NoError(t, err)

	// Catalog price changes after the snapshot; total keeps the old one.
	meds.meds[med.ID].PriceCents = 9999

	total, err := svc.Total(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3*1299), total)
}

func TestCheckout_DecrementsStockAndClearsCart(t *testing.T) {
	svc, meds, carts := newTestService()
	med := meds.add("Paracetamol", 599, 10)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, userID, &model.AddToCartRequest{MedicationName: "Paracetamol", Quantity: 10})
	require.NoError(t, err)

	receipt, err := svc.Checkout(ctx, userID)
	require.NoError(t, err)
	require.Len(t, receipt.Lines, 1)
	assert.Equal(t, int64(10*599), receipt.TotalCents)
	assert.Equal(t, 0, meds.meds[med.ID].Quantity)
	assert.Empty(t, carts.lines)
}

func TestCheckout_FailureLeavesStockAndCartUntouched(t *testing.T) {
	svc, meds, carts := newTestService()
	paracetamol := meds.add("Paracetamol", 599, 10)
	ibuprofen := meds.add("Ibuprofen", 799, 5)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, userID, &model.AddToCartRequest{MedicationName: "Paracetamol", Quantity: 4})
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, userID, &model.AddToCartRequest{MedicationName: "Ibuprofen", Quantity: 5})
	require.NoError(t, err)

	// Stock drains between add and checkout.
	meds.meds[ibuprofen.ID].Quantity = 3

	_, err = svc.Checkout(ctx, userID)
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientStock(err))

	stock, ok := apperrors.StockDetails(err)
	require.True(t, ok)
	assert.Equal(t, "Ibuprofen", stock.Medication)
	assert.Equal(t, 3, stock.Available)

	assert.Equal(t, 10, meds.meds[paracetamol.ID].Quantity)
	assert.Equal(t, 3, meds.meds[ibuprofen.ID].Quantity)
	assert.Len(t, carts.lines, 2)
}

func TestCheckout_EmptyCartSucceedsWithEmptyReceipt(t *testing.T) {
	svc, _, _ := newTestService()

	receipt, err := svc.Checkout(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, receipt.Empty())
	assert.Zero(t, receipt.TotalCents)
}
