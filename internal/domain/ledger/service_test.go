package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/actor"
	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/core/tx"
	"stockbook/internal/domain"
)

// fakeTxManager runs the function directly; the fake repo below is not
// transactional, so rollback semantics are covered by repo-level errors.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ tx.Manager = fakeTxManager{}

type fakeRepo struct {
	lots map[id.ID]*Lot

	decrements []id.ID
	restores   []id.ID
}

func newFakeRepo(lots ...*Lot) *fakeRepo {
	r := &fakeRepo{lots: make(map[id.ID]*Lot)}
	for _, l := range lots {
		r.lots[l.ID] = l
	}
	return r
}

func (r *fakeRepo) Create(ctx context.Context, lot *Lot) error {
	r.lots[lot.ID] = lot
	return nil
}

func (r *fakeRepo) get(actorID, lotID id.ID) (*Lot, error) {
	lot, ok := r.lots[lotID]
	if !ok || lot.ActorID != actorID {
		return nil, apperror.NewNotFound("lot", lotID.String())
	}
	return lot, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, actorID, lotID id.ID) (*Lot, error) {
	return r.get(actorID, lotID)
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, actorID, lotID id.ID) (*Lot, error) {
	return r.get(actorID, lotID)
}

func (r *fakeRepo) Decrement(ctx context.Context, actorID, lotID id.ID, amount types.Quantity) error {
	lot, err := r.get(actorID, lotID)
	if err != nil {
		return err
	}
	if lot.Available < amount {
		return apperror.NewInsufficientStock(lotID.String(), amount.Float64(), lot.Available.Float64())
	}
	lot.Available -= amount
	r.decrements = append(r.decrements, lotID)
	return nil
}

func (r *fakeRepo) Restore(ctx context.Context, actorID, lotID id.ID, amount types.Quantity) error {
	lot, err := r.get(actorID, lotID)
	if err != nil {
		return err
	}
	if lot.Available+amount > lot.Quantity {
		return apperror.NewPersistence(errors.New("restore exceeds lot quantity"))
	}
	lot.Available += amount
	r.restores = append(r.restores, lotID)
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, actorID, lotID id.ID) error {
	if _, err := r.get(actorID, lotID); err != nil {
		return err
	}
	delete(r.lots, lotID)
	return nil
}

func (r *fakeRepo) ListByPurchaseBill(ctx context.Context, actorID, billID id.ID) ([]*Lot, error) {
	var lots []*Lot
	for _, lot := range r.lots {
		if lot.ActorID == actorID && lot.PurchaseBillID != nil && *lot.PurchaseBillID == billID {
			lots = append(lots, lot)
		}
	}
	return lots, nil
}

func (r *fakeRepo) DeleteByPurchaseBill(ctx context.Context, actorID, billID id.ID) error {
	for lotID, lot := range r.lots {
		if lot.ActorID == actorID && lot.PurchaseBillID != nil && *lot.PurchaseBillID == billID {
			delete(r.lots, lotID)
		}
	}
	return nil
}

func (r *fakeRepo) List(ctx context.Context, actorID id.ID, filter ListFilter) (domain.ListResult[*Lot], error) {
	var items []*Lot
	for _, lot := range r.lots {
		if lot.ActorID == actorID {
			items = append(items, lot)
		}
	}
	return domain.ListResult[*Lot]{Items: items, TotalCount: int64(len(items))}, nil
}

func testCtx(actorID id.ID) context.Context {
	return actor.WithActor(context.Background(), &actor.Actor{ID: actorID})
}

func qty(s string) types.Quantity {
	q, err := types.ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func TestCreateLot(t *testing.T) {
	actorID := id.New()
	repo := newFakeRepo()
	svc := NewService(repo, fakeTxManager{})

	lot, err := svc.CreateLot(testCtx(actorID), CreateLotInput{
		ItemID:       id.New(),
		Quantity:     qty("10"),
		CostPrice:    types.MustMoney("2.00"),
		SellingPrice: types.MustMoney("3.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, lot.Quantity, lot.Available)
	assert.True(t, lot.IsUntouched())
	assert.Len(t, repo.lots, 1)
}

func TestCreateLot_Invalid(t *testing.T) {
	actorID := id.New()
	svc := NewService(newFakeRepo(), fakeTxManager{})

	_, err := svc.CreateLot(testCtx(actorID), CreateLotInput{
		ItemID:       id.New(),
		Quantity:     0,
		CostPrice:    types.MustMoney("2.00"),
		SellingPrice: types.MustMoney("3.50"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateLot_NoActor(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeTxManager{})

	_, err := svc.CreateLot(context.Background(), CreateLotInput{
		ItemID:   id.New(),
		Quantity: qty("1"),
	})
	require.Error(t, err)
}

func TestReserve_AllOrNothing(t *testing.T) {
	actorID := id.New()
	lotA := NewLot(actorID, id.New(), qty("10"), types.MustMoney("1"), types.MustMoney("2"))
	lotB := NewLot(actorID, id.New(), qty("2"), types.MustMoney("1"), types.MustMoney("2"))
	repo := newFakeRepo(lotA, lotB)
	svc := NewService(repo, fakeTxManager{})

	_, err := svc.Reserve(testCtx(actorID), actorID, []Requirement{
		{LotID: lotA.ID, Quantity: qty("5")},
		{LotID: lotB.ID, Quantity: qty("3")},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Validation happens before any decrement: both lots untouched.
	assert.Empty(t, repo.decrements)
	assert.Equal(t, qty("10"), lotA.Available)
	assert.Equal(t, qty("2"), lotB.Available)
}

func TestReserve_DuplicateLotAggregated(t *testing.T) {
	actorID := id.New()
	lot := NewLot(actorID, id.New(), qty("10"), types.MustMoney("1"), types.MustMoney("2"))
	repo := newFakeRepo(lot)
	svc := NewService(repo, fakeTxManager{})

	// 6 + 6 against a lot of 10 must fail up front, even though each
	// draw alone would pass the availability check.
	_, err := svc.Reserve(testCtx(actorID), actorID, []Requirement{
		{LotID: lot.ID, Quantity: qty("6")},
		{LotID: lot.ID, Quantity: qty("6")},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, qty("10"), lot.Available)

	// 6 + 4 exactly drains it.
	lots, err := svc.Reserve(testCtx(actorID), actorID, []Requirement{
		{LotID: lot.ID, Quantity: qty("6")},
		{LotID: lot.ID, Quantity: qty("4")},
	})
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), lot.Available)
	assert.Contains(t, lots, lot.ID)
}

func TestReserve_UnknownLot(t *testing.T) {
	actorID := id.New()
	svc := NewService(newFakeRepo(), fakeTxManager{})

	_, err := svc.Reserve(testCtx(actorID), actorID, []Requirement{
		{LotID: id.New(), Quantity: qty("1")},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReserve_OtherActorLotIsNotFound(t *testing.T) {
	owner := id.New()
	intruder := id.New()
	lot := NewLot(owner, id.New(), qty("10"), types.MustMoney("1"), types.MustMoney("2"))
	svc := NewService(newFakeRepo(lot), fakeTxManager{})

	_, err := svc.Reserve(testCtx(intruder), intruder, []Requirement{
		{LotID: lot.ID, Quantity: qty("1")},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRelease_RestoresAggregated(t *testing.T) {
	actorID := id.New()
	lot := NewLot(actorID, id.New(), qty("10"), types.MustMoney("1"), types.MustMoney("2"))
	lot.Available = qty("3")
	repo := newFakeRepo(lot)
	svc := NewService(repo, fakeTxManager{})

	err := svc.Release(testCtx(actorID), actorID, []Requirement{
		{LotID: lot.ID, Quantity: qty("4")},
		{LotID: lot.ID, Quantity: qty("3")},
	})
	require.NoError(t, err)
	assert.Equal(t, qty("10"), lot.Available)
	assert.Len(t, repo.restores, 1)
}

func TestRelease_BeyondQuantityFails(t *testing.T) {
	actorID := id.New()
	lot := NewLot(actorID, id.New(), qty("10"), types.MustMoney("1"), types.MustMoney("2"))
	lot.Available = qty("8")
	svc := NewService(newFakeRepo(lot), fakeTxManager{})

	err := svc.Release(testCtx(actorID), actorID, []Requirement{
		{LotID: lot.ID, Quantity: qty("5")},
	})
	require.Error(t, err)
}

func TestDeleteLot(t *testing.T) {
	actorID := id.New()
	lot := NewLot(actorID, id.New(), qty("10"), types.MustMoney("1"), types.MustMoney("2"))
	repo := newFakeRepo(lot)
	svc := NewService(repo, fakeTxManager{})

	require.NoError(t, svc.DeleteLot(testCtx(actorID), lot.ID))
	assert.Empty(t, repo.lots)
}

func TestRemoveForPurchase(t *testing.T) {
	actorID := id.New()
	billID := id.New()
	lotA := NewLot(actorID, id.New(), qty("10"), types.MustMoney("1"), types.MustMoney("2"))
	lotA.PurchaseBillID = &billID
	lotB := NewLot(actorID, id.New(), qty("5"), types.MustMoney("1"), types.MustMoney("2"))
	lotB.PurchaseBillID = &billID
	repo := newFakeRepo(lotA, lotB)
	svc := NewService(repo, fakeTxManager{})

	require.NoError(t, svc.RemoveForPurchase(testCtx(actorID), actorID, billID))
	assert.Empty(t, repo.lots)
}

func TestRemoveForPurchase_SoldStockConflicts(t *testing.T) {
	actorID := id.New()
	billID := id.New()
	lot := NewLot(actorID, id.New(), qty("10"), types.MustMoney("1"), types.MustMoney("2"))
	lot.PurchaseBillID = &billID
	lot.Available = qty("7")
	repo := newFakeRepo(lot)
	svc := NewService(repo, fakeTxManager{})

	err := svc.RemoveForPurchase(testCtx(actorID), actorID, billID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	assert.Len(t, repo.lots, 1)
}

func TestDeleteLot_ConsumedConflicts(t *testing.T) {
	actorID := id.New()
	lot := NewLot(actorID, id.New(), qty("10"), types.MustMoney("1"), types.MustMoney("2"))
	lot.Available = qty("9")
	repo := newFakeRepo(lot)
	svc := NewService(repo, fakeTxManager{})

	err := svc.DeleteLot(testCtx(actorID), lot.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	assert.Len(t, repo.lots, 1)
}
