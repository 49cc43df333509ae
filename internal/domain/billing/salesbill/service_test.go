package salesbill

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/actor"
	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/policy"
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
	"stockbook/internal/domain/ledger"
	"stockbook/pkg/numerator"
)

// --- Test fakes ---
//
// The fakes are not transactional on their own, so the tx manager snapshots
// their state and rolls it back when the function fails. This keeps the
// failure-path assertions honest: a failed commit must leave stock untouched.

type snapshotter interface {
	snapshot() any
	restore(any)
}

type fakeTxManager struct {
	stores []snapshotter
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snaps := make([]any, len(m.stores))
	for i, s := range m.stores {
		snaps[i] = s.snapshot()
	}
	if err := fn(ctx); err != nil {
		for i, s := range m.stores {
			s.restore(snaps[i])
		}
		return err
	}
	return nil
}

type fakeLedgerRepo struct {
	lots map[id.ID]*ledger.Lot
}

func newFakeLedgerRepo(lots ...*ledger.Lot) *fakeLedgerRepo {
	r := &fakeLedgerRepo{lots: make(map[id.ID]*ledger.Lot)}
	for _, l := range lots {
		r.lots[l.ID] = l
	}
	return r
}

func (r *fakeLedgerRepo) snapshot() any {
	cp := make(map[id.ID]*ledger.Lot, len(r.lots))
	for k, v := range r.lots {
		lot := *v
		cp[k] = &lot
	}
	return cp
}

func (r *fakeLedgerRepo) restore(s any) { r.lots = s.(map[id.ID]*ledger.Lot) }

func (r *fakeLedgerRepo) get(actorID, lotID id.ID) (*ledger.Lot, error) {
	lot, ok := r.lots[lotID]
	if !ok || lot.ActorID != actorID {
		return nil, apperror.NewNotFound("lot", lotID.String())
	}
	return lot, nil
}

func (r *fakeLedgerRepo) Create(ctx context.Context, lot *ledger.Lot) error {
	r.lots[lot.ID] = lot
	return nil
}

func (r *fakeLedgerRepo) GetByID(ctx context.Context, actorID, lotID id.ID) (*ledger.Lot, error) {
	return r.get(actorID, lotID)
}

func (r *fakeLedgerRepo) GetForUpdate(ctx context.Context, actorID, lotID id.ID) (*ledger.Lot, error) {
	return r.get(actorID, lotID)
}

func (r *fakeLedgerRepo) Decrement(ctx context.Context, actorID, lotID id.ID, amount types.Quantity) error {
	lot, err := r.get(actorID, lotID)
	if err != nil {
		return err
	}
	if lot.Available < amount {
		return apperror.NewInsufficientStock(lotID.String(), amount.Float64(), lot.Available.Float64())
	}
	lot.Available -= amount
	return nil
}

func (r *fakeLedgerRepo) Restore(ctx context.Context, actorID, lotID id.ID, amount types.Quantity) error {
	lot, err := r.get(actorID, lotID)
	if err != nil {
		return err
	}
	lot.Available += amount
	return nil
}

func (r *fakeLedgerRepo) Delete(ctx context.Context, actorID, lotID id.ID) error {
	delete(r.lots, lotID)
	return nil
}

func (r *fakeLedgerRepo) ListByPurchaseBill(ctx context.Context, actorID, billID id.ID) ([]*ledger.Lot, error) {
	return nil, nil
}

func (r *fakeLedgerRepo) DeleteByPurchaseBill(ctx context.Context, actorID, billID id.ID) error {
	return nil
}

func (r *fakeLedgerRepo) List(ctx context.Context, actorID id.ID, filter ledger.ListFilter) (domain.ListResult[*ledger.Lot], error) {
	return domain.ListResult[*ledger.Lot]{}, nil
}

type billStore struct {
	bills   map[id.ID]*SalesBill
	lines   map[id.ID][]Line
	charges map[id.ID][]ExtraCharge
}

type fakeBillRepo struct {
	billStore
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{billStore{
		bills:   make(map[id.ID]*SalesBill),
		lines:   make(map[id.ID][]Line),
		charges: make(map[id.ID][]ExtraCharge),
	}}
}

func (r *fakeBillRepo) snapshot() any {
	cp := billStore{
		bills:   make(map[id.ID]*SalesBill, len(r.bills)),
		lines:   make(map[id.ID][]Line, len(r.lines)),
		charges: make(map[id.ID][]ExtraCharge, len(r.charges)),
	}
	for k, v := range r.bills {
		b := *v
		cp.bills[k] = &b
	}
	for k, v := range r.lines {
		cp.lines[k] = append([]Line(nil), v...)
	}
	for k, v := range r.charges {
		cp.charges[k] = append([]ExtraCharge(nil), v...)
	}
	return cp
}

func (r *fakeBillRepo) restore(s any) { r.billStore = s.(billStore) }

func (r *fakeBillRepo) Create(ctx context.Context, bill *SalesBill) error {
	b := *bill
	r.bills[bill.ID] = &b
	return nil
}

func (r *fakeBillRepo) Update(ctx context.Context, bill *SalesBill) error {
	if _, ok := r.bills[bill.ID]; !ok {
		return apperror.NewNotFound("sales bill", bill.ID.String())
	}
	b := *bill
	r.bills[bill.ID] = &b
	return nil
}

func (r *fakeBillRepo) Delete(ctx context.Context, actorID, billID id.ID) error {
	delete(r.bills, billID)
	return nil
}

func (r *fakeBillRepo) GetByID(ctx context.Context, actorID, billID id.ID) (*SalesBill, error) {
	bill, ok := r.bills[billID]
	if !ok || bill.ActorID != actorID {
		return nil, apperror.NewNotFound("sales bill", billID.String())
	}
	b := *bill
	return &b, nil
}

func (r *fakeBillRepo) GetByNumber(ctx context.Context, actorID id.ID, number string) (*SalesBill, error) {
	for _, bill := range r.bills {
		if bill.ActorID == actorID && bill.Number == number {
			b := *bill
			return &b, nil
		}
	}
	return nil, apperror.NewNotFound("sales bill", number)
}

func (r *fakeBillRepo) List(ctx context.Context, actorID id.ID, filter ListFilter) (domain.ListResult[*SalesBill], error) {
	var items []*SalesBill
	for _, bill := range r.bills {
		if bill.ActorID == actorID {
			items = append(items, bill)
		}
	}
	return domain.ListResult[*SalesBill]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeBillRepo) GetLines(ctx context.Context, billID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[billID]...), nil
}

func (r *fakeBillRepo) GetCharges(ctx context.Context, billID id.ID) ([]ExtraCharge, error) {
	return append([]ExtraCharge(nil), r.charges[billID]...), nil
}

func (r *fakeBillRepo) SaveLines(ctx context.Context, billID id.ID, lines []Line) error {
	r.lines[billID] = append([]Line(nil), lines...)
	return nil
}

func (r *fakeBillRepo) SaveCharges(ctx context.Context, billID id.ID, charges []ExtraCharge) error {
	r.charges[billID] = append([]ExtraCharge(nil), charges...)
	return nil
}

// seqRow / seqQuerier emulate the doc_sequences UPSERT.

type seqRow struct{ val int64 }

func (r *seqRow) Scan(dest ...any) error {
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = r.val
		}
	}
	return nil
}

type seqQuerier struct {
	mu     sync.Mutex
	values map[string]int64
}

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.values == nil {
		q.values = make(map[string]int64)
	}
	actorID, _ := args[0].(string)
	key, _ := args[1].(string)
	q.values[actorID+":"+key]++
	return &seqRow{val: q.values[actorID+":"+key]}
}

// --- Fixture ---

type fixture struct {
	svc        *Service
	billRepo   *fakeBillRepo
	ledgerRepo *fakeLedgerRepo
	actorID    id.ID
	ctx        context.Context
}

func newFixture(t *testing.T, guard *policy.Guard, lots ...*ledger.Lot) *fixture {
	t.Helper()

	actorID := id.New()
	ledgerRepo := newFakeLedgerRepo(lots...)
	billRepo := newFakeBillRepo()
	txm := &fakeTxManager{stores: []snapshotter{ledgerRepo, billRepo}}

	svc := NewService(
		billRepo,
		ledger.NewService(ledgerRepo, txm),
		numerator.New(&seqQuerier{}),
		txm,
		guard,
	)

	return &fixture{
		svc:        svc,
		billRepo:   billRepo,
		ledgerRepo: ledgerRepo,
		actorID:    actorID,
		ctx:        actor.WithActor(context.Background(), &actor.Actor{ID: actorID}),
	}
}

func (f *fixture) newLot(quantity, cost, selling string) *ledger.Lot {
	lot := ledger.NewLot(f.actorID, id.New(), qty(quantity), types.MustMoney(cost), types.MustMoney(selling))
	f.ledgerRepo.lots[lot.ID] = lot
	return lot
}

// available reads current availability from the store. Rollbacks replace
// the stored lots, so held pointers go stale after a failed transaction.
func (f *fixture) available(lotID id.ID) types.Quantity {
	return f.ledgerRepo.lots[lotID].Available
}

func qty(s string) types.Quantity {
	q, err := types.ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func money(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func walkIn() *string {
	name := "Walk-in"
	return &name
}

func billDate() time.Time {
	return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
}

// --- Tests ---

func TestCreate(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "2.00", "3.50")

	bill, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("4")}},
		Charges:      []ChargeInput{{Label: "delivery", Amount: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-20260115-001", bill.Number)
	assert.Equal(t, StatusDue, bill.Status)

	// Price defaults to the lot's selling price: 4 × 3.50 = 14.00.
	// Tax 10% on 14.00 + 2.00 = 1.60; total 17.60.
	assert.True(t, bill.Subtotal.Equal(types.MustMoney("14.00")), "subtotal %s", bill.Subtotal)
	assert.True(t, bill.Tax.Equal(types.MustMoney("1.60")), "tax %s", bill.Tax)
	assert.True(t, bill.Total.Equal(types.MustMoney("17.60")), "total %s", bill.Total)

	assert.Equal(t, qty("6"), f.available(lot.ID))
	assert.Len(t, f.billRepo.bills, 1)
	assert.Len(t, f.billRepo.lines[bill.ID], 1)
	assert.Equal(t, lot.ItemID, f.billRepo.lines[bill.ID][0].ItemID)
}

func TestCreate_NumbersAreSequentialWithinDay(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "2.00", "3.50")

	first, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("1")}},
	})
	require.NoError(t, err)
	second, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("1")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-20260115-001", first.Number)
	assert.Equal(t, "INV-20260115-002", second.Number)
}

func TestCreate_PriceOverride(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "2.00", "3.50")

	bill, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		TaxRate:      money("0"),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("2"), UnitPrice: money("5.00")}},
	})
	require.NoError(t, err)
	assert.True(t, bill.Total.Equal(types.MustMoney("10.00")), "total %s", bill.Total)
}

func TestCreate_NoPartialReservation(t *testing.T) {
	f := newFixture(t, nil)
	lotA := f.newLot("10", "1.00", "2.00")
	lotB := f.newLot("2", "1.00", "2.00")

	_, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines: []LineInput{
			{LotID: lotA.ID, Quantity: qty("5")},
			{LotID: lotB.ID, Quantity: qty("3")},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Nothing was decremented and no bill exists.
	assert.Equal(t, qty("10"), f.available(lotA.ID))
	assert.Equal(t, qty("2"), f.available(lotB.ID))
	assert.Empty(t, f.billRepo.bills)
}

func TestCreate_DuplicateLotLinesAggregated(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "1.00", "2.00")

	_, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines: []LineInput{
			{LotID: lot.ID, Quantity: qty("6")},
			{LotID: lot.ID, Quantity: qty("6")},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, qty("10"), f.available(lot.ID))
}

func TestUpdate_AdjustsReservation(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "1.00", "2.00")

	bill, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("4")}},
	})
	require.NoError(t, err)
	assert.Equal(t, qty("6"), f.available(lot.ID))

	// Grow the draw to 7: restore 4, take 7.
	_, err = f.svc.Update(f.ctx, bill.ID, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("7")}},
	})
	require.NoError(t, err)
	assert.Equal(t, qty("3"), f.available(lot.ID))

	// Shrink to 3.
	_, err = f.svc.Update(f.ctx, bill.ID, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("3")}},
	})
	require.NoError(t, err)
	assert.Equal(t, qty("7"), f.available(lot.ID))
}

func TestUpdate_GrowBeyondStockFails(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "1.00", "2.00")

	bill, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("4")}},
	})
	require.NoError(t, err)

	// 4 restored + 6 free = 10 available, 11 requested.
	_, err = f.svc.Update(f.ctx, bill.ID, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("11")}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Rolled back: the original draw still stands.
	assert.Equal(t, qty("6"), f.available(lot.ID))
	got, err := f.svc.Get(f.ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, qty("4"), got.Lines[0].Quantity)
}

func TestUpdate_SwitchLots(t *testing.T) {
	f := newFixture(t, nil)
	lotA := f.newLot("10", "1.00", "2.00")
	lotB := f.newLot("10", "1.00", "2.00")

	bill, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lotA.ID, Quantity: qty("5")}},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(f.ctx, bill.ID, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lotB.ID, Quantity: qty("5")}},
	})
	require.NoError(t, err)

	assert.Equal(t, qty("10"), f.available(lotA.ID))
	assert.Equal(t, qty("5"), f.available(lotB.ID))
}

func TestUpdate_RecomputesTotals(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "1.00", "2.00")

	bill, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("4")}},
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(f.ctx, bill.ID, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		TaxRate:      money("5"),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("2")}},
		Charges:      []ChargeInput{{Label: "packing", Amount: types.MustMoney("1.00")}},
	})
	require.NoError(t, err)

	// 2 × 2.00 = 4.00; 5% on 5.00 = 0.25; total 5.25.
	assert.True(t, updated.Subtotal.Equal(types.MustMoney("4.00")), "subtotal %s", updated.Subtotal)
	assert.True(t, updated.Tax.Equal(types.MustMoney("0.25")), "tax %s", updated.Tax)
	assert.True(t, updated.Total.Equal(types.MustMoney("5.25")), "total %s", updated.Total)

	// Number survives the edit.
	assert.Equal(t, bill.Number, updated.Number)
}

func TestDelete_RestoresStock(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "1.00", "2.00")

	bill, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("4")}},
	})
	require.NoError(t, err)
	assert.Equal(t, qty("6"), f.available(lot.ID))

	require.NoError(t, f.svc.Delete(f.ctx, bill.ID))
	assert.Equal(t, qty("10"), f.available(lot.ID))
	assert.Empty(t, f.billRepo.bills)
	assert.Empty(t, f.billRepo.lines[bill.ID])
}

func TestDelete_UnknownBill(t *testing.T) {
	f := newFixture(t, nil)
	err := f.svc.Delete(f.ctx, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "1.00", "2.00")

	bill, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("1")}},
	})
	require.NoError(t, err)

	paid, err := f.svc.SetStatus(f.ctx, bill.ID, StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)

	// Status change does not touch stock.
	assert.Equal(t, qty("9"), f.available(lot.ID))

	_, err = f.svc.SetStatus(f.ctx, bill.ID, Status("shipped"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestCreate_RequiresClientOrCustomer(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "1.00", "2.00")

	// Neither a client nor a walk-in customer name: rejected.
	_, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{LotID: lot.ID, Quantity: qty("1")}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// Rejected bill leaves stock untouched.
	assert.Equal(t, qty("10"), f.available(lot.ID))
	assert.Empty(t, f.billRepo.bills)

	// A registered client alone is enough.
	clientID := id.New()
	_, err = f.svc.Create(f.ctx, BillInput{
		ClientID: &clientID,
		BillDate: billDate(),
		Lines:    []LineInput{{LotID: lot.ID, Quantity: qty("1")}},
	})
	require.NoError(t, err)
}

func TestHooks_FireOnEveryOperation(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "1.00", "2.00")

	var actions []string
	f.svc.Hooks().OnBeforeCreate(func(ctx context.Context, b *SalesBill) error {
		actions = append(actions, "create:"+b.Number)
		return nil
	})
	f.svc.Hooks().OnBeforeUpdate(func(ctx context.Context, b *SalesBill) error {
		actions = append(actions, "update")
		return nil
	})
	f.svc.Hooks().OnBeforeDelete(func(ctx context.Context, b *SalesBill) error {
		actions = append(actions, "delete")
		return nil
	})
	f.svc.Hooks().OnStatusChange(func(ctx context.Context, b *SalesBill) error {
		actions = append(actions, "status:"+string(b.Status))
		return nil
	})

	bill, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("2")}},
	})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(f.ctx, bill.ID, StatusPaid)
	require.NoError(t, err)

	_, err = f.svc.Update(f.ctx, bill.ID, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("1")}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, bill.ID))

	assert.Equal(t, []string{"create:INV-20260115-001", "status:paid", "update", "delete"}, actions)
}

func TestCreate_HookFailureRollsBack(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "1.00", "2.00")

	f.svc.Hooks().OnBeforeCreate(func(ctx context.Context, b *SalesBill) error {
		return apperror.NewConflict("audit log unavailable")
	})

	_, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("2")}},
	})
	require.Error(t, err)

	// The hook runs inside the transaction, so nothing sticks.
	assert.Equal(t, qty("10"), f.available(lot.ID))
	assert.Empty(t, f.billRepo.bills)
}

func TestGetByNumber(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.newLot("10", "1.00", "2.00")

	bill, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("2")}},
	})
	require.NoError(t, err)

	found, err := f.svc.GetByNumber(f.ctx, bill.Number)
	require.NoError(t, err)
	assert.Equal(t, bill.ID, found.ID)
	assert.Len(t, found.Lines, 1)

	// Another actor sees nothing under that number.
	otherCtx := actor.WithActor(context.Background(), &actor.Actor{ID: id.New()})
	_, err = f.svc.GetByNumber(otherCtx, bill.Number)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_PolicyGuardRejects(t *testing.T) {
	guard, err := policy.NewGuard([]policy.Rule{
		{Name: "max-total", Expression: "total <= 5.0"},
	})
	require.NoError(t, err)

	f := newFixture(t, guard)
	lot := f.newLot("10", "1.00", "2.00")

	_, err = f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: lot.ID, Quantity: qty("5")}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// Rejected bill leaves no trace: stock back, nothing stored.
	assert.Equal(t, qty("10"), f.available(lot.ID))
	assert.Empty(t, f.billRepo.bills)
}

func TestCreate_OtherActorLot(t *testing.T) {
	f := newFixture(t, nil)
	stranger := ledger.NewLot(id.New(), id.New(), qty("10"), types.MustMoney("1"), types.MustMoney("2"))
	f.ledgerRepo.lots[stranger.ID] = stranger

	_, err := f.svc.Create(f.ctx, BillInput{
		CustomerName: walkIn(),
		BillDate:     billDate(),
		Lines:        []LineInput{{LotID: stranger.ID, Quantity: qty("1")}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
