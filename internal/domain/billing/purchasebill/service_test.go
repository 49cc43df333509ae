package purchasebill

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
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/domain/finance/expense"
	"stockbook/internal/domain/ledger"
	"stockbook/pkg/numerator"
)

// --- Test fakes ---

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

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{lots: make(map[id.ID]*ledger.Lot)}
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
	var lots []*ledger.Lot
	for _, lot := range r.lots {
		if lot.ActorID == actorID && lot.PurchaseBillID != nil && *lot.PurchaseBillID == billID {
			lots = append(lots, lot)
		}
	}
	return lots, nil
}

func (r *fakeLedgerRepo) DeleteByPurchaseBill(ctx context.Context, actorID, billID id.ID) error {
	for lotID, lot := range r.lots {
		if lot.ActorID == actorID && lot.PurchaseBillID != nil && *lot.PurchaseBillID == billID {
			delete(r.lots, lotID)
		}
	}
	return nil
}

func (r *fakeLedgerRepo) List(ctx context.Context, actorID id.ID, filter ledger.ListFilter) (domain.ListResult[*ledger.Lot], error) {
	return domain.ListResult[*ledger.Lot]{}, nil
}

type fakeExpenseRepo struct {
	expenses map[id.ID]*expense.Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{expenses: make(map[id.ID]*expense.Expense)}
}

func (r *fakeExpenseRepo) snapshot() any {
	cp := make(map[id.ID]*expense.Expense, len(r.expenses))
	for k, v := range r.expenses {
		e := *v
		cp[k] = &e
	}
	return cp
}

func (r *fakeExpenseRepo) restore(s any) { r.expenses = s.(map[id.ID]*expense.Expense) }

func (r *fakeExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	r.expenses[e.ID] = e
	return nil
}

func (r *fakeExpenseRepo) GetByID(ctx context.Context, actorID, expenseID id.ID) (*expense.Expense, error) {
	e, ok := r.expenses[expenseID]
	if !ok || e.ActorID != actorID {
		return nil, apperror.NewNotFound("expense", expenseID.String())
	}
	return e, nil
}

func (r *fakeExpenseRepo) Update(ctx context.Context, e *expense.Expense) error {
	r.expenses[e.ID] = e
	return nil
}

func (r *fakeExpenseRepo) Delete(ctx context.Context, actorID, expenseID id.ID) error {
	delete(r.expenses, expenseID)
	return nil
}

func (r *fakeExpenseRepo) List(ctx context.Context, actorID id.ID, filter expense.ListFilter) (domain.ListResult[*expense.Expense], error) {
	return domain.ListResult[*expense.Expense]{}, nil
}

func (r *fakeExpenseRepo) GetByPurchaseBill(ctx context.Context, actorID, billID id.ID) (*expense.Expense, error) {
	for _, e := range r.expenses {
		if e.ActorID == actorID && e.PurchaseBillID != nil && *e.PurchaseBillID == billID {
			return e, nil
		}
	}
	return nil, apperror.NewNotFound("expense", billID.String())
}

func (r *fakeExpenseRepo) DeleteByPurchaseBill(ctx context.Context, actorID, billID id.ID) error {
	for eid, e := range r.expenses {
		if e.ActorID == actorID && e.PurchaseBillID != nil && *e.PurchaseBillID == billID {
			delete(r.expenses, eid)
		}
	}
	return nil
}

type fakeItemRepo struct {
	items map[id.ID]*item.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[id.ID]*item.Item)}
}

func (r *fakeItemRepo) Create(ctx context.Context, it *item.Item) error {
	r.items[it.ID] = it
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, actorID, itemID id.ID) (*item.Item, error) {
	it, ok := r.items[itemID]
	if !ok || it.ActorID != actorID {
		return nil, apperror.NewNotFound("item", itemID.String())
	}
	return it, nil
}

func (r *fakeItemRepo) GetByCode(ctx context.Context, actorID id.ID, code string) (*item.Item, error) {
	return nil, apperror.NewNotFound("item", code)
}

func (r *fakeItemRepo) Update(ctx context.Context, it *item.Item) error { return nil }

func (r *fakeItemRepo) Delete(ctx context.Context, actorID, itemID id.ID) error { return nil }

func (r *fakeItemRepo) List(ctx context.Context, actorID id.ID, filter domain.ListFilter) (domain.ListResult[*item.Item], error) {
	return domain.ListResult[*item.Item]{}, nil
}

func (r *fakeItemRepo) FindBySKU(ctx context.Context, actorID id.ID, sku string) (*item.Item, error) {
	return nil, apperror.NewNotFound("item", sku)
}

func (r *fakeItemRepo) FindLowStock(ctx context.Context, actorID id.ID, filter domain.ListFilter) ([]item.StockLevel, error) {
	return nil, nil
}

type billStore struct {
	bills   map[id.ID]*PurchaseBill
	lines   map[id.ID][]Line
	charges map[id.ID][]ExtraCharge
}

type fakeBillRepo struct {
	billStore
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{billStore{
		bills:   make(map[id.ID]*PurchaseBill),
		lines:   make(map[id.ID][]Line),
		charges: make(map[id.ID][]ExtraCharge),
	}}
}

func (r *fakeBillRepo) snapshot() any {
	cp := billStore{
		bills:   make(map[id.ID]*PurchaseBill, len(r.bills)),
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

func (r *fakeBillRepo) Create(ctx context.Context, bill *PurchaseBill) error {
	b := *bill
	r.bills[bill.ID] = &b
	return nil
}

func (r *fakeBillRepo) Update(ctx context.Context, bill *PurchaseBill) error {
	if _, ok := r.bills[bill.ID]; !ok {
		return apperror.NewNotFound("purchase bill", bill.ID.String())
	}
	b := *bill
	r.bills[bill.ID] = &b
	return nil
}

func (r *fakeBillRepo) Delete(ctx context.Context, actorID, billID id.ID) error {
	delete(r.bills, billID)
	return nil
}

func (r *fakeBillRepo) GetByID(ctx context.Context, actorID, billID id.ID) (*PurchaseBill, error) {
	bill, ok := r.bills[billID]
	if !ok || bill.ActorID != actorID {
		return nil, apperror.NewNotFound("purchase bill", billID.String())
	}
	b := *bill
	return &b, nil
}

func (r *fakeBillRepo) GetByNumber(ctx context.Context, actorID id.ID, number string) (*PurchaseBill, error) {
	for _, bill := range r.bills {
		if bill.ActorID == actorID && bill.Number == number {
			b := *bill
			return &b, nil
		}
	}
	return nil, apperror.NewNotFound("purchase bill", number)
}

func (r *fakeBillRepo) List(ctx context.Context, actorID id.ID, filter ListFilter) (domain.ListResult[*PurchaseBill], error) {
	var items []*PurchaseBill
	for _, bill := range r.bills {
		if bill.ActorID == actorID {
			items = append(items, bill)
		}
	}
	return domain.ListResult[*PurchaseBill]{Items: items, TotalCount: int64(len(items))}, nil
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
	svc         *Service
	billRepo    *fakeBillRepo
	ledgerRepo  *fakeLedgerRepo
	expenseRepo *fakeExpenseRepo
	itemRepo    *fakeItemRepo
	actorID     id.ID
	ctx         context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	actorID := id.New()
	ledgerRepo := newFakeLedgerRepo()
	billRepo := newFakeBillRepo()
	expenseRepo := newFakeExpenseRepo()
	itemRepo := newFakeItemRepo()
	txm := &fakeTxManager{stores: []snapshotter{ledgerRepo, billRepo, expenseRepo}}

	svc := NewService(
		billRepo,
		ledger.NewService(ledgerRepo, txm),
		expense.NewService(expenseRepo, txm),
		itemRepo,
		numerator.New(&seqQuerier{}),
		txm,
		nil,
	)

	return &fixture{
		svc:         svc,
		billRepo:    billRepo,
		ledgerRepo:  ledgerRepo,
		expenseRepo: expenseRepo,
		itemRepo:    itemRepo,
		actorID:     actorID,
		ctx:         actor.WithActor(context.Background(), &actor.Actor{ID: actorID}),
	}
}

func (f *fixture) newItem(name, selling string) *item.Item {
	it := item.NewItem(f.actorID, name)
	it.SellingPrice = types.MustMoney(selling)
	f.itemRepo.items[it.ID] = it
	return it
}

func (f *fixture) billLots(billID id.ID) []*ledger.Lot {
	lots, _ := f.ledgerRepo.ListByPurchaseBill(context.Background(), f.actorID, billID)
	return lots
}

func (f *fixture) billExpense(billID id.ID) *expense.Expense {
	e, err := f.expenseRepo.GetByPurchaseBill(context.Background(), f.actorID, billID)
	if err != nil {
		return nil
	}
	return e
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

func billDate() time.Time {
	return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
}

// --- Tests ---

func TestCreate(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("soap", "3.50")

	bill, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		TaxRate:  money("5"),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("10"), UnitPrice: types.MustMoney("2.00")}},
		Charges:  []ChargeInput{{Label: "freight", Amount: types.MustMoney("3.00")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "PUR-20260115-001", bill.Number)
	assert.Equal(t, StatusReceived, bill.Status)

	// 10 × 2.00 = 20.00; 5% on 23.00 = 1.15; total 24.15.
	assert.True(t, bill.Subtotal.Equal(types.MustMoney("20.00")), "subtotal %s", bill.Subtotal)
	assert.True(t, bill.Tax.Equal(types.MustMoney("1.15")), "tax %s", bill.Tax)
	assert.True(t, bill.Total.Equal(types.MustMoney("24.15")), "total %s", bill.Total)

	// One lot per line, fully available, priced from the item catalog.
	lots := f.billLots(bill.ID)
	require.Len(t, lots, 1)
	assert.Equal(t, qty("10"), lots[0].Quantity)
	assert.Equal(t, qty("10"), lots[0].Available)
	assert.True(t, lots[0].CostPrice.Equal(types.MustMoney("2.00")))
	assert.True(t, lots[0].SellingPrice.Equal(types.MustMoney("3.50")))
	assert.Equal(t, bill.BillDate, lots[0].PurchaseDate)

	// Expense for the full total, tagged with the bill.
	exp := f.billExpense(bill.ID)
	require.NotNil(t, exp)
	assert.Equal(t, expense.CategoryPurchase, exp.Category)
	assert.True(t, exp.Amount.Equal(types.MustMoney("24.15")))
	assert.Contains(t, exp.Description, bill.Number)
	assert.Contains(t, exp.Description, "1 extra charges")
}

func TestCreate_SellingPriceFallsBackToCost(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("soap", "0")

	bill, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("5"), UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	lots := f.billLots(bill.ID)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].SellingPrice.Equal(types.MustMoney("2.00")))
}

func TestCreate_ZeroTotalWritesNoExpense(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("sample", "0")

	bill, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("5"), UnitPrice: types.MustMoney("0")}},
	})
	require.NoError(t, err)

	assert.True(t, bill.Total.IsZero())
	assert.Nil(t, f.billExpense(bill.ID))

	// The free stock still arrives.
	lots := f.billLots(bill.ID)
	require.Len(t, lots, 1)
	assert.Equal(t, qty("5"), lots[0].Available)
}

func TestCreate_UnknownItem(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{ItemID: id.New(), Quantity: qty("5"), UnitPrice: types.MustMoney("1.00")}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	// Rolled back: no bill, no lots, no expense.
	assert.Empty(t, f.billRepo.bills)
	assert.Empty(t, f.ledgerRepo.lots)
	assert.Empty(t, f.expenseRepo.expenses)
}

func TestUpdate_RecreatesLotsAndExpense(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("soap", "3.50")

	bill, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("10"), UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(f.ctx, bill.ID, BillInput{
		BillDate: billDate(),
		TaxRate:  money("0"),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("4"), UnitPrice: types.MustMoney("3.00")}},
	})
	require.NoError(t, err)

	assert.Equal(t, bill.Number, updated.Number)
	assert.True(t, updated.Total.Equal(types.MustMoney("12.00")), "total %s", updated.Total)

	lots := f.billLots(bill.ID)
	require.Len(t, lots, 1)
	assert.Equal(t, qty("4"), lots[0].Quantity)
	assert.True(t, lots[0].CostPrice.Equal(types.MustMoney("3.00")))

	exp := f.billExpense(bill.ID)
	require.NotNil(t, exp)
	assert.True(t, exp.Amount.Equal(types.MustMoney("12.00")))

	// Only one expense row exists for the bill.
	assert.Len(t, f.expenseRepo.expenses, 1)
}

func TestUpdate_BlockedWhenStockSold(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("soap", "3.50")

	bill, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("10"), UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	// Simulate a sale drawing from the bill's lot.
	lots := f.billLots(bill.ID)
	lots[0].Available = qty("7")

	_, err = f.svc.Update(f.ctx, bill.ID, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("4"), UnitPrice: types.MustMoney("2.00")}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)

	// Bill and lot unchanged.
	got, err := f.svc.Get(f.ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, qty("10"), got.Lines[0].Quantity)
	require.Len(t, f.billLots(bill.ID), 1)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("soap", "3.50")

	bill, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("10"), UnitPrice: types.MustMoney("2.00")}},
		Charges:  []ChargeInput{{Label: "freight", Amount: types.MustMoney("3.00")}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, bill.ID))

	assert.Empty(t, f.billRepo.bills)
	assert.Empty(t, f.ledgerRepo.lots)
	assert.Empty(t, f.expenseRepo.expenses)
}

func TestDelete_BlockedWhenStockSold(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("soap", "3.50")

	bill, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("10"), UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	lots := f.billLots(bill.ID)
	lots[0].Available = qty("9")

	err = f.svc.Delete(f.ctx, bill.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)

	assert.Len(t, f.billRepo.bills, 1)
	require.NotNil(t, f.billExpense(bill.ID))
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("soap", "3.50")

	bill, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		Status:   StatusPending,
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("1"), UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, bill.Status)

	got, err := f.svc.SetStatus(f.ctx, bill.ID, StatusReceived)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, got.Status)

	_, err = f.svc.SetStatus(f.ctx, bill.ID, Status("done"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestHooks_FireOnEveryOperation(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("soap", "3.50")

	var actions []string
	f.svc.Hooks().OnBeforeCreate(func(ctx context.Context, b *PurchaseBill) error {
		actions = append(actions, "create:"+b.Number)
		return nil
	})
	f.svc.Hooks().OnBeforeUpdate(func(ctx context.Context, b *PurchaseBill) error {
		actions = append(actions, "update")
		return nil
	})
	f.svc.Hooks().OnBeforeDelete(func(ctx context.Context, b *PurchaseBill) error {
		actions = append(actions, "delete")
		return nil
	})
	f.svc.Hooks().OnStatusChange(func(ctx context.Context, b *PurchaseBill) error {
		actions = append(actions, "status:"+string(b.Status))
		return nil
	})

	bill, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("5"), UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(f.ctx, bill.ID, StatusPending)
	require.NoError(t, err)

	_, err = f.svc.Update(f.ctx, bill.ID, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("8"), UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, bill.ID))

	assert.Equal(t, []string{"create:PUR-20260115-001", "status:pending", "update", "delete"}, actions)
}

func TestCreate_DefaultTaxRateIsZero(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("soap", "3.50")

	bill, err := f.svc.Create(f.ctx, BillInput{
		BillDate: billDate(),
		Lines:    []LineInput{{ItemID: it.ID, Quantity: qty("10"), UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)
	assert.True(t, bill.Tax.IsZero())
	assert.True(t, bill.Total.Equal(types.MustMoney("20.00")))
}
