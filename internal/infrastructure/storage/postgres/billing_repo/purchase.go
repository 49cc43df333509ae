package billing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/billing/purchasebill"
	"stockbook/internal/infrastructure/storage/postgres"
)

const (
	purchaseBillsTable   = "purchase_bills"
	purchaseLinesTable   = "purchase_bill_lines"
	purchaseChargesTable = "purchase_bill_charges"
)

// PurchaseBillRepo implements purchasebill.Repository.
type PurchaseBillRepo struct {
	*baseBillRepo[*purchasebill.PurchaseBill]
	txManager *postgres.TxManager
}

// NewPurchaseBillRepo creates a new purchase bill repository.
func NewPurchaseBillRepo(txManager *postgres.TxManager) *PurchaseBillRepo {
	return &PurchaseBillRepo{
		baseBillRepo: newBaseBillRepo(txManager, purchaseBillsTable, "purchase bill",
			func() *purchasebill.PurchaseBill { return &purchasebill.PurchaseBill{} }),
		txManager: txManager,
	}
}

// Create inserts the bill header.
func (r *PurchaseBillRepo) Create(ctx context.Context, bill *purchasebill.PurchaseBill) error {
	return r.createHeader(ctx, bill)
}

// Update rewrites the bill header.
func (r *PurchaseBillRepo) Update(ctx context.Context, bill *purchasebill.PurchaseBill) error {
	return r.updateHeader(ctx, bill)
}

// Delete removes the bill header. Lines and charges cascade.
func (r *PurchaseBillRepo) Delete(ctx context.Context, actorID, billID id.ID) error {
	return r.deleteHeader(ctx, actorID, billID)
}

// GetByID retrieves a bill header.
func (r *PurchaseBillRepo) GetByID(ctx context.Context, actorID, billID id.ID) (*purchasebill.PurchaseBill, error) {
	return r.getHeaderByID(ctx, actorID, billID)
}

// GetByNumber retrieves a bill header by document number.
func (r *PurchaseBillRepo) GetByNumber(ctx context.Context, actorID id.ID, number string) (*purchasebill.PurchaseBill, error) {
	return r.getHeaderByNumber(ctx, actorID, number)
}

// List retrieves bill headers with filtering and pagination.
func (r *PurchaseBillRepo) List(ctx context.Context, actorID id.ID, filter purchasebill.ListFilter) (domain.ListResult[*purchasebill.PurchaseBill], error) {
	result := domain.ListResult[*purchasebill.PurchaseBill]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(actorID)

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"bill_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"bill_date": *filter.To})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"supplier_bill_number": pattern},
		})
	}

	q, total, err := r.countAndPage(ctx, q, filter.OrderBy, filter.Limit, filter.Offset)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list purchase bills: %w", err)
	}

	return result, nil
}

// GetLines retrieves the lines of a bill in line order.
func (r *PurchaseBillRepo) GetLines(ctx context.Context, billID id.ID) ([]purchasebill.Line, error) {
	q := r.builder().
		Select(postgres.ExtractDBColumns[purchasebill.Line]()...).
		From(purchaseLinesTable).
		Where(squirrel.Eq{"bill_id": billID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchasebill.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get purchase bill lines: %w", err)
	}

	return lines, nil
}

// GetCharges retrieves the extra charges of a bill.
func (r *PurchaseBillRepo) GetCharges(ctx context.Context, billID id.ID) ([]purchasebill.ExtraCharge, error) {
	q := r.builder().
		Select(postgres.ExtractDBColumns[purchasebill.ExtraCharge]()...).
		From(purchaseChargesTable).
		Where(squirrel.Eq{"bill_id": billID}).
		OrderBy("label")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var charges []purchasebill.ExtraCharge
	if err := pgxscan.Select(ctx, r.querier(ctx), &charges, sql, args...); err != nil {
		return nil, fmt.Errorf("get purchase bill charges: %w", err)
	}

	return charges, nil
}

// SaveLines replaces the lines of a bill.
func (r *PurchaseBillRepo) SaveLines(ctx context.Context, billID id.ID, lines []purchasebill.Line) error {
	columns := []string{"line_id", "bill_id", "line_no", "item_id", "quantity", "unit_price", "line_total", "batch_number", "expiry_date"}

	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{l.LineID, l.BillID, l.LineNo, l.ItemID, l.Quantity, l.UnitPrice, l.LineTotal, l.BatchNumber, l.ExpiryDate})
	}

	return replaceRows(ctx, r.txManager, purchaseLinesTable, billID, columns, rows)
}

// SaveCharges replaces the extra charges of a bill.
func (r *PurchaseBillRepo) SaveCharges(ctx context.Context, billID id.ID, charges []purchasebill.ExtraCharge) error {
	columns := []string{"charge_id", "bill_id", "label", "amount"}

	rows := make([][]any, 0, len(charges))
	for _, c := range charges {
		rows = append(rows, []any{c.ChargeID, c.BillID, c.Label, c.Amount})
	}

	return replaceRows(ctx, r.txManager, purchaseChargesTable, billID, columns, rows)
}

// Ensure interface compliance.
var _ purchasebill.Repository = (*PurchaseBillRepo)(nil)
