package billing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/billing/salesbill"
	"stockbook/internal/infrastructure/storage/postgres"
)

const (
	salesBillsTable   = "sales_bills"
	salesLinesTable   = "sales_bill_lines"
	salesChargesTable = "sales_bill_charges"
)

// SalesBillRepo implements salesbill.Repository.
type SalesBillRepo struct {
	*baseBillRepo[*salesbill.SalesBill]
	txManager *postgres.TxManager
}

// NewSalesBillRepo creates a new sales bill repository.
func NewSalesBillRepo(txManager *postgres.TxManager) *SalesBillRepo {
	return &SalesBillRepo{
		baseBillRepo: newBaseBillRepo(txManager, salesBillsTable, "sales bill",
			func() *salesbill.SalesBill { return &salesbill.SalesBill{} }),
		txManager: txManager,
	}
}

// Create inserts the bill header.
func (r *SalesBillRepo) Create(ctx context.Context, bill *salesbill.SalesBill) error {
	return r.createHeader(ctx, bill)
}

// Update rewrites the bill header.
func (r *SalesBillRepo) Update(ctx context.Context, bill *salesbill.SalesBill) error {
	return r.updateHeader(ctx, bill)
}

// Delete removes the bill header. Lines and charges cascade.
func (r *SalesBillRepo) Delete(ctx context.Context, actorID, billID id.ID) error {
	return r.deleteHeader(ctx, actorID, billID)
}

// GetByID retrieves a bill header.
func (r *SalesBillRepo) GetByID(ctx context.Context, actorID, billID id.ID) (*salesbill.SalesBill, error) {
	return r.getHeaderByID(ctx, actorID, billID)
}

// GetByNumber retrieves a bill header by document number.
func (r *SalesBillRepo) GetByNumber(ctx context.Context, actorID id.ID, number string) (*salesbill.SalesBill, error) {
	return r.getHeaderByNumber(ctx, actorID, number)
}

// List retrieves bill headers with filtering and pagination.
func (r *SalesBillRepo) List(ctx context.Context, actorID id.ID, filter salesbill.ListFilter) (domain.ListResult[*salesbill.SalesBill], error) {
	result := domain.ListResult[*salesbill.SalesBill]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(actorID)

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *filter.ClientID})
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
			squirrel.ILike{"customer_name": pattern},
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
		return result, fmt.Errorf("list sales bills: %w", err)
	}

	return result, nil
}

// GetLines retrieves the lines of a bill in line order.
func (r *SalesBillRepo) GetLines(ctx context.Context, billID id.ID) ([]salesbill.Line, error) {
	q := r.builder().
		Select(postgres.ExtractDBColumns[salesbill.Line]()...).
		From(salesLinesTable).
		Where(squirrel.Eq{"bill_id": billID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []salesbill.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get sales bill lines: %w", err)
	}

	return lines, nil
}

// GetCharges retrieves the extra charges of a bill.
func (r *SalesBillRepo) GetCharges(ctx context.Context, billID id.ID) ([]salesbill.ExtraCharge, error) {
	q := r.builder().
		Select(postgres.ExtractDBColumns[salesbill.ExtraCharge]()...).
		From(salesChargesTable).
		Where(squirrel.Eq{"bill_id": billID}).
		OrderBy("label")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var charges []salesbill.ExtraCharge
	if err := pgxscan.Select(ctx, r.querier(ctx), &charges, sql, args...); err != nil {
		return nil, fmt.Errorf("get sales bill charges: %w", err)
	}

	return charges, nil
}

// SaveLines replaces the lines of a bill.
func (r *SalesBillRepo) SaveLines(ctx context.Context, billID id.ID, lines []salesbill.Line) error {
	columns := []string{"line_id", "bill_id", "line_no", "lot_id", "item_id", "quantity", "unit_price", "line_total"}

	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{l.LineID, l.BillID, l.LineNo, l.LotID, l.ItemID, l.Quantity, l.UnitPrice, l.LineTotal})
	}

	return replaceRows(ctx, r.txManager, salesLinesTable, billID, columns, rows)
}

// SaveCharges replaces the extra charges of a bill.
func (r *SalesBillRepo) SaveCharges(ctx context.Context, billID id.ID, charges []salesbill.ExtraCharge) error {
	columns := []string{"charge_id", "bill_id", "label", "amount"}

	rows := make([][]any, 0, len(charges))
	for _, c := range charges {
		rows = append(rows, []any{c.ChargeID, c.BillID, c.Label, c.Amount})
	}

	return replaceRows(ctx, r.txManager, salesChargesTable, billID, columns, rows)
}

// Ensure interface compliance.
var _ salesbill.Repository = (*SalesBillRepo)(nil)
