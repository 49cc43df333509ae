// Package ledger_repo provides the PostgreSQL implementation of the
// inventory lot ledger.
package ledger_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/infrastructure/storage/postgres"
)

const lotsTable = "inventory_lots"

// LotRepo implements ledger.Repository.
// Availability math runs inside the UPDATE itself, so concurrent sales
// against the same lot are serialized by the database, not by Go code.
type LotRepo struct {
	txManager  *postgres.TxManager
	builder    squirrel.StatementBuilderType
	selectCols []string
}

// NewLotRepo creates a new lot repository.
func NewLotRepo(txManager *postgres.TxManager) *LotRepo {
	return &LotRepo{
		txManager:  txManager,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		selectCols: postgres.ExtractDBColumns[ledger.Lot](),
	}
}

// Create inserts a new lot.
func (r *LotRepo) Create(ctx context.Context, lot *ledger.Lot) error {
	data := postgres.StructToMap(lot)

	q := r.builder.Insert(lotsTable).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}

	return nil
}

func (r *LotRepo) baseSelect(actorID id.ID) squirrel.SelectBuilder {
	return r.builder.
		Select(r.selectCols...).
		From(lotsTable).
		Where(squirrel.Eq{"actor_id": actorID})
}

// GetByID retrieves a lot of one actor.
func (r *LotRepo) GetByID(ctx context.Context, actorID, lotID id.ID) (*ledger.Lot, error) {
	return r.getOne(ctx, r.baseSelect(actorID).Where(squirrel.Eq{"id": lotID}), lotID)
}

// GetForUpdate retrieves a lot with a row lock.
func (r *LotRepo) GetForUpdate(ctx context.Context, actorID, lotID id.ID) (*ledger.Lot, error) {
	q := r.baseSelect(actorID).
		Where(squirrel.Eq{"id": lotID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, lotID)
}

func (r *LotRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, lotID id.ID) (*ledger.Lot, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lot ledger.Lot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &lot, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("lot", lotID.String())
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}

	return &lot, nil
}

// Decrement atomically subtracts amount from available.
// The availability check lives in the WHERE clause, so a lost race
// surfaces as zero affected rows rather than a negative counter.
func (r *LotRepo) Decrement(ctx context.Context, actorID, lotID id.ID, amount types.Quantity) error {
	sql := `
		UPDATE inventory_lots
		SET available = available - $3, updated_at = NOW()
		WHERE id = $1 AND actor_id = $2 AND available >= $3
	`

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, lotID, actorID, amount)
	if err != nil {
		return fmt.Errorf("decrement lot: %w", err)
	}

	if result.RowsAffected() == 0 {
		available, err := r.currentAvailable(ctx, actorID, lotID)
		if err != nil {
			return err
		}
		return apperror.NewInsufficientStock(lotID.String(), amount.Float64(), available.Float64())
	}

	return nil
}

// Restore atomically adds amount back to available.
// The guard available + amount <= quantity keeps a double release from
// inflating a lot past what was purchased.
func (r *LotRepo) Restore(ctx context.Context, actorID, lotID id.ID, amount types.Quantity) error {
	sql := `
		UPDATE inventory_lots
		SET available = available + $3, updated_at = NOW()
		WHERE id = $1 AND actor_id = $2 AND available + $3 <= quantity
	`

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, lotID, actorID, amount)
	if err != nil {
		return fmt.Errorf("restore lot: %w", err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.currentAvailable(ctx, actorID, lotID); err != nil {
			return err
		}
		return apperror.NewPersistence(errors.New("restore exceeds lot quantity"))
	}

	return nil
}

func (r *LotRepo) currentAvailable(ctx context.Context, actorID, lotID id.ID) (types.Quantity, error) {
	var available types.Quantity

	sql := `SELECT available FROM inventory_lots WHERE id = $1 AND actor_id = $2`
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, lotID, actorID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewNotFound("lot", lotID.String())
	}
	if err != nil {
		return 0, fmt.Errorf("read lot availability: %w", err)
	}

	return available, nil
}

// Delete removes a lot row.
func (r *LotRepo) Delete(ctx context.Context, actorID, lotID id.ID) error {
	q := r.builder.Delete(lotsTable).
		Where(squirrel.Eq{"id": lotID, "actor_id": actorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete lot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("lot", lotID.String())
	}

	return nil
}

// ListByPurchaseBill retrieves the lots created by a purchase bill, with row locks.
func (r *LotRepo) ListByPurchaseBill(ctx context.Context, actorID, billID id.ID) ([]*ledger.Lot, error) {
	q := r.baseSelect(actorID).
		Where(squirrel.Eq{"purchase_bill_id": billID}).
		OrderBy("created_at").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []*ledger.Lot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("list lots by purchase bill: %w", err)
	}

	return lots, nil
}

// DeleteByPurchaseBill removes the lots created by a purchase bill.
func (r *LotRepo) DeleteByPurchaseBill(ctx context.Context, actorID, billID id.ID) error {
	q := r.builder.Delete(lotsTable).
		Where(squirrel.Eq{"actor_id": actorID, "purchase_bill_id": billID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete lots by purchase bill: %w", err)
	}

	return nil
}

// List retrieves lots with filtering and pagination.
func (r *LotRepo) List(ctx context.Context, actorID id.ID, filter ledger.ListFilter) (domain.ListResult[*ledger.Lot], error) {
	result := domain.ListResult[*ledger.Lot]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(actorID)

	if filter.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *filter.ItemID})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.InStockOnly {
		q = q.Where(squirrel.Gt{"available": 0})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"batch_number": pattern},
			squirrel.ILike{"location": pattern},
		})
	}

	querier := r.txManager.GetQuerier(ctx)

	// Count before pagination
	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count lots: %w", err)
	}

	orderBy, err := postgres.ParseOrderBy(filter.OrderBy, r.selectCols, "purchase_date ASC, created_at ASC")
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list lots: %w", err)
	}

	return result, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*LotRepo)(nil)
