// Package finance_repo provides PostgreSQL implementations for finance
// repositories.
package finance_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/finance/expense"
	"stockbook/internal/infrastructure/storage/postgres"
)

const expensesTable = "expenses"

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	txManager  *postgres.TxManager
	builder    squirrel.StatementBuilderType
	selectCols []string
}

// NewExpenseRepo creates a new expense repository.
func NewExpenseRepo(txManager *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{
		txManager:  txManager,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		selectCols: postgres.ExtractDBColumns[expense.Expense](),
	}
}

// Create inserts a new expense.
func (r *ExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	data := postgres.StructToMap(e)

	q := r.builder.Insert(expensesTable).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	return nil
}

func (r *ExpenseRepo) baseSelect(actorID id.ID) squirrel.SelectBuilder {
	return r.builder.
		Select(r.selectCols...).
		From(expensesTable).
		Where(squirrel.Eq{"actor_id": actorID})
}

// GetByID retrieves an expense of one actor.
func (r *ExpenseRepo) GetByID(ctx context.Context, actorID, expenseID id.ID) (*expense.Expense, error) {
	q := r.baseSelect(actorID).Where(squirrel.Eq{"id": expenseID})
	return r.getOne(ctx, q, expenseID.String())
}

// GetByPurchaseBill retrieves the expense written by a purchase bill.
func (r *ExpenseRepo) GetByPurchaseBill(ctx context.Context, actorID, billID id.ID) (*expense.Expense, error) {
	q := r.baseSelect(actorID).Where(squirrel.Eq{"purchase_bill_id": billID})
	return r.getOne(ctx, q, billID.String())
}

func (r *ExpenseRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*expense.Expense, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e expense.Expense
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("expense", key)
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}

	return &e, nil
}

// Update rewrites an expense, matched on id and actor_id.
func (r *ExpenseRepo) Update(ctx context.Context, e *expense.Expense) error {
	data := postgres.StructToMap(e)

	filteredData := make(map[string]any, len(data))
	for col, val := range data {
		switch col {
		case "id", "actor_id", "created_at", "updated_at":
			continue
		}
		filteredData[col] = val
	}

	q := r.builder.
		Update(expensesTable).
		SetMap(filteredData).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": e.ID, "actor_id": e.ActorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("expense", e.ID.String())
	}

	return nil
}

// Delete removes an expense row.
func (r *ExpenseRepo) Delete(ctx context.Context, actorID, expenseID id.ID) error {
	q := r.builder.Delete(expensesTable).
		Where(squirrel.Eq{"id": expenseID, "actor_id": actorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("expense", expenseID.String())
	}

	return nil
}

// DeleteByPurchaseBill removes the expense tied to a purchase bill.
// Zero affected rows is fine: zero-total bills never wrote one.
func (r *ExpenseRepo) DeleteByPurchaseBill(ctx context.Context, actorID, billID id.ID) error {
	q := r.builder.Delete(expensesTable).
		Where(squirrel.Eq{"actor_id": actorID, "purchase_bill_id": billID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete expense by purchase bill: %w", err)
	}

	return nil
}

// List retrieves expenses with filtering and pagination.
func (r *ExpenseRepo) List(ctx context.Context, actorID id.ID, filter expense.ListFilter) (domain.ListResult[*expense.Expense], error) {
	result := domain.ListResult[*expense.Expense]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(actorID)

	if filter.Category != nil {
		q = q.Where(squirrel.Eq{"category": *filter.Category})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"spent_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"spent_at": *filter.To})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"description": "%" + filter.Search + "%"})
	}

	querier := r.txManager.GetQuerier(ctx)

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count expenses: %w", err)
	}

	orderBy, err := postgres.ParseOrderBy(filter.OrderBy, r.selectCols, "spent_at DESC, created_at DESC")
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
		return result, fmt.Errorf("list expenses: %w", err)
	}

	return result, nil
}

// Ensure interface compliance.
var _ expense.Repository = (*ExpenseRepo)(nil)
