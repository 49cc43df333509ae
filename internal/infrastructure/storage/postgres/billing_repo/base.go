// Package billing_repo provides PostgreSQL implementations for bill
// repositories. A bill is stored as a header row plus two table parts
// (lines and extra charges); services compose them.
package billing_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/infrastructure/storage/postgres"
)

// baseBillRepo provides header CRUD shared by both bill types.
type baseBillRepo[T any] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	newFn      func() T
}

func newBaseBillRepo[T any](txManager *postgres.TxManager, tableName, entityName string, newFn func() T) *baseBillRepo[T] {
	return &baseBillRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		entityName: entityName,
		selectCols: postgres.ExtractDBColumns[T](),
		newFn:      newFn,
	}
}

func (r *baseBillRepo[T]) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *baseBillRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// createHeader inserts the bill header using its "db" tags.
// Table parts carry no db tag and are persisted separately.
func (r *baseBillRepo[T]) createHeader(ctx context.Context, bill T) error {
	data := postgres.StructToMap(bill)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in bill")
	}

	q := r.builder().Insert(r.tableName).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict(fmt.Sprintf("%s number already exists", r.entityName)).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}

	return nil
}

// updateHeader rewrites the bill header, matched on id and actor_id.
func (r *baseBillRepo[T]) updateHeader(ctx context.Context, bill T) error {
	data := postgres.StructToMap(bill)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in bill")
	}

	billID, ok := data["id"]
	if !ok {
		return fmt.Errorf("bill has no 'id' field with db tag")
	}
	actorID, ok := data["actor_id"]
	if !ok {
		return fmt.Errorf("bill has no 'actor_id' field with db tag")
	}

	filteredData := make(map[string]any, len(data))
	for col, val := range data {
		switch col {
		case "id", "actor_id", "number", "created_at", "updated_at":
			// number is immutable once assigned
			continue
		}
		filteredData[col] = val
	}

	q := r.builder().
		Update(r.tableName).
		SetMap(filteredData).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": billID}).
		Where(squirrel.Eq{"actor_id": actorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, fmt.Sprintf("%v", billID))
	}

	return nil
}

// deleteHeader removes a bill header row. Table part rows cascade.
func (r *baseBillRepo[T]) deleteHeader(ctx context.Context, actorID, billID id.ID) error {
	q := r.builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": billID, "actor_id": actorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, billID.String())
	}

	return nil
}

func (r *baseBillRepo[T]) baseSelect(actorID id.ID) squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"actor_id": actorID})
}

// getHeader executes a SELECT and returns a single bill header.
func (r *baseBillRepo[T]) getHeader(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	bill := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return bill, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), bill, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return bill, apperror.NewNotFound(r.entityName, key)
		}
		return bill, fmt.Errorf("get %s: %w", r.entityName, err)
	}

	return bill, nil
}

// getHeaderByID retrieves a bill header of one actor.
func (r *baseBillRepo[T]) getHeaderByID(ctx context.Context, actorID, billID id.ID) (T, error) {
	return r.getHeader(ctx, r.baseSelect(actorID).Where(squirrel.Eq{"id": billID}), billID.String())
}

// getHeaderByNumber retrieves a bill header by document number.
func (r *baseBillRepo[T]) getHeaderByNumber(ctx context.Context, actorID id.ID, number string) (T, error) {
	return r.getHeader(ctx, r.baseSelect(actorID).Where(squirrel.Eq{"number": number}), number)
}

// countAndPage counts rows matching q, then applies ordering and pagination.
func (r *baseBillRepo[T]) countAndPage(ctx context.Context, q squirrel.SelectBuilder, orderBy string, limit, offset int) (squirrel.SelectBuilder, int64, error) {
	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return q, 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return q, 0, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	order, err := postgres.ParseOrderBy(orderBy, r.selectCols, "bill_date DESC, created_at DESC")
	if err != nil {
		return q, 0, err
	}
	q = q.OrderBy(order)

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	return q, total, nil
}

// replaceRows deletes all rows of a table part for a bill and bulk
// inserts the replacement set via COPY.
func replaceRows(ctx context.Context, txManager *postgres.TxManager, table string, billID id.ID, columns []string, rows [][]any) error {
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Delete(table).
		Where(squirrel.Eq{"bill_id": billID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}

	if len(rows) == 0 {
		return nil
	}

	inserter := postgres.NewBatchInserter(txManager)
	if _, err := inserter.CopyFromSlice(ctx, table, columns, rows); err != nil {
		return fmt.Errorf("copy %s: %w", table, err)
	}

	return nil
}
