// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories. Every query is scoped to an actor; an entity of another
// actor behaves exactly like a missing row.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides common CRUD operations for catalog entities.
// Embed this in specific catalog repositories.
type BaseCatalogRepo[T domain.Validatable] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	codeCol    string // column holding the business code (sku, code)
	searchCols []string
	selectCols []string
	newFn      func() T
}

// BaseCatalogConfig configures a base catalog repository.
type BaseCatalogConfig[T domain.Validatable] struct {
	TxManager  *postgres.TxManager
	TableName  string
	EntityName string
	CodeCol    string
	SearchCols []string
	NewFn      func() T
}

// NewBaseCatalogRepo creates a new base catalog repository.
// Column lists come from the entity's db tags, extracted once here.
func NewBaseCatalogRepo[T domain.Validatable](cfg BaseCatalogConfig[T]) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txManager:  cfg.TxManager,
		tableName:  cfg.TableName,
		entityName: cfg.EntityName,
		codeCol:    cfg.CodeCol,
		searchCols: cfg.SearchCols,
		selectCols: postgres.ExtractDBColumns[T](),
		newFn:      cfg.NewFn,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Querier returns the querier for the current context.
func (r *BaseCatalogRepo[T]) Querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	q := r.Builder().
		Insert(r.tableName).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return r.translateWriteErr(err, fmt.Sprintf("insert %s", r.tableName))
	}

	return nil
}

// Update modifies an existing entity. The row is matched on both id and
// actor_id, so an update can never cross actors.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}
	actorID, ok := data["actor_id"]
	if !ok {
		return fmt.Errorf("entity has no 'actor_id' field with db tag")
	}

	// Exclude immutable fields from SET
	filteredData := make(map[string]any, len(data))
	for col, val := range data {
		switch col {
		case "id", "actor_id", "created_at", "updated_at":
			continue
		}
		filteredData[col] = val
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(filteredData).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"actor_id": actorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.translateWriteErr(err, fmt.Sprintf("update %s", r.tableName))
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, fmt.Sprintf("%v", entityID))
	}

	return nil
}

func (r *BaseCatalogRepo[T]) baseSelect(actorID id.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"actor_id": actorID})
}

// GetByID retrieves entity by ID.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, actorID, entityID id.ID) (T, error) {
	q := r.baseSelect(actorID).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	return r.findOne(ctx, q, entityID.String())
}

// GetByCode retrieves entity by its business code.
func (r *BaseCatalogRepo[T]) GetByCode(ctx context.Context, actorID id.ID, code string) (T, error) {
	q := r.baseSelect(actorID).
		Where(squirrel.Eq{r.codeCol: code}).
		Limit(1)

	return r.findOne(ctx, q, code)
}

// findOne executes a SELECT and returns a single entity.
func (r *BaseCatalogRepo[T]) findOne(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, key)
		}
		return entity, fmt.Errorf("get %s: %w", r.entityName, err)
	}

	return entity, nil
}

// Delete performs physical removal from the database.
func (r *BaseCatalogRepo[T]) Delete(ctx context.Context, actorID, entityID id.ID) error {
	q := r.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": entityID, "actor_id": actorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		// Foreign key violation: the entity is referenced by bills or lots
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewConflict("cannot delete: referenced by other records").
				WithDetail("entity", r.entityName).
				WithDetail("id", entityID.String()).
				WithCause(err)
		}
		return fmt.Errorf("delete %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}

	return nil
}

// List retrieves entities with filtering and pagination.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, actorID id.ID, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(actorID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}

	querier := r.Querier(ctx)

	// Count total (before pagination)
	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := postgres.ParseOrderBy(filter.OrderBy, r.selectCols, "name ASC")
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
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

// translateWriteErr maps PostgreSQL constraint violations to domain errors.
func (r *BaseCatalogRepo[T]) translateWriteErr(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.NewConflict(fmt.Sprintf("%s already exists", r.entityName)).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
