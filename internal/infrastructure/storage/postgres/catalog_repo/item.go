package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/infrastructure/storage/postgres"
)

const itemsTable = "items"

// ItemRepo implements item.Repository.
type ItemRepo struct {
	*BaseCatalogRepo[*item.Item]
}

// NewItemRepo creates a new item repository.
func NewItemRepo(txManager *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(BaseCatalogConfig[*item.Item]{
			TxManager:  txManager,
			TableName:  itemsTable,
			EntityName: "item",
			CodeCol:    "sku",
			SearchCols: []string{"sku", "name", "category"},
			NewFn:      func() *item.Item { return &item.Item{} },
		}),
	}
}

// FindBySKU retrieves an item by SKU.
func (r *ItemRepo) FindBySKU(ctx context.Context, actorID id.ID, sku string) (*item.Item, error) {
	return r.GetByCode(ctx, actorID, sku)
}

// lowStockRow joins an item with its summed lot availability.
type lowStockRow struct {
	item.Item
	TotalAvailable types.Quantity `db:"total_available"`
}

// FindLowStock retrieves items whose total lot availability is below
// their low stock threshold. Items without a threshold never report.
func (r *ItemRepo) FindLowStock(ctx context.Context, actorID id.ID, filter domain.ListFilter) ([]item.StockLevel, error) {
	cols := postgres.ExtractDBColumns[item.Item]()
	prefixed := make([]string, len(cols))
	for i, col := range cols {
		prefixed[i] = "i." + col
	}

	sql := fmt.Sprintf(`
		SELECT %s, COALESCE(SUM(l.available), 0) AS total_available
		FROM items i
		LEFT JOIN inventory_lots l ON l.item_id = i.id AND l.actor_id = i.actor_id
		WHERE i.actor_id = $1 AND i.low_stock_threshold IS NOT NULL
		GROUP BY %s
		HAVING COALESCE(SUM(l.available), 0) < i.low_stock_threshold
		ORDER BY i.name
	`, strings.Join(prefixed, ", "), strings.Join(prefixed, ", "))

	if filter.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		sql += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var rows []lowStockRow
	if err := pgxscan.Select(ctx, r.Querier(ctx), &rows, sql, actorID); err != nil {
		return nil, fmt.Errorf("find low stock: %w", err)
	}

	levels := make([]item.StockLevel, 0, len(rows))
	for i := range rows {
		levels = append(levels, item.StockLevel{
			Item:      &rows[i].Item,
			Available: rows[i].TotalAvailable,
		})
	}

	return levels, nil
}

// Ensure interface compliance.
var _ item.Repository = (*ItemRepo)(nil)
