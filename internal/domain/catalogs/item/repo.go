package item

import (
	"context"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
)

// StockLevel is an item joined with its summed lot availability.
type StockLevel struct {
	Item      *Item          `json:"item"`
	Available types.Quantity `json:"available"`
}

// Repository defines persistence for the items catalog.
type Repository interface {
	domain.CatalogRepository[*Item]

	// FindBySKU retrieves an item by SKU.
	FindBySKU(ctx context.Context, actorID id.ID, sku string) (*Item, error)

	// FindLowStock retrieves items whose total lot availability is below
	// their low stock threshold.
	FindLowStock(ctx context.Context, actorID id.ID, filter domain.ListFilter) ([]StockLevel, error)
}
