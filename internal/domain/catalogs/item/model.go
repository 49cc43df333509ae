// Package item provides the sellable items catalog. An item is the
// product identity; actual stock lives in inventory lots that reference it.
package item

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// Item represents a product the business buys and sells.
type Item struct {
	ID      id.ID `db:"id" json:"id"`
	ActorID id.ID `db:"actor_id" json:"-"`

	// SKU is the item code, unique per actor. Generated when empty.
	SKU  string `db:"sku" json:"sku"`
	Name string `db:"name" json:"name"`

	Description *string `db:"description" json:"description,omitempty"`
	Category    *string `db:"category" json:"category,omitempty"`

	// Unit of measure label ("pcs", "kg"); informational only.
	Unit string `db:"unit" json:"unit"`

	// CostPrice is the default purchase price suggestion.
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// SellingPrice is the default selling price for new lots of this item.
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`

	// LowStockThreshold triggers the low-stock report when total
	// availability across lots drops below it. Nil disables the check.
	LowStockThreshold *types.Quantity `db:"low_stock_threshold" json:"lowStockThreshold,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewItem creates an item with required fields.
func NewItem(actorID id.ID, name string) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:           id.New(),
		ActorID:      actorID,
		Name:         name,
		Unit:         "pcs",
		CostPrice:    types.ZeroMoney(),
		SellingPrice: types.ZeroMoney(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate implements domain.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if id.IsNil(i.ActorID) {
		return apperror.NewValidation("item actor is required").WithDetail("field", "actorId")
	}
	if i.Name == "" {
		return apperror.NewValidation("item name is required").WithDetail("field", "name")
	}
	if i.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price cannot be negative").WithDetail("field", "costPrice")
	}
	if i.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling price cannot be negative").WithDetail("field", "sellingPrice")
	}
	if i.LowStockThreshold != nil && i.LowStockThreshold.IsNegative() {
		return apperror.NewValidation("low stock threshold cannot be negative").WithDetail("field", "lowStockThreshold")
	}
	return nil
}
