// Package ledger owns inventory lots: the source of stock truth.
// A lot is a quantity of one catalog item received through a single
// purchase event, carrying its own cost price, selling price, batch and
// expiry. Sales consume lots; reversals restore them.
package ledger

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// Lot represents one receipt of stock for one item.
//
// Quantity is the total received and never changes after creation.
// Available is the portion not yet consumed by any sales bill, and is only
// mutated through the ledger service's decrement/restore operations.
// Invariant: 0 ≤ Available ≤ Quantity.
type Lot struct {
	ID      id.ID `db:"id" json:"id"`
	ActorID id.ID `db:"actor_id" json:"-"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// SupplierID and PurchaseBillID are back-references, not ownership:
	// deleting a bill never deletes the lot.
	SupplierID     *id.ID `db:"supplier_id" json:"supplierId,omitempty"`
	PurchaseBillID *id.ID `db:"purchase_bill_id" json:"purchaseBillId,omitempty"`

	BatchNumber *string `db:"batch_number" json:"batchNumber,omitempty"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Available types.Quantity `db:"available" json:"available"`

	// Prices are frozen at receipt time ("price snapshot"): the catalog's
	// default selling price is read once, when the lot is created.
	CostPrice    types.Money `db:"cost_price" json:"costPrice"`
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`

	PurchaseDate time.Time  `db:"purchase_date" json:"purchaseDate"`
	ExpiryDate   *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`
	Location     *string    `db:"location" json:"location,omitempty"`
	Notes        *string    `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewLot creates a lot with the full received quantity available.
func NewLot(actorID, itemID id.ID, quantity types.Quantity, costPrice, sellingPrice types.Money) *Lot {
	now := time.Now().UTC()
	return &Lot{
		ID:           id.New(),
		ActorID:      actorID,
		ItemID:       itemID,
		Quantity:     quantity,
		Available:    quantity,
		CostPrice:    costPrice,
		SellingPrice: sellingPrice,
		PurchaseDate: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks lot invariants.
func (l *Lot) Validate(ctx context.Context) error {
	if id.IsNil(l.ActorID) {
		return apperror.NewValidation("actor is required").
			WithDetail("field", "actorId")
	}
	if id.IsNil(l.ItemID) {
		return apperror.NewValidation("item is required").
			WithDetail("field", "itemId")
	}
	if !l.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if l.Available.IsNegative() || l.Available > l.Quantity {
		return apperror.NewValidation("available must be between 0 and quantity").
			WithDetail("field", "available")
	}
	if l.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price cannot be negative").
			WithDetail("field", "costPrice")
	}
	if l.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling price cannot be negative").
			WithDetail("field", "sellingPrice")
	}
	return nil
}

// IsUntouched reports whether no sales bill has consumed from the lot.
// Only untouched lots may be deleted.
func (l *Lot) IsUntouched() bool {
	return l.Available == l.Quantity
}
