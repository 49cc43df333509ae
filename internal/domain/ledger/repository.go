package ledger

import (
	"context"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
)

// Repository defines storage operations for lots.
// Every operation is scoped to an actor; a lot belonging to another actor
// behaves exactly like a missing lot (NotFound, never Forbidden).
type Repository interface {
	// Create inserts a new lot.
	Create(ctx context.Context, lot *Lot) error

	// GetByID retrieves a lot.
	GetByID(ctx context.Context, actorID, lotID id.ID) (*Lot, error)

	// GetForUpdate retrieves a lot with a row lock, serializing concurrent
	// availability checks against the same lot.
	GetForUpdate(ctx context.Context, actorID, lotID id.ID) (*Lot, error)

	// Decrement atomically subtracts amount from available.
	// The UPDATE carries the condition available >= amount, so an isolation
	// failure surfaces as InsufficientStock instead of corrupting the counter.
	Decrement(ctx context.Context, actorID, lotID id.ID, amount types.Quantity) error

	// Restore atomically adds amount back to available.
	// The UPDATE carries the condition available + amount <= quantity.
	Restore(ctx context.Context, actorID, lotID id.ID, amount types.Quantity) error

	// Delete removes a lot row.
	Delete(ctx context.Context, actorID, lotID id.ID) error

	// ListByPurchaseBill retrieves the lots created by a purchase bill,
	// with row locks.
	ListByPurchaseBill(ctx context.Context, actorID, billID id.ID) ([]*Lot, error)

	// DeleteByPurchaseBill removes the lots created by a purchase bill.
	DeleteByPurchaseBill(ctx context.Context, actorID, billID id.ID) error

	// List retrieves lots with filtering and pagination.
	List(ctx context.Context, actorID id.ID, filter ListFilter) (domain.ListResult[*Lot], error)
}

// ListFilter narrows lot listings.
type ListFilter struct {
	domain.ListFilter

	ItemID      *id.ID
	SupplierID  *id.ID
	InStockOnly bool
}
