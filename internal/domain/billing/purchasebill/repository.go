package purchasebill

import (
	"context"
	"time"

	"stockbook/internal/core/id"
	"stockbook/internal/domain"
)

// Repository defines persistence for purchase bills.
type Repository interface {
	Create(ctx context.Context, bill *PurchaseBill) error
	Update(ctx context.Context, bill *PurchaseBill) error
	Delete(ctx context.Context, actorID, billID id.ID) error

	GetByID(ctx context.Context, actorID, billID id.ID) (*PurchaseBill, error)
	GetByNumber(ctx context.Context, actorID id.ID, number string) (*PurchaseBill, error)
	List(ctx context.Context, actorID id.ID, filter ListFilter) (domain.ListResult[*PurchaseBill], error)

	GetLines(ctx context.Context, billID id.ID) ([]Line, error)
	GetCharges(ctx context.Context, billID id.ID) ([]ExtraCharge, error)

	// SaveLines replaces the lines of a bill.
	SaveLines(ctx context.Context, billID id.ID, lines []Line) error

	// SaveCharges replaces the extra charges of a bill.
	SaveCharges(ctx context.Context, billID id.ID, charges []ExtraCharge) error
}

// ListFilter narrows purchase bill listings.
type ListFilter struct {
	domain.ListFilter

	Status     *Status
	SupplierID *id.ID
	From       *time.Time
	To         *time.Time
}
