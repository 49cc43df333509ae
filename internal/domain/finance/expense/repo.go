package expense

import (
	"context"
	"time"

	"stockbook/internal/core/id"
	"stockbook/internal/domain"
)

// Repository defines persistence for expenses.
type Repository interface {
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, actorID, expenseID id.ID) (*Expense, error)
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, actorID, expenseID id.ID) error
	List(ctx context.Context, actorID id.ID, filter ListFilter) (domain.ListResult[*Expense], error)

	// GetByPurchaseBill retrieves the expense written by a purchase bill.
	GetByPurchaseBill(ctx context.Context, actorID, billID id.ID) (*Expense, error)

	// DeleteByPurchaseBill removes the expense tied to a purchase bill.
	// Not an error when the bill never produced one (zero-total bills).
	DeleteByPurchaseBill(ctx context.Context, actorID, billID id.ID) error
}

// ListFilter narrows expense listings.
type ListFilter struct {
	domain.ListFilter

	Category *string
	From     *time.Time
	To       *time.Time
}
