// Package expense provides expense records. Expenses are either entered
// by hand or written automatically when a purchase bill is committed.
package expense

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// CategoryPurchase marks expenses written automatically by purchase bills.
const CategoryPurchase = "purchase"

// Expense represents one money-out record.
type Expense struct {
	ID      id.ID `db:"id" json:"id"`
	ActorID id.ID `db:"actor_id" json:"-"`

	Category    string      `db:"category" json:"category"`
	Amount      types.Money `db:"amount" json:"amount"`
	Description string      `db:"description" json:"description"`
	SpentAt     time.Time   `db:"spent_at" json:"spentAt"`

	// PurchaseBillID links auto-created expenses to their bill.
	// Nil for manual expenses.
	PurchaseBillID *id.ID `db:"purchase_bill_id" json:"purchaseBillId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewExpense creates an expense with required fields.
func NewExpense(actorID id.ID, category string, amount types.Money) *Expense {
	now := time.Now().UTC()
	return &Expense{
		ID:        id.New(),
		ActorID:   actorID,
		Category:  category,
		Amount:    amount,
		SpentAt:   now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsBillLinked reports whether this expense is managed by a purchase bill.
func (e *Expense) IsBillLinked() bool {
	return e.PurchaseBillID != nil
}

// Validate implements domain.Validatable.
func (e *Expense) Validate(ctx context.Context) error {
	if id.IsNil(e.ActorID) {
		return apperror.NewValidation("expense actor is required").WithDetail("field", "actorId")
	}
	if e.Category == "" {
		return apperror.NewValidation("expense category is required").WithDetail("field", "category")
	}
	if !e.Amount.IsPositive() {
		return apperror.NewValidation("expense amount must be positive").WithDetail("field", "amount")
	}
	return nil
}
