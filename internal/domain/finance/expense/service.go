package expense

import (
	"context"
	"time"

	"stockbook/internal/core/actor"
	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
)

// Service manages expense records. Bill-linked expenses are owned by the
// purchase bill lifecycle and cannot be edited or deleted directly.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// CreateInput describes a manually entered expense.
type CreateInput struct {
	Category    string
	Amount      types.Money
	Description string
	SpentAt     time.Time
}

// Create records a manual expense.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Expense, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	e := NewExpense(actorID, input.Category, input.Amount)
	e.Description = input.Description
	if !input.SpentAt.IsZero() {
		e.SpentAt = input.SpentAt
	}
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Get retrieves an expense.
func (s *Service) Get(ctx context.Context, expenseID id.ID) (*Expense, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, actorID, expenseID)
}

// List retrieves expenses for the current actor.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Expense], error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return domain.ListResult[*Expense]{}, err
	}
	return s.repo.List(ctx, actorID, filter)
}

// UpdateInput carries editable expense fields.
type UpdateInput struct {
	Category    string
	Amount      types.Money
	Description string
	SpentAt     time.Time
}

// Update modifies a manual expense.
func (s *Service) Update(ctx context.Context, expenseID id.ID, input UpdateInput) (*Expense, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var updated *Expense
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := s.repo.GetByID(ctx, actorID, expenseID)
		if err != nil {
			return err
		}
		if e.IsBillLinked() {
			return apperror.NewConflict("expense is managed by a purchase bill")
		}

		e.Category = input.Category
		e.Amount = input.Amount
		e.Description = input.Description
		if !input.SpentAt.IsZero() {
			e.SpentAt = input.SpentAt
		}
		e.UpdatedAt = time.Now().UTC()

		if err := e.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a manual expense.
func (s *Service) Delete(ctx context.Context, expenseID id.ID) error {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := s.repo.GetByID(ctx, actorID, expenseID)
		if err != nil {
			return err
		}
		if e.IsBillLinked() {
			return apperror.NewConflict("expense is managed by a purchase bill")
		}
		return s.repo.Delete(ctx, actorID, expenseID)
	})
}

// RecordForPurchase writes or rewrites the expense of a purchase bill.
// Caller is expected to already hold a transaction. A zero or negative
// total removes any prior expense instead of writing one.
func (s *Service) RecordForPurchase(ctx context.Context, actorID, billID id.ID, amount types.Money, description string, spentAt time.Time) error {
	if err := s.repo.DeleteByPurchaseBill(ctx, actorID, billID); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return nil
	}

	e := NewExpense(actorID, CategoryPurchase, amount)
	e.Description = description
	e.PurchaseBillID = &billID
	if !spentAt.IsZero() {
		e.SpentAt = spentAt
	}
	if err := e.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Create(ctx, e)
}

// RemoveForPurchase deletes the expense of a purchase bill.
// Caller is expected to already hold a transaction.
func (s *Service) RemoveForPurchase(ctx context.Context, actorID, billID id.ID) error {
	return s.repo.DeleteByPurchaseBill(ctx, actorID, billID)
}
