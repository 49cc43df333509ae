package purchasebill

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/actor"
	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/policy"
	"stockbook/internal/core/tx"
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
	"stockbook/internal/domain/billing/totals"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/domain/finance/expense"
	"stockbook/internal/domain/ledger"
	"stockbook/pkg/logger"
	"stockbook/pkg/numerator"
)

// NumberPrefix for purchase bill numbers.
const NumberPrefix = "PUR"

// Service provides business operations for purchase bills.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	expenses  *expense.Service
	items     item.Repository
	numerator *numerator.Service
	txManager tx.Manager
	guard     *policy.Guard
	hooks     *domain.HookRegistry[*PurchaseBill]
}

func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	expenses *expense.Service,
	items item.Repository,
	num *numerator.Service,
	txManager tx.Manager,
	guard *policy.Guard,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		expenses:  expenses,
		items:     items,
		numerator: num,
		txManager: txManager,
		guard:     guard,
		hooks:     domain.NewHookRegistry[*PurchaseBill](),
	}
}

// Hooks exposes the registry for attaching audit or other side effects.
// Bill hooks run inside the operation's transaction, so a hook failure
// rolls the whole operation back.
func (s *Service) Hooks() *domain.HookRegistry[*PurchaseBill] {
	return s.hooks
}

// LineInput is one purchased position.
type LineInput struct {
	ItemID   id.ID
	Quantity types.Quantity

	// UnitPrice is the cost per unit paid to the supplier.
	UnitPrice types.Money

	BatchNumber *string
	ExpiryDate  *time.Time
}

// ChargeInput is one extra charge.
type ChargeInput struct {
	Label  string
	Amount types.Money
}

// BillInput carries the full content of a purchase bill.
type BillInput struct {
	SupplierID         *id.ID
	SupplierBillNumber *string
	BillDate           time.Time
	Status             Status

	// TaxRate as a percentage. Nil applies the standard purchase rate.
	TaxRate *types.Money

	Notes   *string
	Lines   []LineInput
	Charges []ChargeInput
}

// Create commits a new purchase bill: persists the document, creates one
// inventory lot per line and records the total as a purchase expense.
func (s *Service) Create(ctx context.Context, input BillInput) (*PurchaseBill, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	bill := NewPurchaseBill(actorID)
	applyInput(bill, input)

	number, err := s.numerator.Next(ctx, actorID.String(), numerator.BillConfig(NumberPrefix), nil, bill.BillDate)
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	bill.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		buildLines(bill, input.Lines)
		if err := s.finalize(ctx, bill); err != nil {
			return err
		}
		if err := s.hooks.RunBeforeCreate(ctx, bill); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, bill); err != nil {
			return fmt.Errorf("create bill: %w", err)
		}
		if err := s.saveParts(ctx, bill); err != nil {
			return err
		}
		if err := s.createLots(ctx, actorID, bill); err != nil {
			return err
		}
		return s.recordExpense(ctx, actorID, bill)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase bill created", "id", bill.ID, "number", bill.Number, "total", bill.Total)
	return bill, nil
}

// Update replaces a purchase bill's content, recreating its lots and its
// expense. Blocked when any of the bill's stock has already been sold.
func (s *Service) Update(ctx context.Context, billID id.ID, input BillInput) (*PurchaseBill, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var bill *PurchaseBill
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.getWithParts(ctx, actorID, billID)
		if err != nil {
			return err
		}

		if err := s.ledger.RemoveForPurchase(ctx, actorID, billID); err != nil {
			return err
		}

		bill.Lines = bill.Lines[:0]
		bill.Charges = bill.Charges[:0]
		applyInput(bill, input)
		bill.UpdatedAt = time.Now().UTC()

		buildLines(bill, input.Lines)
		if err := s.finalize(ctx, bill); err != nil {
			return err
		}
		// The stored row still holds the previous state here, so update
		// hooks can diff against it.
		if err := s.hooks.RunBeforeUpdate(ctx, bill); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, bill); err != nil {
			return fmt.Errorf("update bill: %w", err)
		}
		if err := s.saveParts(ctx, bill); err != nil {
			return err
		}
		if err := s.createLots(ctx, actorID, bill); err != nil {
			return err
		}
		return s.recordExpense(ctx, actorID, bill)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase bill updated", "id", bill.ID, "number", bill.Number, "total", bill.Total)
	return bill, nil
}

// Delete removes a purchase bill together with its lots and its expense.
// Blocked when any of the bill's stock has already been sold.
func (s *Service) Delete(ctx context.Context, billID id.ID) error {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.repo.GetByID(ctx, actorID, billID)
		if err != nil {
			return err
		}
		if err := s.hooks.RunBeforeDelete(ctx, bill); err != nil {
			return err
		}
		if err := s.ledger.RemoveForPurchase(ctx, actorID, billID); err != nil {
			return err
		}
		if err := s.expenses.RemoveForPurchase(ctx, actorID, billID); err != nil {
			return err
		}
		if err := s.repo.SaveLines(ctx, billID, nil); err != nil {
			return fmt.Errorf("delete lines: %w", err)
		}
		if err := s.repo.SaveCharges(ctx, billID, nil); err != nil {
			return fmt.Errorf("delete charges: %w", err)
		}
		return s.repo.Delete(ctx, actorID, billID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase bill deleted", "id", billID)
	return nil
}

// SetStatus moves a bill between pending, received and cancelled.
func (s *Service) SetStatus(ctx context.Context, billID id.ID, status Status) (*PurchaseBill, error) {
	if status != StatusPending && status != StatusReceived && status != StatusCancelled {
		return nil, apperror.NewValidation("invalid bill status").WithDetail("value", string(status))
	}

	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var bill *PurchaseBill
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.getWithParts(ctx, actorID, billID)
		if err != nil {
			return err
		}
		bill.Status = status
		bill.UpdatedAt = time.Now().UTC()
		if err := s.hooks.RunStatusChange(ctx, bill); err != nil {
			return err
		}
		return s.repo.Update(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// Get retrieves a purchase bill with its lines and charges.
func (s *Service) Get(ctx context.Context, billID id.ID) (*PurchaseBill, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.getWithParts(ctx, actorID, billID)
}

// GetByNumber retrieves a purchase bill by its document number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*PurchaseBill, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	bill, err := s.repo.GetByNumber(ctx, actorID, number)
	if err != nil {
		return nil, err
	}
	return s.getWithParts(ctx, actorID, bill.ID)
}

// List retrieves purchase bill headers.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseBill], error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return domain.ListResult[*PurchaseBill]{}, err
	}
	return s.repo.List(ctx, actorID, filter)
}

func (s *Service) getWithParts(ctx context.Context, actorID, billID id.ID) (*PurchaseBill, error) {
	bill, err := s.repo.GetByID(ctx, actorID, billID)
	if err != nil {
		return nil, err
	}
	if bill.Lines, err = s.repo.GetLines(ctx, billID); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	if bill.Charges, err = s.repo.GetCharges(ctx, billID); err != nil {
		return nil, fmt.Errorf("get charges: %w", err)
	}
	return bill, nil
}

func (s *Service) saveParts(ctx context.Context, bill *PurchaseBill) error {
	if err := s.repo.SaveLines(ctx, bill.ID, bill.Lines); err != nil {
		return fmt.Errorf("save lines: %w", err)
	}
	if err := s.repo.SaveCharges(ctx, bill.ID, bill.Charges); err != nil {
		return fmt.Errorf("save charges: %w", err)
	}
	return nil
}

// createLots materializes one inventory lot per line. The lot's selling
// price comes from the item catalog; items without a configured selling
// price fall back to the purchase cost.
func (s *Service) createLots(ctx context.Context, actorID id.ID, bill *PurchaseBill) error {
	for i := range bill.Lines {
		line := &bill.Lines[i]

		sellingPrice := line.UnitPrice
		it, err := s.items.GetByID(ctx, actorID, line.ItemID)
		if err != nil {
			if !apperror.IsNotFound(err) {
				return err
			}
			return apperror.NewNotFound("item", line.ItemID.String())
		}
		if it.SellingPrice.IsPositive() {
			sellingPrice = it.SellingPrice
		}

		lot := ledger.NewLot(actorID, line.ItemID, line.Quantity, line.UnitPrice, sellingPrice)
		lot.SupplierID = bill.SupplierID
		lot.PurchaseBillID = &bill.ID
		lot.BatchNumber = line.BatchNumber
		lot.ExpiryDate = line.ExpiryDate
		lot.PurchaseDate = bill.BillDate

		if err := s.ledger.CreateFromPurchase(ctx, lot); err != nil {
			return fmt.Errorf("create lot for line %d: %w", line.LineNo, err)
		}
	}
	return nil
}

// recordExpense writes the bill total as a purchase expense. Zero-total
// bills produce no expense (and clear any previously written one).
func (s *Service) recordExpense(ctx context.Context, actorID id.ID, bill *PurchaseBill) error {
	desc := fmt.Sprintf("Purchase bill %s", bill.Number)
	if n := len(bill.Charges); n > 0 {
		desc = fmt.Sprintf("%s (%d extra charges)", desc, n)
	}
	return s.expenses.RecordForPurchase(ctx, actorID, bill.ID, bill.Total, desc, bill.BillDate)
}

func (s *Service) finalize(ctx context.Context, bill *PurchaseBill) error {
	if err := bill.Validate(ctx); err != nil {
		return err
	}
	return s.guard.Check(ctx, policy.BillFacts{
		BillType:    "purchase",
		Status:      string(bill.Status),
		Subtotal:    bill.Subtotal,
		ExtraTotal:  bill.ExtraChargesTotal,
		Tax:         bill.Tax,
		Total:       bill.Total,
		TaxRate:     bill.TaxRate,
		LineCount:   len(bill.Lines),
		ChargeCount: len(bill.Charges),
	})
}

func applyInput(bill *PurchaseBill, input BillInput) {
	bill.SupplierID = input.SupplierID
	bill.SupplierBillNumber = input.SupplierBillNumber
	bill.Notes = input.Notes
	if !input.BillDate.IsZero() {
		bill.BillDate = input.BillDate
	}
	if input.Status != "" {
		bill.Status = input.Status
	}
	if input.TaxRate != nil {
		bill.TaxRate = *input.TaxRate
	} else {
		bill.TaxRate = totals.DefaultPurchaseTaxRate
	}
	for _, c := range input.Charges {
		bill.AddCharge(c.Label, c.Amount)
	}
}

func buildLines(bill *PurchaseBill, inputs []LineInput) {
	for _, in := range inputs {
		line := bill.AddLine(in.ItemID, in.Quantity, in.UnitPrice)
		line.BatchNumber = in.BatchNumber
		line.ExpiryDate = in.ExpiryDate
	}
}
