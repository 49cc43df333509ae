package salesbill

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
	"stockbook/internal/domain/ledger"
	"stockbook/pkg/logger"
	"stockbook/pkg/numerator"
)

// NumberPrefix for sales bill numbers.
const NumberPrefix = "INV"

// Service provides business operations for sales bills.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	numerator *numerator.Service
	txManager tx.Manager
	guard     *policy.Guard
	hooks     *domain.HookRegistry[*SalesBill]
}

func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	num *numerator.Service,
	txManager tx.Manager,
	guard *policy.Guard,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		numerator: num,
		txManager: txManager,
		guard:     guard,
		hooks:     domain.NewHookRegistry[*SalesBill](),
	}
}

// Hooks exposes the registry for attaching audit or other side effects.
// Bill hooks run inside the operation's transaction, so a hook failure
// rolls the whole operation back.
func (s *Service) Hooks() *domain.HookRegistry[*SalesBill] {
	return s.hooks
}

// LineInput is one requested sale position.
type LineInput struct {
	LotID    id.ID
	Quantity types.Quantity

	// UnitPrice overrides the lot's selling price when set.
	UnitPrice *types.Money
}

// ChargeInput is one extra charge.
type ChargeInput struct {
	Label  string
	Amount types.Money
}

// BillInput carries the full content of a sales bill. Create and Update
// both take it; Update replaces the bill with it wholesale.
type BillInput struct {
	ClientID     *id.ID
	CustomerName *string
	BillDate     time.Time
	Status       Status

	// TaxRate as a percentage. Nil applies the standard sales rate.
	TaxRate *types.Money

	Notes   *string
	Lines   []LineInput
	Charges []ChargeInput
}

// Create commits a new sales bill: reserves stock from the referenced
// lots, computes totals and persists the document. Nothing is decremented
// unless every line can be satisfied.
func (s *Service) Create(ctx context.Context, input BillInput) (*SalesBill, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	bill := NewSalesBill(actorID)
	applyInput(bill, input)

	// Number allocation runs outside the business transaction; a failed
	// commit leaves a gap in the day's sequence, never a duplicate.
	number, err := s.numerator.Next(ctx, actorID.String(), numerator.BillConfig(NumberPrefix), nil, bill.BillDate)
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	bill.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.buildLines(ctx, actorID, bill, input.Lines); err != nil {
			return err
		}
		if err := s.finalize(ctx, bill); err != nil {
			return err
		}
		if err := s.hooks.RunBeforeCreate(ctx, bill); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, bill); err != nil {
			return fmt.Errorf("create bill: %w", err)
		}
		if err := s.repo.SaveLines(ctx, bill.ID, bill.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.SaveCharges(ctx, bill.ID, bill.Charges); err != nil {
			return fmt.Errorf("save charges: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sales bill created", "id", bill.ID, "number", bill.Number, "total", bill.Total)
	return bill, nil
}

// Update replaces a sales bill's content. Old lot draws are restored
// first, then the new draws are reserved, so shrinking a line frees stock
// and growing one is checked against the freed availability.
func (s *Service) Update(ctx context.Context, billID id.ID, input BillInput) (*SalesBill, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var bill *SalesBill
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.getWithParts(ctx, actorID, billID)
		if err != nil {
			return err
		}

		oldDraws := toRequirements(bill.Requirements())
		if err := s.ledger.Release(ctx, actorID, oldDraws); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}

		bill.Lines = bill.Lines[:0]
		bill.Charges = bill.Charges[:0]
		applyInput(bill, input)
		bill.UpdatedAt = time.Now().UTC()

		if err := s.buildLines(ctx, actorID, bill, input.Lines); err != nil {
			return err
		}
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
		if err := s.repo.SaveLines(ctx, bill.ID, bill.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.SaveCharges(ctx, bill.ID, bill.Charges); err != nil {
			return fmt.Errorf("save charges: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sales bill updated", "id", bill.ID, "number", bill.Number, "total", bill.Total)
	return bill, nil
}

// Delete removes a sales bill and returns its stock to the lots it drew from.
func (s *Service) Delete(ctx context.Context, billID id.ID) error {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.getWithParts(ctx, actorID, billID)
		if err != nil {
			return err
		}
		if err := s.hooks.RunBeforeDelete(ctx, bill); err != nil {
			return err
		}
		if err := s.ledger.Release(ctx, actorID, toRequirements(bill.Requirements())); err != nil {
			return fmt.Errorf("restore stock: %w", err)
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

	logger.Info(ctx, "sales bill deleted", "id", billID)
	return nil
}

// SetStatus moves a bill between due and paid.
func (s *Service) SetStatus(ctx context.Context, billID id.ID, status Status) (*SalesBill, error) {
	if status != StatusDue && status != StatusPaid {
		return nil, apperror.NewValidation("invalid bill status").WithDetail("value", string(status))
	}

	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var bill *SalesBill
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

// Get retrieves a sales bill with its lines and charges.
func (s *Service) Get(ctx context.Context, billID id.ID) (*SalesBill, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.getWithParts(ctx, actorID, billID)
}

// GetByNumber retrieves a sales bill by its document number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*SalesBill, error) {
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

// List retrieves sales bill headers; table parts are loaded by Get.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesBill], error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return domain.ListResult[*SalesBill]{}, err
	}
	return s.repo.List(ctx, actorID, filter)
}

func (s *Service) getWithParts(ctx context.Context, actorID, billID id.ID) (*SalesBill, error) {
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

// buildLines reserves stock for the requested draws and materializes the
// bill lines from the locked lots: item comes from the lot, and the line
// price defaults to the lot's selling price.
func (s *Service) buildLines(ctx context.Context, actorID id.ID, bill *SalesBill, inputs []LineInput) error {
	if len(inputs) == 0 {
		return apperror.NewValidation("at least one line is required").WithDetail("field", "lines")
	}

	reqs := make([]ledger.Requirement, len(inputs))
	for i, in := range inputs {
		reqs[i] = ledger.Requirement{LotID: in.LotID, Quantity: in.Quantity}
	}

	lots, err := s.ledger.Reserve(ctx, actorID, reqs)
	if err != nil {
		return err
	}

	for _, in := range inputs {
		lot := lots[in.LotID]
		price := lot.SellingPrice
		if in.UnitPrice != nil {
			price = *in.UnitPrice
		}
		bill.AddLine(lot.ID, lot.ItemID, in.Quantity, price)
	}
	return nil
}

// finalize validates the assembled bill and runs it through the policy guard.
func (s *Service) finalize(ctx context.Context, bill *SalesBill) error {
	if err := bill.Validate(ctx); err != nil {
		return err
	}
	return s.guard.Check(ctx, policy.BillFacts{
		BillType:    "sales",
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

func applyInput(bill *SalesBill, input BillInput) {
	bill.ClientID = input.ClientID
	bill.CustomerName = input.CustomerName
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
		bill.TaxRate = totals.DefaultSalesTaxRate
	}
	for _, c := range input.Charges {
		bill.AddCharge(c.Label, c.Amount)
	}
}

func toRequirements(draws []LotDraw) []ledger.Requirement {
	reqs := make([]ledger.Requirement, len(draws))
	for i, d := range draws {
		reqs[i] = ledger.Requirement{LotID: d.LotID, Quantity: d.Quantity}
	}
	return reqs
}
