package ledger

import (
	"context"
	"sort"
	"time"

	"stockbook/internal/core/actor"
	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
	"stockbook/pkg/logger"
)

// Service manages inventory lots.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// CreateLotInput describes a manually entered lot (outside a purchase bill).
type CreateLotInput struct {
	ItemID       id.ID
	SupplierID   *id.ID
	BatchNumber  *string
	Quantity     types.Quantity
	CostPrice    types.Money
	SellingPrice types.Money
	PurchaseDate time.Time
	ExpiryDate   *time.Time
	Location     *string
	Notes        *string
}

// CreateLot records a lot entered by hand. Lots created by purchase bills
// go through CreateFromPurchase instead so they carry the bill reference.
func (s *Service) CreateLot(ctx context.Context, input CreateLotInput) (*Lot, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	lot := NewLot(actorID, input.ItemID, input.Quantity, input.CostPrice, input.SellingPrice)
	lot.SupplierID = input.SupplierID
	lot.BatchNumber = input.BatchNumber
	lot.ExpiryDate = input.ExpiryDate
	lot.Location = input.Location
	lot.Notes = input.Notes
	if !input.PurchaseDate.IsZero() {
		lot.PurchaseDate = input.PurchaseDate
	}

	if err := lot.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, lot)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "lot created", "lot_id", lot.ID, "item_id", lot.ItemID, "quantity", lot.Quantity)
	return lot, nil
}

// CreateFromPurchase records a lot produced by a purchase bill line.
// Caller is expected to already hold a transaction.
func (s *Service) CreateFromPurchase(ctx context.Context, lot *Lot) error {
	if err := lot.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Create(ctx, lot)
}

// GetLot retrieves a single lot.
func (s *Service) GetLot(ctx context.Context, lotID id.ID) (*Lot, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, actorID, lotID)
}

// ListLots retrieves lots for the current actor.
func (s *Service) ListLots(ctx context.Context, filter ListFilter) (domain.ListResult[*Lot], error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return domain.ListResult[*Lot]{}, err
	}
	return s.repo.List(ctx, actorID, filter)
}

// DeleteLot removes a lot that has never been consumed. A lot referenced by
// sales (available < quantity) cannot be deleted: the sales that drew from it
// must be deleted first, which restores it to untouched.
func (s *Service) DeleteLot(ctx context.Context, lotID id.ID) error {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lot, err := s.repo.GetForUpdate(ctx, actorID, lotID)
		if err != nil {
			return err
		}
		if !lot.IsUntouched() {
			return apperror.NewConflict("lot has consumed stock and cannot be deleted")
		}
		return s.repo.Delete(ctx, actorID, lotID)
	})
}

// Requirement is one lot draw requested by a sale line.
type Requirement struct {
	LotID    id.ID
	Quantity types.Quantity
}

// Reserve consumes stock from the given lots atomically: either every
// requirement is satisfied or nothing is decremented. Multiple requirements
// against the same lot are aggregated before checking, so a sale that draws
// the same lot twice is validated against the combined amount.
//
// Returns the locked lots keyed by ID so callers can read lot prices.
// Must run inside a transaction; the row locks taken here hold until commit.
func (s *Service) Reserve(ctx context.Context, actorID id.ID, reqs []Requirement) (map[id.ID]*Lot, error) {
	if len(reqs) == 0 {
		return map[id.ID]*Lot{}, nil
	}

	needed := make(map[id.ID]types.Quantity, len(reqs))
	for _, r := range reqs {
		if r.Quantity <= 0 {
			return nil, apperror.NewValidation("lot quantity must be positive")
		}
		needed[r.LotID] += r.Quantity
	}

	// Lock in a deterministic order to avoid deadlocks between
	// concurrent sales touching overlapping lot sets.
	lotIDs := make([]id.ID, 0, len(needed))
	for lotID := range needed {
		lotIDs = append(lotIDs, lotID)
	}
	sort.Slice(lotIDs, func(i, j int) bool { return lotIDs[i].String() < lotIDs[j].String() })

	lots := make(map[id.ID]*Lot, len(lotIDs))
	for _, lotID := range lotIDs {
		lot, err := s.repo.GetForUpdate(ctx, actorID, lotID)
		if err != nil {
			return nil, err
		}
		if lot.Available < needed[lotID] {
			return nil, apperror.NewInsufficientStock(lotID.String(), needed[lotID].Float64(), lot.Available.Float64())
		}
		lots[lotID] = lot
	}

	for _, lotID := range lotIDs {
		if err := s.repo.Decrement(ctx, actorID, lotID, needed[lotID]); err != nil {
			return nil, err
		}
	}
	return lots, nil
}

// Release returns previously consumed stock to the given lots, aggregating
// amounts per lot the same way Reserve does. Restoring beyond the lot's
// original quantity is a persistence error, not a silent clamp.
//
// Must run inside a transaction.
func (s *Service) Release(ctx context.Context, actorID id.ID, reqs []Requirement) error {
	if len(reqs) == 0 {
		return nil
	}

	returned := make(map[id.ID]types.Quantity, len(reqs))
	for _, r := range reqs {
		returned[r.LotID] += r.Quantity
	}

	lotIDs := make([]id.ID, 0, len(returned))
	for lotID := range returned {
		lotIDs = append(lotIDs, lotID)
	}
	sort.Slice(lotIDs, func(i, j int) bool { return lotIDs[i].String() < lotIDs[j].String() })

	for _, lotID := range lotIDs {
		if err := s.repo.Restore(ctx, actorID, lotID, returned[lotID]); err != nil {
			return err
		}
	}
	return nil
}

// LotsForPurchase retrieves (and locks) the lots a purchase bill created.
// Caller is expected to already hold a transaction.
func (s *Service) LotsForPurchase(ctx context.Context, actorID, billID id.ID) ([]*Lot, error) {
	return s.repo.ListByPurchaseBill(ctx, actorID, billID)
}

// RemoveForPurchase deletes the lots a purchase bill created. Any lot with
// consumed stock blocks the removal: the sales drawing from it must be
// deleted first.
//
// Caller is expected to already hold a transaction.
func (s *Service) RemoveForPurchase(ctx context.Context, actorID, billID id.ID) error {
	lots, err := s.repo.ListByPurchaseBill(ctx, actorID, billID)
	if err != nil {
		return err
	}
	for _, lot := range lots {
		if !lot.IsUntouched() {
			return apperror.NewConflict("purchase bill stock has been sold").
				WithDetail("lot_id", lot.ID.String())
		}
	}
	return s.repo.DeleteByPurchaseBill(ctx, actorID, billID)
}
