package item

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/actor"
	"stockbook/internal/core/apperror"
	"stockbook/internal/core/tx"
	"stockbook/internal/domain"
	"stockbook/pkg/numerator"
)

// Service provides business logic for the items catalog.
// Common CRUD comes from domain.CatalogService; SKU generation and
// uniqueness are attached as hooks.
type Service struct {
	*domain.CatalogService[*Item]
	repo      Repository
	numerator *numerator.Service
}

func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Item]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "item",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkSKUUnique)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, it *Item) error {
	if it.SKU == "" {
		sku, err := s.numerator.Next(ctx, it.ActorID.String(), numerator.CatalogConfig("ITM"),
			&numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
		if err != nil {
			return fmt.Errorf("generate sku: %w", err)
		}
		it.SKU = sku
		return nil
	}
	return s.checkSKUUnique(ctx, it)
}

func (s *Service) checkSKUUnique(ctx context.Context, it *Item) error {
	existing, err := s.repo.FindBySKU(ctx, it.ActorID, it.SKU)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != it.ID {
		return apperror.NewDuplicate("item", "sku", it.SKU)
	}
	return nil
}

// FindBySKU retrieves an item by SKU for the current actor.
func (s *Service) FindBySKU(ctx context.Context, sku string) (*Item, error) {
	return s.GetByCode(ctx, sku)
}

// FindLowStock retrieves items below their low stock threshold.
func (s *Service) FindLowStock(ctx context.Context, filter domain.ListFilter) ([]StockLevel, error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindLowStock(ctx, actorID, filter)
}
