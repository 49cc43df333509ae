package supplier

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/tx"
	"stockbook/internal/domain"
	"stockbook/pkg/numerator"
)

// Service provides business logic for the suppliers catalog.
type Service struct {
	*domain.CatalogService[*Supplier]
	numerator *numerator.Service
}

func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "supplier",
	})

	svc := &Service{CatalogService: base, numerator: num}
	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, sup *Supplier) error {
	if sup.Code == "" {
		code, err := s.numerator.Next(ctx, sup.ActorID.String(), numerator.CatalogConfig("SUP"),
			&numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
		if err != nil {
			return fmt.Errorf("generate supplier code: %w", err)
		}
		sup.Code = code
	}
	return nil
}
