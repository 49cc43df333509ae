package client

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/tx"
	"stockbook/internal/domain"
	"stockbook/pkg/numerator"
)

// Service provides business logic for the clients catalog.
type Service struct {
	*domain.CatalogService[*Client]
	numerator *numerator.Service
}

func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Client]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "client",
	})

	svc := &Service{CatalogService: base, numerator: num}
	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, c *Client) error {
	if c.Code == "" {
		code, err := s.numerator.Next(ctx, c.ActorID.String(), numerator.CatalogConfig("CLI"),
			&numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
		if err != nil {
			return fmt.Errorf("generate client code: %w", err)
		}
		c.Code = code
	}
	return nil
}
