package domain

import (
	"context"
	"fmt"

	"stockbook/internal/core/actor"
	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
)

// Validatable is implemented by every catalog entity.
type Validatable interface {
	Validate(ctx context.Context) error
}

// CatalogRepository defines CRUD operations for catalog entities.
// Reads are actor-scoped; another actor's entity reads as missing.
type CatalogRepository[T Validatable] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, actorID, entityID id.ID) (T, error)
	GetByCode(ctx context.Context, actorID id.ID, code string) (T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, actorID, entityID id.ID) error
	List(ctx context.Context, actorID id.ID, filter ListFilter) (ListResult[T], error)
}

// CatalogService provides the common CRUD flow for catalog entities.
// Entity-specific behavior (code generation, uniqueness checks) is
// attached through hooks by the concrete catalog services.
type CatalogService[T Validatable] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]

	// entityName for error messages
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T Validatable] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	EntityName string
}

func NewCatalogService[T Validatable](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for entity-specific registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

func (s *CatalogService[T]) normalizeGetErr(err error, idOrCode any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, idOrCode)
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", idOrCode)
}

// Create validates the entity, runs before-create hooks and inserts it.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return err
	}
	if err := s.hooks.RunBeforeCreate(ctx, entity); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
}

// GetByID retrieves an entity of the current actor.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	var zero T
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return zero, err
	}
	entity, err := s.repo.GetByID(ctx, actorID, entityID)
	if err != nil {
		return zero, s.normalizeGetErr(err, entityID.String())
	}
	return entity, nil
}

// GetByCode retrieves an entity by its code (SKU, client code).
func (s *CatalogService[T]) GetByCode(ctx context.Context, code string) (T, error) {
	var zero T
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return zero, err
	}
	entity, err := s.repo.GetByCode(ctx, actorID, code)
	if err != nil {
		return zero, s.normalizeGetErr(err, code)
	}
	return entity, nil
}

// Update validates and persists a modified entity.
func (s *CatalogService[T]) Update(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return err
	}
	if err := s.hooks.RunBeforeUpdate(ctx, entity); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, entity); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
}

// Delete removes an entity after before-delete hooks approve it.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return err
	}
	entity, err := s.repo.GetByID(ctx, actorID, entityID)
	if err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}
	if err := s.hooks.RunBeforeDelete(ctx, entity); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, actorID, entityID); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return nil
	})
}

// List retrieves entities of the current actor.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		return ListResult[T]{}, err
	}
	return s.repo.List(ctx, actorID, filter)
}
