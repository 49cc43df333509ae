package domain

import "context"

// Hook is a callback invoked around catalog operations.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry lets services attach entity-specific behavior
// (code generation, uniqueness checks, audit) to the CRUD flow.
// Document services additionally expose a status transition hook.
type HookRegistry[T any] struct {
	beforeCreate []Hook[T]
	beforeUpdate []Hook[T]
	beforeDelete []Hook[T]
	statusChange []Hook[T]
}

func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{}
}

func (r *HookRegistry[T]) OnBeforeCreate(h Hook[T]) { r.beforeCreate = append(r.beforeCreate, h) }
func (r *HookRegistry[T]) OnBeforeUpdate(h Hook[T]) { r.beforeUpdate = append(r.beforeUpdate, h) }
func (r *HookRegistry[T]) OnBeforeDelete(h Hook[T]) { r.beforeDelete = append(r.beforeDelete, h) }
func (r *HookRegistry[T]) OnStatusChange(h Hook[T]) { r.statusChange = append(r.statusChange, h) }

func (r *HookRegistry[T]) RunBeforeCreate(ctx context.Context, e T) error {
	return runHooks(ctx, r.beforeCreate, e)
}

func (r *HookRegistry[T]) RunBeforeUpdate(ctx context.Context, e T) error {
	return runHooks(ctx, r.beforeUpdate, e)
}

func (r *HookRegistry[T]) RunBeforeDelete(ctx context.Context, e T) error {
	return runHooks(ctx, r.beforeDelete, e)
}

func (r *HookRegistry[T]) RunStatusChange(ctx context.Context, e T) error {
	return runHooks(ctx, r.statusChange, e)
}

func runHooks[T any](ctx context.Context, hooks []Hook[T], e T) error {
	for _, h := range hooks {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
