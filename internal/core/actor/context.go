// Package actor provides request-scoped actor identity.
// The HTTP session layer authenticates the caller and injects the actor
// here; the domain only ever sees an opaque actor ID and scopes every
// read and write to it.
package actor

import (
	"context"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
)

// Actor contains the authenticated caller's identity.
type Actor struct {
	ID    id.ID
	Email string
	Name  string
}

type actorKey struct{}

// WithActor adds the Actor to context.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext returns the Actor from context, or nil if unauthenticated.
func FromContext(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// IDFromContext returns the actor ID from context. An unauthenticated
// context is an error: the domain never operates without an actor.
func IDFromContext(ctx context.Context) (id.ID, error) {
	if a := FromContext(ctx); a != nil && !id.IsNil(a.ID) {
		return a.ID, nil
	}
	return id.Nil(), apperror.NewUnauthorized("no authenticated actor")
}
