// Package supplier provides the supplier catalog. Purchase bills and
// inventory lots reference a supplier for traceability.
package supplier

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
)

// Supplier represents a vendor the business buys from.
type Supplier struct {
	ID      id.ID `db:"id" json:"id"`
	ActorID id.ID `db:"actor_id" json:"-"`

	// Code is unique per actor. Generated when empty.
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`

	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`
	Email         *string `db:"email" json:"email,omitempty"`
	Phone         *string `db:"phone" json:"phone,omitempty"`
	Address       *string `db:"address" json:"address,omitempty"`
	Notes         *string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewSupplier creates a supplier with required fields.
func NewSupplier(actorID id.ID, name string) *Supplier {
	now := time.Now().UTC()
	return &Supplier{
		ID:        id.New(),
		ActorID:   actorID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements domain.Validatable.
func (s *Supplier) Validate(ctx context.Context) error {
	if id.IsNil(s.ActorID) {
		return apperror.NewValidation("supplier actor is required").WithDetail("field", "actorId")
	}
	if s.Name == "" {
		return apperror.NewValidation("supplier name is required").WithDetail("field", "name")
	}
	return nil
}
