// Package client provides the customer catalog. Sales bills reference a
// client for receivables tracking.
package client

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
)

// Client represents a customer of the business.
type Client struct {
	ID      id.ID `db:"id" json:"id"`
	ActorID id.ID `db:"actor_id" json:"-"`

	// Code is unique per actor. Generated when empty.
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`

	Email   *string `db:"email" json:"email,omitempty"`
	Phone   *string `db:"phone" json:"phone,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`
	Notes   *string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewClient creates a client with required fields.
func NewClient(actorID id.ID, name string) *Client {
	now := time.Now().UTC()
	return &Client{
		ID:        id.New(),
		ActorID:   actorID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements domain.Validatable.
func (c *Client) Validate(ctx context.Context) error {
	if id.IsNil(c.ActorID) {
		return apperror.NewValidation("client actor is required").WithDetail("field", "actorId")
	}
	if c.Name == "" {
		return apperror.NewValidation("client name is required").WithDetail("field", "name")
	}
	return nil
}
