package client

import (
	"stockbook/internal/domain"
)

// Repository defines persistence for the clients catalog.
type Repository interface {
	domain.CatalogRepository[*Client]
}
