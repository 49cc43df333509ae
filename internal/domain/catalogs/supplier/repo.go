package supplier

import (
	"stockbook/internal/domain"
)

// Repository defines persistence for the suppliers catalog.
type Repository interface {
	domain.CatalogRepository[*Supplier]
}
