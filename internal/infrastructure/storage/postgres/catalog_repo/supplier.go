package catalog_repo

import (
	"stockbook/internal/domain/catalogs/supplier"
	"stockbook/internal/infrastructure/storage/postgres"
)

const suppliersTable = "suppliers"

// SupplierRepo implements the suppliers catalog repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(BaseCatalogConfig[*supplier.Supplier]{
			TxManager:  txManager,
			TableName:  suppliersTable,
			EntityName: "supplier",
			CodeCol:    "code",
			SearchCols: []string{"code", "name", "contact_person", "email"},
			NewFn:      func() *supplier.Supplier { return &supplier.Supplier{} },
		}),
	}
}
