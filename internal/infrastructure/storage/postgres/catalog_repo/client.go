package catalog_repo

import (
	"stockbook/internal/domain/catalogs/client"
	"stockbook/internal/infrastructure/storage/postgres"
)

const clientsTable = "clients"

// ClientRepo implements the clients catalog repository.
type ClientRepo struct {
	*BaseCatalogRepo[*client.Client]
}

// NewClientRepo creates a new client repository.
func NewClientRepo(txManager *postgres.TxManager) *ClientRepo {
	return &ClientRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(BaseCatalogConfig[*client.Client]{
			TxManager:  txManager,
			TableName:  clientsTable,
			EntityName: "client",
			CodeCol:    "code",
			SearchCols: []string{"code", "name", "email", "phone"},
			NewFn:      func() *client.Client { return &client.Client{} },
		}),
	}
}
