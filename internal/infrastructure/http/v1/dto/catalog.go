package dto

import (
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/catalogs/client"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/domain/catalogs/supplier"
)

// --- Items ---

// CreateItemRequest for creating items. SKU left empty is generated.
type CreateItemRequest struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name" binding:"required"`
	Description       *string         `json:"description"`
	Category          *string         `json:"category"`
	Unit              string          `json:"unit"`
	CostPrice         types.Money     `json:"costPrice"`
	SellingPrice      types.Money     `json:"sellingPrice"`
	LowStockThreshold *types.Quantity `json:"lowStockThreshold"`
}

// ToEntity builds an item owned by actorID.
func (r CreateItemRequest) ToEntity(actorID id.ID) *item.Item {
	it := item.NewItem(actorID, r.Name)
	it.SKU = r.SKU
	it.Description = r.Description
	it.Category = r.Category
	if r.Unit != "" {
		it.Unit = r.Unit
	}
	it.CostPrice = r.CostPrice
	it.SellingPrice = r.SellingPrice
	it.LowStockThreshold = r.LowStockThreshold
	return it
}

// UpdateItemRequest for updating items. Nil fields keep current values.
type UpdateItemRequest struct {
	Name              *string         `json:"name"`
	Description       *string         `json:"description"`
	Category          *string         `json:"category"`
	Unit              *string         `json:"unit"`
	CostPrice         *types.Money    `json:"costPrice"`
	SellingPrice      *types.Money    `json:"sellingPrice"`
	LowStockThreshold *types.Quantity `json:"lowStockThreshold"`
}

// ApplyTo merges the request into an existing item.
func (r UpdateItemRequest) ApplyTo(it *item.Item) {
	if r.Name != nil {
		it.Name = *r.Name
	}
	if r.Description != nil {
		it.Description = r.Description
	}
	if r.Category != nil {
		it.Category = r.Category
	}
	if r.Unit != nil {
		it.Unit = *r.Unit
	}
	if r.CostPrice != nil {
		it.CostPrice = *r.CostPrice
	}
	if r.SellingPrice != nil {
		it.SellingPrice = *r.SellingPrice
	}
	if r.LowStockThreshold != nil {
		it.LowStockThreshold = r.LowStockThreshold
	}
}

// --- Clients ---

// CreateClientRequest for creating clients. Code left empty is generated.
type CreateClientRequest struct {
	Code    string  `json:"code"`
	Name    string  `json:"name" binding:"required"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// ToEntity builds a client owned by actorID.
func (r CreateClientRequest) ToEntity(actorID id.ID) *client.Client {
	c := client.NewClient(actorID, r.Name)
	c.Code = r.Code
	c.Email = r.Email
	c.Phone = r.Phone
	c.Address = r.Address
	c.Notes = r.Notes
	return c
}

// UpdateClientRequest for updating clients.
type UpdateClientRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// ApplyTo merges the request into an existing client.
func (r UpdateClientRequest) ApplyTo(c *client.Client) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.Notes != nil {
		c.Notes = r.Notes
	}
}

// --- Suppliers ---

// CreateSupplierRequest for creating suppliers. Code left empty is generated.
type CreateSupplierRequest struct {
	Code          string  `json:"code"`
	Name          string  `json:"name" binding:"required"`
	ContactPerson *string `json:"contactPerson"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	Notes         *string `json:"notes"`
}

// ToEntity builds a supplier owned by actorID.
func (r CreateSupplierRequest) ToEntity(actorID id.ID) *supplier.Supplier {
	s := supplier.NewSupplier(actorID, r.Name)
	s.Code = r.Code
	s.ContactPerson = r.ContactPerson
	s.Email = r.Email
	s.Phone = r.Phone
	s.Address = r.Address
	s.Notes = r.Notes
	return s
}

// UpdateSupplierRequest for updating suppliers.
type UpdateSupplierRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	Notes         *string `json:"notes"`
}

// ApplyTo merges the request into an existing supplier.
func (r UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.ContactPerson != nil {
		s.ContactPerson = r.ContactPerson
	}
	if r.Email != nil {
		s.Email = r.Email
	}
	if r.Phone != nil {
		s.Phone = r.Phone
	}
	if r.Address != nil {
		s.Address = r.Address
	}
	if r.Notes != nil {
		s.Notes = r.Notes
	}
}
