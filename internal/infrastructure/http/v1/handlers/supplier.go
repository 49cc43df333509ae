package handlers

import (
	"stockbook/internal/core/id"
	"stockbook/internal/domain/catalogs/supplier"
	"stockbook/internal/infrastructure/http/v1/dto"
)

type SupplierHandler = CatalogHandler[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]

func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	config := CatalogHandlerConfig[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]{
		Service: service.CatalogService,
		MapCreateDTO: func(req dto.CreateSupplierRequest, actorID id.ID) *supplier.Supplier {
			return req.ToEntity(actorID)
		},
		MapUpdateDTO: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) *supplier.Supplier {
			req.ApplyTo(existing)
			return existing
		},
	}

	return NewCatalogHandler(base, config)
}
