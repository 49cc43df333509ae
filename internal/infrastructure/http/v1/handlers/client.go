package handlers

import (
	"stockbook/internal/core/id"
	"stockbook/internal/domain/catalogs/client"
	"stockbook/internal/infrastructure/http/v1/dto"
)

type ClientHandler = CatalogHandler[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]

func NewClientHandler(base *BaseHandler, service *client.Service) *ClientHandler {
	config := CatalogHandlerConfig[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]{
		Service: service.CatalogService,
		MapCreateDTO: func(req dto.CreateClientRequest, actorID id.ID) *client.Client {
			return req.ToEntity(actorID)
		},
		MapUpdateDTO: func(req dto.UpdateClientRequest, existing *client.Client) *client.Client {
			req.ApplyTo(existing)
			return existing
		},
	}

	return NewCatalogHandler(base, config)
}
