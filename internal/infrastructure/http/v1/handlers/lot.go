package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// LotHandler serves the inventory lot ledger.
type LotHandler struct {
	*BaseHandler
	service *ledger.Service
}

func NewLotHandler(base *BaseHandler, service *ledger.Service) *LotHandler {
	return &LotHandler{BaseHandler: base, service: service}
}

// Create handles POST /lots - manual lot entry.
func (h *LotHandler) Create(c *gin.Context) {
	var req dto.CreateLotRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lot, err := h.service.CreateLot(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, lot)
}

// Get handles GET /lots/:id.
func (h *LotHandler) Get(c *gin.Context) {
	lotID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	lot, err := h.service.GetLot(c.Request.Context(), lotID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, lot)
}

// List handles GET /lots with item, supplier and stock filters.
func (h *LotHandler) List(c *gin.Context) {
	filter := ledger.ListFilter{ListFilter: domain.DefaultListFilter()}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.Query("orderBy")
	filter.InStockOnly = c.Query("inStock") == "true"

	if itemID := c.Query("itemId"); itemID != "" {
		parsed, err := id.Parse(itemID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid itemId format"))
			return
		}
		filter.ItemID = &parsed
	}
	if supplierID := c.Query("supplierId"); supplierID != "" {
		parsed, err := id.Parse(supplierID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return
		}
		filter.SupplierID = &parsed
	}

	result, err := h.service.ListLots(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Delete handles DELETE /lots/:id. Lots created by purchase bills and
// lots with consumed stock are refused by the service.
func (h *LotHandler) Delete(c *gin.Context) {
	lotID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteLot(c.Request.Context(), lotID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
