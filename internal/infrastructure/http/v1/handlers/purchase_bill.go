package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/billing/purchasebill"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// PurchaseBillHandler serves supplier purchases.
type PurchaseBillHandler struct {
	*BaseHandler
	service *purchasebill.Service
}

func NewPurchaseBillHandler(base *BaseHandler, service *purchasebill.Service) *PurchaseBillHandler {
	return &PurchaseBillHandler{BaseHandler: base, service: service}
}

// Create handles POST /purchase-bills. One inventory lot per line is
// created and the total is recorded as a purchase expense.
func (h *PurchaseBillHandler) Create(c *gin.Context) {
	var req dto.PurchaseBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bill, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, bill)
}

// Get handles GET /purchase-bills/:id.
func (h *PurchaseBillHandler) Get(c *gin.Context) {
	billID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	bill, err := h.service.Get(c.Request.Context(), billID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

// List handles GET /purchase-bills with status, supplier and date filters.
// A number query resolves a single bill by document number.
func (h *PurchaseBillHandler) List(c *gin.Context) {
	if number := c.Query("number"); number != "" {
		bill, err := h.service.GetByNumber(c.Request.Context(), number)
		if err != nil {
			h.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, bill)
		return
	}

	filter := purchasebill.ListFilter{ListFilter: domain.DefaultListFilter()}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.Query("orderBy")

	if status := c.Query("status"); status != "" {
		s := purchasebill.Status(status)
		filter.Status = &s
	}
	if supplierID := c.Query("supplierId"); supplierID != "" {
		parsed, err := id.Parse(supplierID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return
		}
		filter.SupplierID = &parsed
	}
	var ok bool
	if filter.From, ok = h.parseDateQuery(c, "from"); !ok {
		return
	}
	if filter.To, ok = h.parseDateQuery(c, "to"); !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Update handles PUT /purchase-bills/:id - full replacement. Refused
// when stock from the bill's lots has already been sold.
func (h *PurchaseBillHandler) Update(c *gin.Context) {
	billID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.PurchaseBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bill, err := h.service.Update(c.Request.Context(), billID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

// Delete handles DELETE /purchase-bills/:id, removing the bill's lots
// and its linked expense.
func (h *PurchaseBillHandler) Delete(c *gin.Context) {
	billID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), billID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// SetStatus handles POST /purchase-bills/:id/status.
func (h *PurchaseBillHandler) SetStatus(c *gin.Context) {
	billID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bill, err := h.service.SetStatus(c.Request.Context(), billID, purchasebill.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}
