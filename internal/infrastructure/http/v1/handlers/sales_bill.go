package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/billing/salesbill"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// SalesBillHandler serves sales invoices.
type SalesBillHandler struct {
	*BaseHandler
	service *salesbill.Service
}

func NewSalesBillHandler(base *BaseHandler, service *salesbill.Service) *SalesBillHandler {
	return &SalesBillHandler{BaseHandler: base, service: service}
}

// Create handles POST /sales-bills. Stock is reserved or the whole
// request fails.
func (h *SalesBillHandler) Create(c *gin.Context) {
	var req dto.SalesBillRequest
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

// Get handles GET /sales-bills/:id.
func (h *SalesBillHandler) Get(c *gin.Context) {
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

// List handles GET /sales-bills with status, client and date filters.
// A number query resolves a single bill by document number.
func (h *SalesBillHandler) List(c *gin.Context) {
	if number := c.Query("number"); number != "" {
		bill, err := h.service.GetByNumber(c.Request.Context(), number)
		if err != nil {
			h.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, bill)
		return
	}

	filter := salesbill.ListFilter{ListFilter: domain.DefaultListFilter()}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.Query("orderBy")

	if status := c.Query("status"); status != "" {
		s := salesbill.Status(status)
		filter.Status = &s
	}
	if clientID := c.Query("clientId"); clientID != "" {
		parsed, err := id.Parse(clientID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid clientId format"))
			return
		}
		filter.ClientID = &parsed
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

// Update handles PUT /sales-bills/:id - full replacement. Previously
// consumed stock is returned before the new lines draw theirs.
func (h *SalesBillHandler) Update(c *gin.Context) {
	billID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SalesBillRequest
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

// Delete handles DELETE /sales-bills/:id, restoring the consumed stock.
func (h *SalesBillHandler) Delete(c *gin.Context) {
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

// SetStatus handles POST /sales-bills/:id/status.
func (h *SalesBillHandler) SetStatus(c *gin.Context) {
	billID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bill, err := h.service.SetStatus(c.Request.Context(), billID, salesbill.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

// parseDateQuery accepts RFC 3339 timestamps and plain dates.
func (h *BaseHandler) parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	val := c.Query(key)
	if val == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		t, err = time.Parse("2006-01-02", val)
	}
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+key+" date").WithDetail("value", val))
		return nil, false
	}
	return &t, true
}
