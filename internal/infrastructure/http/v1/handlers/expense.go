package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockbook/internal/domain"
	"stockbook/internal/domain/finance/expense"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// ExpenseHandler serves manual expenses. Purchase-linked expenses are
// read-only here; their purchase bill owns them.
type ExpenseHandler struct {
	*BaseHandler
	service *expense.Service
}

func NewExpenseHandler(base *BaseHandler, service *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{BaseHandler: base, service: service}
}

// Create handles POST /expenses.
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req dto.ExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Create(c.Request.Context(), req.ToCreateInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, e)
}

// Get handles GET /expenses/:id.
func (h *ExpenseHandler) Get(c *gin.Context) {
	expenseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	e, err := h.service.Get(c.Request.Context(), expenseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, e)
}

// List handles GET /expenses with category and date filters.
func (h *ExpenseHandler) List(c *gin.Context) {
	filter := expense.ListFilter{ListFilter: domain.DefaultListFilter()}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.Query("orderBy")

	if category := c.Query("category"); category != "" {
		filter.Category = &category
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

// Update handles PUT /expenses/:id.
func (h *ExpenseHandler) Update(c *gin.Context) {
	expenseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Update(c.Request.Context(), expenseID, req.ToUpdateInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, e)
}

// Delete handles DELETE /expenses/:id.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	expenseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), expenseID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
