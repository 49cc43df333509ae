package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/actor"
	"stockbook/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the change history of audited entities.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{BaseHandler: base, audit: audit}
}

// History handles GET /audit/:entityType/:id.
func (h *AuditHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, err := actor.IDFromContext(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	entries, err := h.audit.GetEntityHistory(ctx, actorID, c.Param("entityType"), entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
