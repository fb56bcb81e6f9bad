package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/seguro/backend/internal/middleware"
	"github.com/seguro/backend/internal/services"
	"github.com/seguro/backend/pkg/utils"
)

type AuditHandler struct {
	Audit *services.AuditService
}

func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{Audit: audit}
}

// ListMine returns the caller's own audit trail, newest first.
func (h *AuditHandler) ListMine(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	p := utils.ParsePagination(c)
	rows, total, err := h.Audit.ListForActor(c.Context(), user.ID, (p.Page-1)*p.Limit, p.Limit)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading audit log")
	}
	return utils.Paginated(c, rows, p.Page, p.Limit, total)
}
