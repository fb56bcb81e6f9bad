package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/seguro/backend/internal/middleware"
	"github.com/seguro/backend/internal/models"
	"github.com/seguro/backend/internal/services"
	"github.com/seguro/backend/pkg/utils"
	"gorm.io/gorm"
)

type GrantsHandler struct {
	DB        *gorm.DB
	Documents *services.DocumentService
	Grants    *services.GrantService
	Access    *services.AccessService
}

func NewGrantsHandler(db *gorm.DB, documents *services.DocumentService, grants *services.GrantService, access *services.AccessService) *GrantsHandler {
	return &GrantsHandler{DB: db, Documents: documents, Grants: grants, Access: access}
}

// loadDocumentForSharing resolves the document and checks the caller may
// manage access to it (owner or can_share).
func (h *GrantsHandler) loadDocumentForSharing(c *fiber.Ctx, user *models.User) (*models.Document, error) {
	docID, err := parseUUID(c.Params("id"))
	if err != nil {
		return nil, utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	doc, err := h.Documents.GetByID(c.Context(), docID)
	if err != nil {
		return nil, mapServiceError(c, err)
	}

	allowed, err := h.Access.CanPerform(c.Context(), user.ID, doc, models.PermissionShare, gatePassed(c, user.ID, doc.ID))
	if err != nil {
		return nil, utils.Error(c, fiber.StatusInternalServerError, "failed evaluating access")
	}
	if !allowed {
		return nil, utils.Error(c, fiber.StatusForbidden, "insufficient permissions")
	}
	return doc, nil
}

type grantRequest struct {
	GranteeID   uuid.UUID            `json:"granteeID"`
	Permissions models.PermissionSet `json:"permissions"`
	ExpiresAt   *time.Time           `json:"expiresAt"`
	Reactivate  bool                 `json:"reactivate"`
}

func (h *GrantsHandler) Upsert(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	doc, handled := h.loadDocumentForSharing(c, user)
	if doc == nil {
		return handled
	}

	var req grantRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if raw := c.Params("granteeID"); raw != "" {
		granteeID, err := parseUUID(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid grantee id")
		}
		req.GranteeID = granteeID
	}
	if req.GranteeID == uuid.Nil {
		return utils.Error(c, fiber.StatusBadRequest, "granteeID is required")
	}

	grant, err := h.Grants.Upsert(c.Context(), requestMeta(c, user), services.GrantInput{
		DocumentID:  doc.ID,
		GranteeID:   req.GranteeID,
		Permissions: req.Permissions,
		ExpiresAt:   req.ExpiresAt,
		Via:         models.GrantViaDirect,
		Reactivate:  req.Reactivate,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusCreated, grant)
}

func (h *GrantsHandler) List(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	doc, handled := h.loadDocumentForSharing(c, user)
	if doc == nil {
		return handled
	}

	grants, err := h.Grants.ListForDocument(c.Context(), doc.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading grants")
	}
	return utils.Success(c, fiber.StatusOK, grants)
}

func (h *GrantsHandler) Revoke(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	doc, handled := h.loadDocumentForSharing(c, user)
	if doc == nil {
		return handled
	}

	granteeID, err := parseUUID(c.Params("granteeID"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid grantee id")
	}

	if err := h.Grants.Revoke(c.Context(), requestMeta(c, user), doc.ID, granteeID); err != nil {
		return mapServiceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "grant revoked"})
}

func (h *GrantsHandler) RevokeAll(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	doc, handled := h.loadDocumentForSharing(c, user)
	if doc == nil {
		return handled
	}

	count, err := h.Grants.RevokeAll(c.Context(), requestMeta(c, user), doc.ID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"revokedCount": count})
}
