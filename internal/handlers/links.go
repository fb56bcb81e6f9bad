package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/seguro/backend/internal/middleware"
	"github.com/seguro/backend/internal/models"
	"github.com/seguro/backend/internal/services"
	"github.com/seguro/backend/pkg/logger"
	"github.com/seguro/backend/pkg/utils"
	"gorm.io/gorm"
)

type LinksHandler struct {
	DB        *gorm.DB
	Documents *services.DocumentService
	Links     *services.LinkService
	Access    *services.AccessService
}

func NewLinksHandler(db *gorm.DB, documents *services.DocumentService, links *services.LinkService, access *services.AccessService) *LinksHandler {
	return &LinksHandler{DB: db, Documents: documents, Links: links, Access: access}
}

type createLinkRequest struct {
	Permissions models.PermissionSet `json:"permissions"`
	ExpiresAt   *time.Time           `json:"expiresAt"`
	MaxUses     int                  `json:"maxUses"`
}

type createLinkResponse struct {
	Link *models.ShareLink `json:"link"`
	// Token is the full activation token, returned exactly once.
	Token string `json:"token"`
}

func (h *LinksHandler) Create(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	docID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	doc, err := h.Documents.GetByID(c.Context(), docID)
	if err != nil {
		return mapServiceError(c, err)
	}

	allowed, err := h.Access.CanPerform(c.Context(), user.ID, doc, models.PermissionShare, gatePassed(c, user.ID, doc.ID))
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed evaluating access")
	}
	if !allowed {
		return utils.Error(c, fiber.StatusForbidden, "insufficient permissions")
	}

	var req createLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	link, plainToken, err := h.Links.Create(c.Context(), requestMeta(c, user), services.CreateLinkInput{
		DocumentID:  doc.ID,
		CreatorID:   user.ID,
		Permissions: req.Permissions,
		ExpiresAt:   req.ExpiresAt,
		MaxUses:     req.MaxUses,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	logger.InfoWithUser(user.ID.String(), "share_link_created", map[string]interface{}{
		"document_id":  doc.ID.String(),
		"link_id":      link.ID.String(),
		"token_prefix": link.TokenPrefix,
	})

	return utils.Success(c, fiber.StatusCreated, createLinkResponse{Link: link, Token: plainToken})
}

func (h *LinksHandler) ListForDocument(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	docID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	doc, err := h.Documents.GetByID(c.Context(), docID)
	if err != nil {
		return mapServiceError(c, err)
	}

	allowed, err := h.Access.CanPerform(c.Context(), user.ID, doc, models.PermissionShare, gatePassed(c, user.ID, doc.ID))
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed evaluating access")
	}
	if !allowed {
		return utils.Error(c, fiber.StatusForbidden, "insufficient permissions")
	}

	links, err := h.Links.ListForDocument(c.Context(), doc.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading links")
	}
	return utils.Success(c, fiber.StatusOK, links)
}

type activateLinkRequest struct {
	Token string `json:"token"`
}

// Activate redeems a share link token for the authenticated caller.
func (h *LinksHandler) Activate(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req activateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" {
		return utils.Error(c, fiber.StatusBadRequest, "token is required")
	}

	grant, err := h.Links.Activate(c.Context(), requestMeta(c, user), req.Token, user.ID, user.Email)
	if err != nil {
		logger.WarnWithUser(user.ID.String(), "share_link_activation_failed", map[string]interface{}{
			"ip":     c.IP(),
			"reason": err.Error(),
		})
		return mapServiceError(c, err)
	}

	logger.InfoWithUser(user.ID.String(), "share_link_activated", map[string]interface{}{
		"document_id": grant.DocumentID.String(),
		"grant_id":    grant.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, grant)
}

// loadOwnedLink resolves a link and checks the caller may manage it
// (link creator or document owner).
func (h *LinksHandler) loadOwnedLink(c *fiber.Ctx, user *models.User) (*models.ShareLink, error) {
	linkID, err := parseUUID(c.Params("id"))
	if err != nil {
		return nil, utils.Error(c, fiber.StatusBadRequest, "invalid link id")
	}

	link, err := h.Links.GetByID(c.Context(), linkID)
	if err != nil {
		return nil, mapServiceError(c, err)
	}

	if link.CreatorID != user.ID {
		doc, err := h.Documents.GetByID(c.Context(), link.DocumentID)
		if err != nil || doc.OwnerID != user.ID {
			return nil, utils.Error(c, fiber.StatusForbidden, "insufficient permissions")
		}
	}
	return link, nil
}

type addRecipientRequest struct {
	Email       string               `json:"email"`
	Permissions models.PermissionSet `json:"permissions"`
	MaxUses     *int                 `json:"maxUses"`
}

func (h *LinksHandler) AddRecipient(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	link, handled := h.loadOwnedLink(c, user)
	if link == nil {
		return handled
	}

	var req addRecipientRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	recipient, err := h.Links.UpsertRecipient(c.Context(), requestMeta(c, user), link.ID, services.RecipientInput{
		Email:       req.Email,
		Permissions: req.Permissions,
		MaxUses:     req.MaxUses,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusCreated, recipient)
}

func (h *LinksHandler) ListRecipients(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	link, handled := h.loadOwnedLink(c, user)
	if link == nil {
		return handled
	}

	recipients, err := h.Links.ListRecipients(c.Context(), link.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading recipients")
	}
	return utils.Success(c, fiber.StatusOK, recipients)
}

func (h *LinksHandler) Revoke(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	link, handled := h.loadOwnedLink(c, user)
	if link == nil {
		return handled
	}

	if err := h.Links.Revoke(c.Context(), requestMeta(c, user), link.ID); err != nil {
		return mapServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "link revoked"})
}

func (h *LinksHandler) RevokeRecipient(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	link, handled := h.loadOwnedLink(c, user)
	if link == nil {
		return handled
	}

	recipientID, err := parseUUID(c.Params("recipientID"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid recipient id")
	}

	if err := h.Links.RevokeRecipient(c.Context(), link.ID, recipientID); err != nil {
		return mapServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "recipient revoked"})
}
