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

type DocumentsHandler struct {
	DB         *gorm.DB
	Documents  *services.DocumentService
	Access     *services.AccessService
	Restricted *services.RestrictedService
	Grants     *services.GrantService
}

func NewDocumentsHandler(db *gorm.DB, documents *services.DocumentService, access *services.AccessService, restricted *services.RestrictedService, grants *services.GrantService) *DocumentsHandler {
	return &DocumentsHandler{
		DB:         db,
		Documents:  documents,
		Access:     access,
		Restricted: restricted,
		Grants:     grants,
	}
}

type createDocumentRequest struct {
	Title          string                `json:"title"`
	Description    *string               `json:"description"`
	Classification models.Classification `json:"classification"`
}

type createDocumentResponse struct {
	Document *models.Document `json:"document"`
	// RestrictedPassword is shown exactly once and never retrievable again.
	RestrictedPassword string `json:"restrictedPassword,omitempty"`
	PublicToken        string `json:"publicToken,omitempty"`
}

func (h *DocumentsHandler) Create(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.Documents.Create(c.Context(), requestMeta(c, user), services.CreateDocumentInput{
		Title:          req.Title,
		Description:    req.Description,
		Classification: req.Classification,
		OwnerID:        user.ID,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	logger.InfoWithUser(user.ID.String(), "document_created", map[string]interface{}{
		"document_id":    result.Document.ID.String(),
		"classification": string(result.Document.Classification),
	})

	return utils.Success(c, fiber.StatusCreated, createDocumentResponse{
		Document:           result.Document,
		RestrictedPassword: result.RestrictedPassword,
		PublicToken:        result.PublicToken,
	})
}

func (h *DocumentsHandler) List(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	p := utils.ParsePagination(c)
	docs, total, err := h.Documents.ListOwned(c.Context(), user.ID, (p.Page-1)*p.Limit, p.Limit)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading documents")
	}
	return utils.Paginated(c, docs, p.Page, p.Limit, total)
}

type sharedDocumentEntry struct {
	Document    models.Document      `json:"document"`
	Permissions models.PermissionSet `json:"permissions"`
	ExpiresAt   *time.Time           `json:"expiresAt,omitempty"`
}

func (h *DocumentsHandler) SharedWithMe(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	grants, err := h.Grants.ListSharedWith(c.Context(), user.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading shared documents")
	}

	entries := make([]sharedDocumentEntry, 0, len(grants))
	for _, grant := range grants {
		var doc models.Document
		if err := h.DB.First(&doc, "id = ?", grant.DocumentID).Error; err != nil {
			// Soft-deleted target; the grant no longer points anywhere.
			continue
		}
		entries = append(entries, sharedDocumentEntry{
			Document:    doc,
			Permissions: grant.Permissions(),
			ExpiresAt:   grant.ExpiresAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, entries)
}

type documentDetailResponse struct {
	Document    *models.Document     `json:"document"`
	Permissions models.PermissionSet `json:"permissions"`
	GateOpen    bool                 `json:"gateOpen"`
}

func (h *DocumentsHandler) Get(c *fiber.Ctx) error {
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

	gate := gatePassed(c, user.ID, doc.ID)
	allowed, err := h.Access.CanPerform(c.Context(), user.ID, doc, models.PermissionView, gate)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed evaluating access")
	}
	if !allowed {
		// Only the owner is ever denied for lack of the gate; everyone else
		// is simply denied.
		if services.RequiresSecondaryAuth(doc.Classification) && !gate && doc.OwnerID == user.ID {
			return utils.Error(c, fiber.StatusForbidden, "document password verification required")
		}
		return utils.Error(c, fiber.StatusForbidden, "insufficient permissions")
	}

	perms, err := h.Access.EffectivePermissions(c.Context(), user.ID, doc)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed evaluating access")
	}

	return utils.Success(c, fiber.StatusOK, documentDetailResponse{
		Document:    doc,
		Permissions: perms,
		GateOpen:    gate || !services.RequiresSecondaryAuth(doc.Classification),
	})
}

type updateDocumentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (h *DocumentsHandler) Update(c *fiber.Ctx) error {
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

	allowed, err := h.Access.CanPerform(c.Context(), user.ID, doc, models.PermissionEdit, gatePassed(c, user.ID, doc.ID))
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed evaluating access")
	}
	if !allowed {
		return utils.Error(c, fiber.StatusForbidden, "insufficient permissions")
	}

	var req updateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.Documents.Update(c.Context(), requestMeta(c, user), doc, services.UpdateDocumentInput{
		Title:       req.Title,
		Description: req.Description,
	}); err != nil {
		return mapServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, doc)
}

func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
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

	if doc.OwnerID != user.ID {
		return utils.Error(c, fiber.StatusForbidden, "only the owner can delete a document")
	}

	if err := h.Documents.Delete(c.Context(), requestMeta(c, user), doc); err != nil {
		return mapServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "document deleted"})
}

type verifyPasswordRequest struct {
	Password string `json:"password"`
}

type verifyPasswordResponse struct {
	GateToken string `json:"gateToken"`
	ExpiresAt string `json:"expiresAt"`
}

// VerifyPassword checks the restricted-document password and, on success,
// issues a short-lived gate token bound to this user and document. The route
// sits behind the rate limiter.
func (h *DocumentsHandler) VerifyPassword(c *fiber.Ctx) error {
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
	if !services.RequiresSecondaryAuth(doc.Classification) {
		return utils.Error(c, fiber.StatusBadRequest, "document is not restricted")
	}

	// Restricted documents are never shared, so only the owner may even
	// attempt the password. Anyone else gets a plain denial before the
	// secret is consulted.
	if doc.OwnerID != user.ID {
		return utils.Error(c, fiber.StatusForbidden, "insufficient permissions")
	}

	var req verifyPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.Restricted.Verify(c.Context(), doc.ID, req.Password); err != nil {
		logger.WarnWithUser(user.ID.String(), "restricted_verify_failed", map[string]interface{}{
			"document_id": doc.ID.String(),
			"ip":          c.IP(),
		})
		return mapServiceError(c, err)
	}

	token, expiresAt, err := utils.GenerateGateToken(user.ID, doc.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating gate token")
	}

	logger.InfoWithUser(user.ID.String(), "restricted_gate_opened", map[string]interface{}{
		"document_id": doc.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, verifyPasswordResponse{
		GateToken: token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
