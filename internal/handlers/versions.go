package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/seguro/backend/internal/middleware"
	"github.com/seguro/backend/internal/models"
	"github.com/seguro/backend/internal/services"
	"github.com/seguro/backend/pkg/logger"
	"github.com/seguro/backend/pkg/utils"
	"gorm.io/gorm"
)

const downloadURLExpiry = 15 * time.Minute

type VersionsHandler struct {
	DB        *gorm.DB
	Documents *services.DocumentService
	Versions  *services.VersionService
	Access    *services.AccessService
}

func NewVersionsHandler(db *gorm.DB, documents *services.DocumentService, versions *services.VersionService, access *services.AccessService) *VersionsHandler {
	return &VersionsHandler{DB: db, Documents: documents, Versions: versions, Access: access}
}

func (h *VersionsHandler) loadDocumentWithAccess(c *fiber.Ctx, user *models.User, action models.Permission) (*models.Document, error) {
	docID, err := parseUUID(c.Params("id"))
	if err != nil {
		return nil, utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	doc, err := h.Documents.GetByID(c.Context(), docID)
	if err != nil {
		return nil, mapServiceError(c, err)
	}

	allowed, err := h.Access.CanPerform(c.Context(), user.ID, doc, action, gatePassed(c, user.ID, doc.ID))
	if err != nil {
		return nil, utils.Error(c, fiber.StatusInternalServerError, "failed evaluating access")
	}
	if !allowed {
		return nil, utils.Error(c, fiber.StatusForbidden, "insufficient permissions")
	}
	return doc, nil
}

func (h *VersionsHandler) Upload(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	doc, handled := h.loadDocumentWithAccess(c, user, models.PermissionEdit)
	if doc == nil {
		return handled
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed reading upload")
	}
	defer file.Close()

	version, err := h.Versions.CreateVersion(c.Context(), requestMeta(c, user), doc, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		logger.ErrorWithUser(user.ID.String(), "version_upload_failed", err, map[string]interface{}{
			"document_id": doc.ID.String(),
		})
		return mapServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusCreated, version)
}

func (h *VersionsHandler) List(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	doc, handled := h.loadDocumentWithAccess(c, user, models.PermissionView)
	if doc == nil {
		return handled
	}

	versions, err := h.Versions.ListVersions(c.Context(), doc.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading versions")
	}
	return utils.Success(c, fiber.StatusOK, versions)
}

func (h *VersionsHandler) resolveVersion(c *fiber.Ctx, doc *models.Document) (*models.DocumentVersion, error) {
	if raw := c.Query("version"); raw != "" {
		num, err := strconv.Atoi(raw)
		if err != nil || num < 1 {
			return nil, utils.Error(c, fiber.StatusBadRequest, "invalid version number")
		}
		version, err := h.Versions.GetVersion(c.Context(), doc.ID, num)
		if err != nil {
			return nil, mapServiceError(c, err)
		}
		return version, nil
	}

	version, err := h.Versions.LatestVersion(c.Context(), doc.ID)
	if err != nil {
		return nil, mapServiceError(c, err)
	}
	return version, nil
}

// Download streams the requested (default latest) version through the server.
func (h *VersionsHandler) Download(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	doc, handled := h.loadDocumentWithAccess(c, user, models.PermissionDownload)
	if doc == nil {
		return handled
	}

	version, handled := h.resolveVersion(c, doc)
	if version == nil {
		return handled
	}

	reader, err := h.Versions.Open(c.Context(), version)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed opening file")
	}

	h.Versions.RecordDownload(requestMeta(c, user), doc, version)

	c.Set("Content-Type", version.MimeType)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", version.Filename))
	if version.SizeBytes > 0 {
		return c.SendStream(reader, int(version.SizeBytes))
	}
	return c.SendStream(reader)
}

type downloadURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

// DownloadURL hands out a short-lived presigned URL plus its expiry so
// clients can refresh before it lapses.
func (h *VersionsHandler) DownloadURL(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	doc, handled := h.loadDocumentWithAccess(c, user, models.PermissionDownload)
	if doc == nil {
		return handled
	}

	version, handled := h.resolveVersion(c, doc)
	if version == nil {
		return handled
	}

	url, err := h.Versions.DownloadURL(c.Context(), version, downloadURLExpiry)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating download url")
	}

	h.Versions.RecordDownload(requestMeta(c, user), doc, version)

	return utils.Success(c, fiber.StatusOK, downloadURLResponse{
		URL:       url,
		ExpiresAt: time.Now().Add(downloadURLExpiry).UTC().Format(time.RFC3339),
	})
}
