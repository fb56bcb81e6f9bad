package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/seguro/backend/internal/services"
	"github.com/seguro/backend/pkg/utils"
)

// PublicHandler serves public documents through their permanent anonymous
// tokens. No authentication, read-only.
type PublicHandler struct {
	Documents *services.DocumentService
	Versions  *services.VersionService
}

func NewPublicHandler(documents *services.DocumentService, versions *services.VersionService) *PublicHandler {
	return &PublicHandler{Documents: documents, Versions: versions}
}

func (h *PublicHandler) Get(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return utils.Error(c, fiber.StatusBadRequest, "token is required")
	}

	doc, err := h.Documents.GetPublicByToken(c.Context(), token)
	if err != nil {
		return mapServiceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, doc)
}

func (h *PublicHandler) Download(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return utils.Error(c, fiber.StatusBadRequest, "token is required")
	}

	doc, err := h.Documents.GetPublicByToken(c.Context(), token)
	if err != nil {
		return mapServiceError(c, err)
	}

	version, err := h.Versions.LatestVersion(c.Context(), doc.ID)
	if err != nil {
		return mapServiceError(c, err)
	}

	reader, err := h.Versions.Open(c.Context(), version)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed opening file")
	}

	h.Versions.RecordDownload(services.RequestMeta{
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	}, doc, version)

	c.Set("Content-Type", version.MimeType)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", version.Filename))
	if version.SizeBytes > 0 {
		return c.SendStream(reader, int(version.SizeBytes))
	}
	return c.SendStream(reader)
}
