package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/seguro/backend/internal/middleware"
	"github.com/seguro/backend/internal/models"
	"github.com/seguro/backend/internal/services"
	"github.com/seguro/backend/pkg/utils"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

func getRequestID(c *fiber.Ctx) string {
	return middleware.GetRequestID(c)
}

func requestMeta(c *fiber.Ctx, user *models.User) services.RequestMeta {
	meta := services.RequestMeta{
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	}
	if user != nil {
		meta.ActorID = &user.ID
	}
	return meta
}

// gatePassed reports whether the request carries a valid restricted-gate
// token bound to this user and document.
func gatePassed(c *fiber.Ctx, userID, documentID uuid.UUID) bool {
	token := c.Get("X-Gate-Token")
	if token == "" {
		return false
	}
	claims, err := utils.ValidateGateToken(token)
	if err != nil {
		return false
	}
	return claims.UserID == userID && claims.DocumentID == documentID
}

// mapServiceError translates typed service errors into user-safe responses.
// Anything unrecognized becomes a 500 with a generic message.
func mapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPolicyViolation):
		return utils.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return utils.Error(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, services.ErrTokenNotFound):
		return utils.Error(c, fiber.StatusNotFound, "share link not found")
	case errors.Is(err, services.ErrLinkRevoked):
		return utils.Error(c, fiber.StatusGone, "share link has been revoked")
	case errors.Is(err, services.ErrLinkExpired):
		return utils.Error(c, fiber.StatusGone, "share link has expired")
	case errors.Is(err, services.ErrLinkExhausted):
		return utils.Error(c, fiber.StatusGone, "share link has no remaining uses")
	case errors.Is(err, services.ErrEmailNotAuthorized):
		return utils.Error(c, fiber.StatusForbidden, "your email is not authorized for this link")
	case errors.Is(err, services.ErrRecipientExhausted):
		return utils.Error(c, fiber.StatusGone, "your allowance for this link is used up")
	case errors.Is(err, services.ErrSecretMismatch):
		return utils.Error(c, fiber.StatusForbidden, "invalid document password")
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, "resource not found")
	default:
		return utils.Error(c, fiber.StatusInternalServerError, "internal error")
	}
}
