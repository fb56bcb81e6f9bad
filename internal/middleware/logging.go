package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/seguro/backend/pkg/logger"
)

const requestIDKey = "requestID"

// RequestLogger tags every request with an id and logs one line on the way
// out.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := logger.GenerateRequestID()
		c.Locals(requestIDKey, requestID)
		c.Set("X-Request-ID", requestID)

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		details := map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      c.Response().StatusCode(),
			"duration_ms": duration.Milliseconds(),
			"ip":          c.IP(),
			"request_id":  requestID,
		}

		userID := logger.GetUserIDFromContext(c)
		if userID != nil {
			logger.InfoWithUser(*userID, "http_request", details)
		} else {
			logger.Info("http_request", details)
		}
		return err
	}
}

// SecurityLogger adds a second, body-aware line for authentication and
// secret-bearing endpoints. Bodies are summarized with sensitive fields
// redacted.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !isSecuritySensitive(c.Path()) {
			return c.Next()
		}

		logger.Warn("security_sensitive_request", map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"ip":         c.IP(),
			"request_id": GetRequestID(c),
			"body":       logger.GetRequestBodySummary(c),
		})
		return c.Next()
	}
}

func isSecuritySensitive(path string) bool {
	switch {
	case strings.HasPrefix(path, "/api/auth/"):
		return true
	case strings.HasSuffix(path, "/verify-password"):
		return true
	case strings.HasSuffix(path, "/activate"):
		return true
	default:
		return false
	}
}

func GetRequestID(c *fiber.Ctx) string {
	value := c.Locals(requestIDKey)
	if value == nil {
		return ""
	}
	id, ok := value.(string)
	if !ok {
		return ""
	}
	return id
}
