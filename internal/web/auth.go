package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/iam-console/iam-console/internal/web/session"
)

// AuthMiddleware is a Fiber middleware that guards the API behind a
// valid console session. Liveness, metrics and the login endpoint
// stay open.
func AuthMiddleware(c *fiber.Ctx) error {
	path := strings.ToLower(c.Path())

	if !strings.HasPrefix(path, "/api") {
		return c.Next()
	}

	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	sessData := new(session.Data)
	_ = sessData.Read(sessionID)

	if sessData.Account.ID == 0 || !sessData.Account.Active {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	return c.Next()
}
