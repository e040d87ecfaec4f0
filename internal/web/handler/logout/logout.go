// Package logout provides the console logout endpoint.
package logout

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/config"
	"github.com/iam-console/iam-console/internal/web/handler"
	"github.com/iam-console/iam-console/internal/web/session"
)

const (
	// Path is the path of the logout endpoint.
	Path = "/logout"
)

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.db = db
	s.cfg = cfg

	app.Post(Path, s.Post)

	return nil
}

// Post invalidates the current session and clears the cookie.
func (s *Service) Post(c *fiber.Ctx) error {
	sessionID := c.Cookies(session.CookieName)
	if sessionID != "" {
		_ = session.Store.Storage.Delete(sessionID)
	}

	c.ClearCookie(session.CookieName)

	return c.JSON(fiber.Map{"message": "Logout successful"})
}
