// Package notification provides the JSON API for console notifications.
package notification

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/config"
	notificationcontroller "github.com/iam-console/iam-console/internal/db/controller/notification"
	"github.com/iam-console/iam-console/internal/web/handler"
)

const (
	// Path is the base path for the notifications API.
	Path = handler.APIPath + "/notifications"
)

// Service provides the notifications API.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	app.Get(Path, s.List)
	app.Post(Path+"/:id/read", s.MarkRead)
}

// List returns all notifications, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	notifications, err := notificationcontroller.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list notifications")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notifications"})
	}

	return c.JSON(notifications)
}

// MarkRead marks a notification as read.
func (s *Service) MarkRead(c *fiber.Ctx) error {
	err := notificationcontroller.MarkRead(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, notificationcontroller.ErrNotificationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
		}

		log.Error().Err(err).Msg("failed to mark notification as read")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notification"})
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
