// Package role provides the JSON API for the role catalog.
package role

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/config"
	rolecontroller "github.com/iam-console/iam-console/internal/db/controller/role"
	"github.com/iam-console/iam-console/internal/db/models"
	"github.com/iam-console/iam-console/internal/reconciler"
	"github.com/iam-console/iam-console/internal/web/handler"
	"github.com/iam-console/iam-console/internal/web/session"
)

const (
	// Path is the base path for the roles API.
	Path = handler.APIPath + "/roles"
)

// Service provides the roles API.
type Service struct {
	handler.Service
	cfg        *config.Config
	db         *gorm.DB
	reconciler *reconciler.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, recon *reconciler.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.reconciler = recon

	app.Get(Path, s.List)
	app.Post(Path, s.Create)
	app.Get(Path+"/:id", s.Get)
}

// List returns all roles. The stored assignment counts are recomputed
// before the read so clients never observe stale numbers.
func (s *Service) List(c *fiber.Ctx) error {
	if _, err := s.reconciler.RecomputeAssignedCounts(c.Context()); err != nil {
		log.Error().Err(err).Msg("failed to recompute role counts")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch roles"})
	}

	roles, err := rolecontroller.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list roles")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch roles"})
	}

	return c.JSON(roles)
}

// Get returns a single role with a fresh assignment count.
func (s *Service) Get(c *fiber.Ctx) error {
	if _, err := s.reconciler.RecomputeAssignedCounts(c.Context()); err != nil {
		log.Error().Err(err).Msg("failed to recompute role counts")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch role"})
	}

	r, err := rolecontroller.Get(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, rolecontroller.ErrRoleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Role not found"})
		}

		log.Error().Err(err).Msg("failed to get role")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch role"})
	}

	return c.JSON(r)
}

// Create creates a new role.
func (s *Service) Create(c *fiber.Ctx) error {
	var in models.Role
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	err := rolecontroller.Create(s.db, &in, session.Username(c))
	if err != nil {
		switch {
		case errors.Is(err, rolecontroller.ErrDuplicateRole):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Role already exists"})
		case errors.Is(err, rolecontroller.ErrValidation), errors.Is(err, rolecontroller.ErrUnknownSystem):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("failed to create role")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create role"})
		}
	}

	return c.JSON(fiber.Map{"message": "Role created successfully"})
}
