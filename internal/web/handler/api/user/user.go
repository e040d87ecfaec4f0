// Package user provides the JSON API for governed users.
//
// GET and POST /api/users keep the legacy console contract: a flat 500
// with a generic error body on any failure. The finer-grained endpoints
// added for the rest of the UI map the store's typed errors to honest
// status codes.
package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/config"
	usercontroller "github.com/iam-console/iam-console/internal/db/controller/user"
	"github.com/iam-console/iam-console/internal/db/models"
	"github.com/iam-console/iam-console/internal/reconciler"
	"github.com/iam-console/iam-console/internal/web/handler"
	"github.com/iam-console/iam-console/internal/web/session"
)

const (
	// Path is the base path for the users API.
	Path = handler.APIPath + "/users"
)

// Service provides the users API.
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
	app.Post(Path+"/:id/deactivate", s.Deactivate)
	app.Post(Path+"/:id/roles", s.AssignRole)
	app.Delete(Path+"/:id/roles", s.UnassignRole)
}

// userResponse is a User with the sistemas mapping reassembled from the
// join table, matching the legacy read shape.
type userResponse struct {
	models.User
	Sistemas map[models.SystemKey][]string `json:"sistemas"`
}

func toResponse(u models.User) userResponse {
	return userResponse{User: u, Sistemas: u.Sistemas()}
}

// List returns all users.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := usercontroller.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}

	return c.JSON(out)
}

// Create creates a user from the legacy request body.
func (s *Service) Create(c *fiber.Ctx) error {
	var in struct {
		ID       string                        `json:"id"`
		Nombre   string                        `json:"nombre"`
		Apellido string                        `json:"apellido"`
		Email    string                        `json:"email"`
		Telefono string                        `json:"telefono"`
		Estado   models.UserEstado             `json:"estado"`
		Cargo    string                        `json:"cargo"`
		Sistemas map[models.SystemKey][]string `json:"sistemas"`
	}

	if err := c.BodyParser(&in); err != nil {
		log.Error().Err(err).Msg("failed to parse user create request")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	u := models.User{
		ID:       in.ID,
		Nombre:   in.Nombre,
		Apellido: in.Apellido,
		Email:    in.Email,
		Telefono: in.Telefono,
		Estado:   in.Estado,
		Cargo:    in.Cargo,
	}

	if err := usercontroller.Create(s.db, &u, in.Sistemas, session.Username(c)); err != nil {
		// legacy contract: every failure kind collapses to a generic 500,
		// the typed error is preserved in the log
		log.Error().Err(err).Str("id", in.ID).Msg("failed to create user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	return c.JSON(fiber.Map{"message": "User created successfully"})
}

// Get returns a single user.
func (s *Service) Get(c *fiber.Ctx) error {
	u, err := usercontroller.Get(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, usercontroller.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}

		log.Error().Err(err).Msg("failed to get user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	return c.JSON(toResponse(*u))
}

// Deactivate soft-deactivates a user.
func (s *Service) Deactivate(c *fiber.Ctx) error {
	err := usercontroller.Deactivate(s.db, c.Params("id"), session.Username(c))
	if err != nil {
		if errors.Is(err, usercontroller.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}

		log.Error().Err(err).Msg("failed to deactivate user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate user"})
	}

	return c.JSON(fiber.Map{"message": "User deactivated successfully"})
}

type roleChange struct {
	Sistema models.SystemKey `json:"sistema"`
	Rol     string           `json:"rol"`
}

// AssignRole adds a role to the user's set for one system.
func (s *Service) AssignRole(c *fiber.Ctx) error {
	var in roleChange
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	err := usercontroller.AssignRole(s.db, c.Params("id"), in.Sistema, in.Rol, session.Username(c))
	if err != nil {
		return s.roleChangeError(c, err, "failed to assign role")
	}

	// keep the derived counts in step with the change
	if _, err := s.reconciler.RecomputeAssignedCounts(c.Context()); err != nil {
		log.Error().Err(err).Msg("failed to recompute role counts")
	}

	return c.JSON(fiber.Map{"message": "Role assigned successfully"})
}

// UnassignRole removes a role from the user's set for one system.
func (s *Service) UnassignRole(c *fiber.Ctx) error {
	var in roleChange
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	err := usercontroller.UnassignRole(s.db, c.Params("id"), in.Sistema, in.Rol, session.Username(c))
	if err != nil {
		return s.roleChangeError(c, err, "failed to unassign role")
	}

	if _, err := s.reconciler.RecomputeAssignedCounts(c.Context()); err != nil {
		log.Error().Err(err).Msg("failed to recompute role counts")
	}

	return c.JSON(fiber.Map{"message": "Role unassigned successfully"})
}

func (s *Service) roleChangeError(c *fiber.Ctx, err error, logMsg string) error {
	switch {
	case errors.Is(err, usercontroller.ErrUserNotFound), errors.Is(err, usercontroller.ErrRoleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, usercontroller.ErrSystemMismatch), errors.Is(err, usercontroller.ErrUnknownSystem):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg(logMsg)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
