// Package integration provides the JSON API for integration-sync status
// and manual reprocessing.
package integration

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/config"
	integrationcontroller "github.com/iam-console/iam-console/internal/db/controller/integration"
	"github.com/iam-console/iam-console/internal/reconciler"
	"github.com/iam-console/iam-console/internal/web/handler"
	"github.com/iam-console/iam-console/internal/web/session"
)

const (
	// Path is the base path for the integrations API.
	Path = handler.APIPath + "/integrations"

	// defaultSyncDelay is how long the stand-in event bus takes to
	// confirm a re-launched synchronization.
	defaultSyncDelay = 2 * time.Second
)

// Service provides the integrations API.
type Service struct {
	handler.Service
	cfg        *config.Config
	db         *gorm.DB
	reconciler *reconciler.Service

	// Sync confirms a re-launched synchronization with the external
	// event bus. Replaceable in tests.
	Sync reconciler.SyncFunc
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

	if s.Sync == nil {
		// No real backend bus exists in this deployment. Confirmation
		// is simulated after a short delay, honoring cancellation.
		s.Sync = func(ctx context.Context) error {
			select {
			case <-time.After(defaultSyncDelay):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	app.Get(Path, s.List)
	app.Get(Path+"/reprocessable", s.Reprocessable)
	app.Post(Path+"/:id/reprocess", s.Reprocess)
}

// List returns all integration records.
func (s *Service) List(c *fiber.Ctx) error {
	statuses, err := integrationcontroller.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list integration statuses")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch integrations"})
	}

	return c.JSON(statuses)
}

// Reprocessable returns the records eligible for manual reprocessing.
func (s *Service) Reprocessable(c *fiber.Ctx) error {
	statuses, err := s.reconciler.FindReprocessable(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to find reprocessable statuses")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch integrations"})
	}

	return c.JSON(statuses)
}

// Reprocess re-launches a failed synchronization and waits for its
// outcome, bounded by the configured timeout.
func (s *Service) Reprocess(c *fiber.Ctx) error {
	timeout := s.cfg.Reprocess.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	status, err := s.reconciler.Reprocess(ctx, c.Params("id"), s.Sync, session.Username(c))
	if err != nil {
		switch {
		case errors.Is(err, reconciler.ErrStatusNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Integration not found"})
		case errors.Is(err, reconciler.ErrNotReprocesable):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Integration is not reprocessable"})
		case errors.Is(err, reconciler.ErrIntegrationTimeout):
			return c.Status(fiber.StatusGatewayTimeout).JSON(status)
		default:
			log.Error().Err(err).Msg("failed to reprocess integration")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reprocess integration"})
		}
	}

	return c.JSON(status)
}
