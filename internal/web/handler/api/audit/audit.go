// Package audit provides the JSON API and CSV export for the audit log.
package audit

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/config"
	auditcontroller "github.com/iam-console/iam-console/internal/db/controller/audit"
	"github.com/iam-console/iam-console/internal/web/handler"
)

const (
	// Path is the base path for the audit API.
	Path = handler.APIPath + "/audit"
)

// Service provides the audit API.
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
	app.Get(Path+"/export", s.Export)
}

// List returns all audit entries, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	entries, err := auditcontroller.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list audit entries")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch audit log"})
	}

	return c.JSON(entries)
}

// Export streams the audit log as a CSV download.
func (s *Service) Export(c *fiber.Ctx) error {
	entries, err := auditcontroller.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to export audit entries")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export audit log"})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{"id", "usuario", "accion", "sistema", "detalle", "fecha", "responsable"})

	for _, e := range entries {
		if err := w.Write([]string{
			e.ID,
			e.Usuario,
			e.Accion,
			e.Sistema,
			e.Detalle,
			e.Fecha.Format(time.RFC3339),
			e.Responsable,
		}); err != nil {
			log.Error().Err(err).Msg("failed to write audit csv row")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export audit log"})
		}
	}

	w.Flush()

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="auditoria.csv"`)

	return c.Send(buf.Bytes())
}
