package audit

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/config"
	"github.com/iam-console/iam-console/internal/db/models"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.AuditEntry{}))

	base := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	entries := []models.AuditEntry{
		{
			ID: "a1", Usuario: "Emma Hernández", Accion: models.AccionAsignacionRol,
			Sistema: "Keycloak", Detalle: `Se agregó el rol "admin" al usuario Emma Hernández`,
			Fecha: base, Responsable: "Admin Console",
		},
		{
			ID: "a2", Usuario: "Carlos Ruiz", Accion: models.AccionCreacionUsuario,
			Sistema: "SGR", Detalle: "Se ha creado el usuario Carlos Ruiz",
			Fecha: base.Add(time.Hour), Responsable: "Admin Console",
		},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}

	app := fiber.New()

	var s Service
	s.Init(app, &config.Config{}, db)

	return app, db
}

func perform(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)

	resp, err := app.Test(req, -1)
	require.NoError(t, err, "app.Test failed")

	return resp
}

func TestList(t *testing.T) {
	app, _ := newTestApp(t)

	resp := perform(t, app, Path)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []models.AuditEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, "a2", entries[0].ID)
	assert.Equal(t, "a1", entries[1].ID)
}

func TestExport(t *testing.T) {
	app, _ := newTestApp(t)

	resp := perform(t, app, Path+"/export")
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "auditoria.csv")

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"id", "usuario", "accion", "sistema", "detalle", "fecha", "responsable"}, records[0])
	assert.Equal(t, "a2", records[1][0])
	assert.Equal(t, "2024-01-15T11:30:00Z", records[1][5])
}

func TestListStorageFailure(t *testing.T) {
	app, db := newTestApp(t)
	require.NoError(t, db.Migrator().DropTable(&models.AuditEntry{}))

	resp := perform(t, app, Path)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
