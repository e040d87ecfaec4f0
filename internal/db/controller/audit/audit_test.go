package audit

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.AuditEntry{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestAppendFillsDefaults(t *testing.T) {
	db := setupTestDB(t)

	entry := models.AuditEntry{
		Usuario:     "Emma Hernández",
		Accion:      models.AccionAsignacionRol,
		Sistema:     "Keycloak",
		Detalle:     `Se agregó el rol "admin" al usuario Emma Hernández`,
		Responsable: "Admin Console",
	}

	require.NoError(t, Append(db, &entry))

	assert.NotEmpty(t, entry.ID)
	assert.WithinDuration(t, time.Now().UTC(), entry.Fecha, time.Minute)

	// explicit id and timestamp are kept as given
	fixed := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	explicit := models.AuditEntry{
		ID:          "a99",
		Usuario:     "sgr",
		Accion:      models.AccionReprocesoManual,
		Sistema:     "sgr",
		Fecha:       fixed,
		Responsable: "Admin Console",
	}

	require.NoError(t, Append(db, &explicit))
	assert.Equal(t, "a99", explicit.ID)
	assert.True(t, explicit.Fecha.Equal(fixed))
}

func TestListNewestFirst(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a1", "a2", "a3"} {
		entry := models.AuditEntry{
			ID:          id,
			Usuario:     "Emma Hernández",
			Accion:      models.AccionAsignacionRol,
			Sistema:     "Keycloak",
			Fecha:       base.Add(time.Duration(i) * time.Hour),
			Responsable: "Admin Console",
		}
		require.NoError(t, Append(db, &entry))
	}

	entries, err := List(db)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a3", entries[0].ID)
	assert.Equal(t, "a1", entries[2].ID)
}

func TestStorageErrors(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.AuditEntry{}))

	err := Append(db, &models.AuditEntry{Usuario: "x", Accion: models.AccionCreacionUsuario})
	assert.ErrorIs(t, err, ErrStorage)

	_, err = List(db)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestNilDB(t *testing.T) {
	_, err := List(nil)
	assert.ErrorIs(t, err, ErrDBNil)

	assert.ErrorIs(t, Append(nil, &models.AuditEntry{}), ErrDBNil)
}
