package integration

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

	err = db.AutoMigrate(&models.IntegrationStatus{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestListOrder(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now().UTC()
	statuses := []models.IntegrationStatus{
		{ID: "i3", Sistema: "sim", Estado: models.SyncExitoso, UltimaSincronizacion: now},
		{ID: "i1", Sistema: "keycloak", Estado: models.SyncExitoso, UltimaSincronizacion: now},
		{ID: "i2", Sistema: "sgr", Estado: models.SyncFallido, Reprocesable: true, UltimaSincronizacion: now},
	}

	for i := range statuses {
		require.NoError(t, db.Create(&statuses[i]).Error)
	}

	listed, err := List(db)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	assert.Equal(t, "i1", listed[0].ID)
	assert.Equal(t, "i2", listed[1].ID)
	assert.Equal(t, "i3", listed[2].ID)
}

func TestGetAndSave(t *testing.T) {
	db := setupTestDB(t)

	status := models.IntegrationStatus{
		ID:                   "i2",
		Sistema:              "sgr",
		Estado:               models.SyncFallido,
		Error:                "Error de conexión con base de datos SGR",
		Reprocesable:         true,
		UltimaSincronizacion: time.Now().UTC(),
	}
	require.NoError(t, Save(db, &status))

	found, err := Get(db, "i2")
	require.NoError(t, err)
	assert.Equal(t, models.SyncFallido, found.Estado)
	assert.True(t, found.Reprocesable)

	found.Estado = models.SyncExitoso
	found.Error = ""
	found.Reprocesable = false
	require.NoError(t, Save(db, found))

	updated, err := Get(db, "i2")
	require.NoError(t, err)
	assert.Equal(t, models.SyncExitoso, updated.Estado)
	assert.Empty(t, updated.Error)

	_, err = Get(db, "missing")
	assert.ErrorIs(t, err, ErrStatusNotFound)
}

func TestNilDB(t *testing.T) {
	_, err := List(nil)
	assert.ErrorIs(t, err, ErrDBNil)

	_, err = Get(nil, "i1")
	assert.ErrorIs(t, err, ErrDBNil)

	assert.ErrorIs(t, Save(nil, &models.IntegrationStatus{}), ErrDBNil)
}
