package notification

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

	err = db.AutoMigrate(&models.Notification{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestCreateAndList(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"n1", "n2"} {
		n := models.Notification{
			ID:      id,
			Titulo:  "Sincronización fallida",
			Mensaje: "La sincronización con SGR ha fallado",
			Fecha:   base.Add(time.Duration(i) * time.Hour),
			Tipo:    models.TipoError,
		}
		require.NoError(t, Create(db, &n))
	}

	generated := models.Notification{Titulo: "Usuario creado", Tipo: models.TipoSuccess}
	require.NoError(t, Create(db, &generated))
	assert.NotEmpty(t, generated.ID)
	assert.False(t, generated.Fecha.IsZero())

	notifications, err := List(db)
	require.NoError(t, err)
	require.Len(t, notifications, 3)

	// newest first
	assert.Equal(t, generated.ID, notifications[0].ID)
}

func TestMarkRead(t *testing.T) {
	db := setupTestDB(t)

	n := models.Notification{ID: "n1", Titulo: "Sincronización fallida", Tipo: models.TipoError}
	require.NoError(t, Create(db, &n))

	require.NoError(t, MarkRead(db, "n1"))

	notifications, err := List(db)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].Leida)

	assert.ErrorIs(t, MarkRead(db, "missing"), ErrNotificationNotFound)
}

func TestNilDB(t *testing.T) {
	_, err := List(nil)
	assert.ErrorIs(t, err, ErrDBNil)

	assert.ErrorIs(t, Create(nil, &models.Notification{}), ErrDBNil)
	assert.ErrorIs(t, MarkRead(nil, "n1"), ErrDBNil)
}
