package user

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

	// Migrate the schema
	err = db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.Role{},
		&models.AuditEntry{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedRoles inserts the role catalog used by the tests.
func seedRoles(t *testing.T, db *gorm.DB) {
	t.Helper()

	roles := []models.Role{
		{ID: "r1", Nombre: "admin", Sistema: models.SystemKeycloak, Permisos: []string{"read", "admin"}},
		{ID: "r2", Nombre: "manager_retail", Sistema: models.SystemSGR, Permisos: []string{"read", "approve_transfers"}},
		{ID: "r3", Nombre: "inventory_manager", Sistema: models.SystemSIM, Permisos: []string{"read", "update_stock"}},
	}

	for i := range roles {
		require.NoError(t, db.Create(&roles[i]).Error, "failed to seed role")
	}
}

func validUser(id string) models.User {
	return models.User{
		ID:       id,
		Nombre:   "Emma",
		Apellido: "Hernández",
		Email:    "emma" + id + "@tia.com.ec",
		Telefono: "+593 98 765 4321",
		Cargo:    "Administrador IT",
	}
}

func auditCount(t *testing.T, db *gorm.DB, accion string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.AuditEntry{}).Where("accion = ?", accion).Count(&count).Error)

	return count
}

func TestCreate(t *testing.T) {
	testCases := []struct {
		name          string
		user          models.User
		sistemas      map[models.SystemKey][]string
		expectedError error
	}{
		{
			name: "success without assignments",
			user: validUser("1"),
		},
		{
			name: "success with assignments",
			user: validUser("2"),
			sistemas: map[models.SystemKey][]string{
				models.SystemKeycloak: {"admin"},
				models.SystemSGR:      {"manager_retail"},
			},
		},
		{
			name:          "empty nombre",
			user:          models.User{ID: "3", Email: "x@tia.com.ec", Cargo: "Analista"},
			expectedError: ErrValidation,
		},
		{
			name:          "empty cargo",
			user:          models.User{ID: "3", Nombre: "Jose", Email: "x@tia.com.ec"},
			expectedError: ErrValidation,
		},
		{
			name:          "malformed email",
			user:          models.User{ID: "3", Nombre: "Jose", Email: "not-an-email", Cargo: "Analista"},
			expectedError: ErrValidation,
		},
		{
			name: "unknown system key",
			user: validUser("3"),
			sistemas: map[models.SystemKey][]string{
				"active_directory": {"admin"},
			},
			expectedError: ErrUnknownSystem,
		},
		{
			name: "role not found",
			user: validUser("3"),
			sistemas: map[models.SystemKey][]string{
				models.SystemKeycloak: {"ghost_role"},
			},
			expectedError: ErrRoleNotFound,
		},
		{
			name: "role in wrong system",
			user: validUser("3"),
			sistemas: map[models.SystemKey][]string{
				models.SystemKeycloak: {"manager_retail"},
			},
			expectedError: ErrSystemMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			seedRoles(t, db)

			err := Create(db, &tc.user, tc.sistemas, "tester")
			if tc.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedError)

				// nothing may be left behind by a failed create
				var users int64
				require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
				assert.Zero(t, users)

				var assignments int64
				require.NoError(t, db.Model(&models.UserRole{}).Count(&assignments).Error)
				assert.Zero(t, assignments)

				return
			}

			require.NoError(t, err)

			created, err := Get(db, tc.user.ID)
			require.NoError(t, err)
			assert.Equal(t, models.EstadoActivo, created.Estado)

			for sistema, roleNames := range tc.sistemas {
				for _, roleName := range roleNames {
					assert.True(t, created.HoldsRole(sistema, roleName))
				}
			}

			assert.Equal(t, int64(1), auditCount(t, db, models.AccionCreacionUsuario))
		})
	}
}

func TestCreateNilDB(t *testing.T) {
	u := validUser("1")
	assert.ErrorIs(t, Create(nil, &u, nil, "tester"), ErrDBNil)
}

func TestCreateDuplicateKey(t *testing.T) {
	db := setupTestDB(t)
	seedRoles(t, db)

	first := validUser("1")
	require.NoError(t, Create(db, &first, nil, "tester"))

	testCases := []struct {
		name string
		user models.User
	}{
		{
			name: "duplicate id",
			user: models.User{ID: "1", Nombre: "Otro", Email: "otro@tia.com.ec", Cargo: "Analista"},
		},
		{
			name: "duplicate email",
			user: models.User{ID: "9", Nombre: "Otro", Email: first.Email, Cargo: "Analista"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Create(db, &tc.user, nil, "tester")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDuplicateKey)

			// the store must be left unchanged
			var users int64
			require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
			assert.Equal(t, int64(1), users)

			stored, err := Get(db, "1")
			require.NoError(t, err)
			assert.Equal(t, first.Email, stored.Email)
		})
	}
}

func TestAssignRole(t *testing.T) {
	db := setupTestDB(t)
	seedRoles(t, db)

	u := validUser("5")
	require.NoError(t, Create(db, &u, nil, "tester"))

	testCases := []struct {
		name          string
		userID        string
		sistema       models.SystemKey
		roleName      string
		expectedError error
	}{
		{
			name:          "user not found",
			userID:        "404",
			sistema:       models.SystemSGR,
			roleName:      "manager_retail",
			expectedError: ErrUserNotFound,
		},
		{
			name:          "role not found",
			userID:        "5",
			sistema:       models.SystemSGR,
			roleName:      "ghost_role",
			expectedError: ErrRoleNotFound,
		},
		{
			name:          "system mismatch",
			userID:        "5",
			sistema:       models.SystemSIM,
			roleName:      "manager_retail",
			expectedError: ErrSystemMismatch,
		},
		{
			name:          "unknown system",
			userID:        "5",
			sistema:       "mainframe",
			roleName:      "manager_retail",
			expectedError: ErrUnknownSystem,
		},
		{
			name:     "success",
			userID:   "5",
			sistema:  models.SystemSGR,
			roleName: "manager_retail",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := AssignRole(db, tc.userID, tc.sistema, tc.roleName, "tester")
			if tc.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedError)

				return
			}

			require.NoError(t, err)

			assigned, err := Get(db, tc.userID)
			require.NoError(t, err)
			assert.True(t, assigned.HoldsRole(tc.sistema, tc.roleName))
			assert.Equal(t, int64(1), auditCount(t, db, models.AccionAsignacionRol))
		})
	}
}

func TestAssignRoleIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedRoles(t, db)

	u := validUser("5")
	require.NoError(t, Create(db, &u, nil, "tester"))

	require.NoError(t, AssignRole(db, "5", models.SystemSGR, "manager_retail", "tester"))
	require.NoError(t, AssignRole(db, "5", models.SystemSGR, "manager_retail", "tester"))

	// a repeated assignment is a no-op: one row, one audit entry
	var assignments int64
	require.NoError(t, db.Model(&models.UserRole{}).Count(&assignments).Error)
	assert.Equal(t, int64(1), assignments)

	assert.Equal(t, int64(1), auditCount(t, db, models.AccionAsignacionRol))
}

func TestAssignRoleAuditAtomicity(t *testing.T) {
	db := setupTestDB(t)
	seedRoles(t, db)

	u := validUser("5")
	require.NoError(t, Create(db, &u, nil, "tester"))

	// break the audit table so the append inside the transaction fails
	require.NoError(t, db.Migrator().DropTable(&models.AuditEntry{}))

	err := AssignRole(db, "5", models.SystemSGR, "manager_retail", "tester")
	require.Error(t, err)

	// the assignment must have been rolled back with the audit failure
	var assignments int64
	require.NoError(t, db.Model(&models.UserRole{}).Count(&assignments).Error)
	assert.Zero(t, assignments)
}

func TestUnassignRole(t *testing.T) {
	db := setupTestDB(t)
	seedRoles(t, db)

	u := validUser("5")
	require.NoError(t, Create(db, &u, nil, "tester"))
	require.NoError(t, AssignRole(db, "5", models.SystemSGR, "manager_retail", "tester"))

	require.NoError(t, UnassignRole(db, "5", models.SystemSGR, "manager_retail", "tester"))

	after, err := Get(db, "5")
	require.NoError(t, err)
	assert.False(t, after.HoldsRole(models.SystemSGR, "manager_retail"))
	assert.Equal(t, int64(1), auditCount(t, db, models.AccionRevocacionRol))

	// removing a role the user does not hold is a no-op without audit
	require.NoError(t, UnassignRole(db, "5", models.SystemSGR, "manager_retail", "tester"))
	assert.Equal(t, int64(1), auditCount(t, db, models.AccionRevocacionRol))
}

func TestDeactivate(t *testing.T) {
	db := setupTestDB(t)
	seedRoles(t, db)

	u := validUser("1")
	require.NoError(t, Create(db, &u, nil, "tester"))

	require.NoError(t, Deactivate(db, "1", "tester"))

	deactivated, err := Get(db, "1")
	require.NoError(t, err)
	assert.Equal(t, models.EstadoInactivo, deactivated.Estado)
	assert.Equal(t, int64(1), auditCount(t, db, models.AccionDesactivacionUsuario))

	// deactivating an inactive user is a no-op without audit
	require.NoError(t, Deactivate(db, "1", "tester"))
	assert.Equal(t, int64(1), auditCount(t, db, models.AccionDesactivacionUsuario))

	assert.ErrorIs(t, Deactivate(db, "404", "tester"), ErrUserNotFound)
}

func TestListInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	seedRoles(t, db)

	for _, id := range []string{"3", "1", "2"} {
		u := validUser(id)
		require.NoError(t, Create(db, &u, nil, "tester"))
		time.Sleep(2 * time.Millisecond)
	}

	users, err := List(db)
	require.NoError(t, err)
	require.Len(t, users, 3)

	// creation order, not id order
	assert.Equal(t, "3", users[0].ID)
}
