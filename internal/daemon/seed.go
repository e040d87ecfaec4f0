package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/config"
	"github.com/iam-console/iam-console/internal/db/models"
	"github.com/iam-console/iam-console/internal/reconciler"
)

// seed populates an empty database with the demo dataset: the console
// admin account, the governed users with their role assignments, the
// role catalog, historical audit entries, integration statuses and
// notifications.
func seed(_ *config.Config, db *gorm.DB) {
	var count int64

	db.Model(&models.Account{}).Count(&count)
	if count == 0 {
		// Default console account, change the password after first login.
		db.Create(
			&models.Account{
				Username: "admin",
				Password: models.HashPassword("changeme"),
				Active:   true,
			},
		)
	}

	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	seedRoles(db)
	seedUsers(db)
	seedAudit(db)
	seedIntegrations(db)
	seedNotifications(db)

	// Seeded counts come from the reconciler, not from the fixtures.
	if _, err := reconciler.NewService(db).RecomputeAssignedCounts(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to reconcile seeded role counts")
	}
}

func seedRoles(db *gorm.DB) {
	roles := []models.Role{
		{ID: "r1", Nombre: "admin", Descripcion: "Acceso total al sistema", Sistema: models.SystemKeycloak,
			Permisos: []string{"read", "write", "delete", "admin"}},
		{ID: "r2", Nombre: "supervisor_retail", Descripcion: "Supervisión de operaciones en tienda", Sistema: models.SystemSGR,
			Permisos: []string{"read", "approve_transfers"}},
		{ID: "r3", Nombre: "inventory_manager", Descripcion: "Gestión de inventarios y bodegas", Sistema: models.SystemSIM,
			Permisos: []string{"read", "update_stock"}},
		// Roles referenced by the seeded assignments. Every assignment
		// must resolve to a role in the matching system.
		{ID: "r4", Nombre: "user_management", Descripcion: "Gestión de usuarios", Sistema: models.SystemKeycloak,
			Permisos: []string{"read", "write"}},
		{ID: "r5", Nombre: "viewer", Descripcion: "Acceso de solo lectura", Sistema: models.SystemKeycloak,
			Permisos: []string{"read"}},
		{ID: "r6", Nombre: "regional_admin", Descripcion: "Administración regional", Sistema: models.SystemKeycloak,
			Permisos: []string{"read", "write", "admin"}},
		{ID: "r7", Nombre: "support", Descripcion: "Soporte técnico", Sistema: models.SystemKeycloak,
			Permisos: []string{"read"}},
		{ID: "r8", Nombre: "operator", Descripcion: "Operación de tienda", Sistema: models.SystemSGR,
			Permisos: []string{"read", "write"}},
		{ID: "r9", Nombre: "manager", Descripcion: "Gerencia de tienda", Sistema: models.SystemSGR,
			Permisos: []string{"read", "write", "approve_transfers"}},
		{ID: "r10", Nombre: "viewer", Descripcion: "Acceso de solo lectura", Sistema: models.SystemSGR,
			Permisos: []string{"read"}},
		{ID: "r11", Nombre: "viewer", Descripcion: "Acceso de solo lectura", Sistema: models.SystemSIM,
			Permisos: []string{"read"}},
		{ID: "r12", Nombre: "full_access", Descripcion: "Acceso completo a inventarios", Sistema: models.SystemSIM,
			Permisos: []string{"read", "write", "delete"}},
		{ID: "r13", Nombre: "support_level_1", Descripcion: "Soporte de primer nivel", Sistema: models.SystemSIM,
			Permisos: []string{"read"}},
	}

	for i := range roles {
		db.Create(&roles[i])
	}
}

func seedUsers(db *gorm.DB) {
	users := []struct {
		user     models.User
		sistemas map[models.SystemKey][]string
	}{
		{
			user: models.User{ID: "1", Nombre: "Emma", Apellido: "Hernández",
				Email: "emma.hernandez@tia.com.ec", Telefono: "+593 98 765 4321",
				Estado: models.EstadoActivo, Cargo: "Administrador IT"},
			sistemas: map[models.SystemKey][]string{
				models.SystemKeycloak: {"admin", "user_management"},
				models.SystemSGR:      {"supervisor_retail"},
				models.SystemSIM:      {"inventory_manager"},
			},
		},
		{
			user: models.User{ID: "2", Nombre: "Jose", Apellido: "Yandun",
				Email: "jose.yandun@tia.com.ec", Telefono: "+0988555256",
				Estado: models.EstadoActivo, Cargo: "Analista de Sistemas"},
			sistemas: map[models.SystemKey][]string{
				models.SystemKeycloak: {"viewer"},
				models.SystemSGR:      {"operator"},
				models.SystemSIM:      {"viewer"},
			},
		},
		{
			user: models.User{ID: "3", Nombre: "William", Apellido: "Cardenas",
				Email: "william.cardenas@tia.com.ec", Telefono: "+593 99 123 4567",
				Estado: models.EstadoActivo, Cargo: "Gerente Regional"},
			sistemas: map[models.SystemKey][]string{
				models.SystemKeycloak: {"regional_admin"},
				models.SystemSGR:      {"manager"},
				models.SystemSIM:      {"full_access"},
			},
		},
		{
			user: models.User{ID: "4", Nombre: "Xavier", Apellido: "Siavichay",
				Email: "xavier.siavichay@tia.com.ec", Telefono: "+0939243551",
				Estado: models.EstadoActivo, Cargo: "Soporte Técnico"},
			sistemas: map[models.SystemKey][]string{
				models.SystemKeycloak: {"support"},
				models.SystemSGR:      {"viewer"},
				models.SystemSIM:      {"support_level_1"},
			},
		},
	}

	for i := range users {
		db.Create(&users[i].user)

		for sistema, roleNames := range users[i].sistemas {
			for _, roleName := range roleNames {
				db.Create(&models.UserRole{
					UserID:   users[i].user.ID,
					Sistema:  sistema,
					RoleName: roleName,
				})
			}
		}
	}
}

func seedAudit(db *gorm.DB) {
	entries := []models.AuditEntry{
		{ID: "a1", Usuario: "Emma Hernández", Accion: models.AccionAsignacionRol, Sistema: "Keycloak",
			Detalle:     `Se agregó el rol "admin" al usuario Emma Hernández`,
			Fecha:       time.Date(2024, 5, 20, 14, 30, 22, 0, time.UTC),
			Responsable: "Sistema (Auto)"},
		{ID: "a2", Usuario: "Jose Yandun", Accion: models.AccionCreacionUsuario, Sistema: "SIM",
			Detalle:     "Usuario creado exitosamente vía Event Bus",
			Fecha:       time.Date(2024, 5, 20, 15, 10, 5, 0, time.UTC),
			Responsable: "Admin Console"},
		{ID: "a3", Usuario: "Xavier Siavichay", Accion: models.AccionReprocesoManual, Sistema: "SGR",
			Detalle:     "Reproceso de integración fallida por timeout",
			Fecha:       time.Date(2024, 5, 21, 9, 45, 12, 0, time.UTC),
			Responsable: "Emma Hernández"},
	}

	for i := range entries {
		db.Create(&entries[i])
	}
}

func seedIntegrations(db *gorm.DB) {
	now := time.Now().UTC()

	statuses := []models.IntegrationStatus{
		{ID: "i1", Sistema: "Keycloak", Estado: models.SyncExitoso,
			UltimaSincronizacion: now.Add(-5 * time.Minute)},
		{ID: "i2", Sistema: "SGR (Retail)", Estado: models.SyncFallido,
			UltimaSincronizacion: now.Add(-1 * time.Hour),
			Error:                "Error de conexión con base de datos SGR",
			Reprocesable:         true},
		{ID: "i3", Sistema: "SIM (Inventario)", Estado: models.SyncExitoso,
			UltimaSincronizacion: now.Add(-12 * time.Minute)},
		{ID: "i4", Sistema: "Active Directory", Estado: models.SyncProcesando,
			UltimaSincronizacion: now},
	}

	for i := range statuses {
		db.Create(&statuses[i])
	}
}

func seedNotifications(db *gorm.DB) {
	now := time.Now().UTC()

	notifications := []models.Notification{
		{ID: "n1", Titulo: "Fallo en SGR", Mensaje: "La integración con SGR ha fallado para 3 usuarios.",
			Fecha: now.Add(-10 * time.Minute), Tipo: models.TipoError},
		{ID: "n2", Titulo: "Nuevo Rol Creado", Mensaje: `Se ha creado el rol "Auditor Externo" en Keycloak.`,
			Fecha: now.Add(-1 * time.Hour), Tipo: models.TipoInfo},
		{ID: "n3", Titulo: "Sincronización Exitosa", Mensaje: "Sincronización con Active Directory completada.",
			Fecha: now.Add(-3 * time.Hour), Leida: true, Tipo: models.TipoSuccess},
	}

	for i := range notifications {
		db.Create(&notifications[i])
	}
}
