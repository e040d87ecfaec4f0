// Package user provides CRUD and role-assignment operations for governed users.
package user

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/db/controller/audit"
	"github.com/iam-console/iam-console/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound is returned when a referenced role does not exist in any system.
	ErrRoleNotFound = errors.New("role not found")
	// ErrDuplicateKey is returned when creating a user whose id or email already exists.
	ErrDuplicateKey = errors.New("user id or email already exists")
	// ErrValidation is returned when user input fails validation.
	ErrValidation = errors.New("user validation failed")
	// ErrSystemMismatch is returned when a role exists but belongs to a different system.
	ErrSystemMismatch = errors.New("role belongs to a different system")
	// ErrUnknownSystem is returned when a system key does not name a governed system.
	ErrUnknownSystem = errors.New("unknown system key")
)

// validate is the package-level validator instance.
var validate = validator.New() //nolint:gochecknoglobals

// createInput carries the validated subset of a user create request.
type createInput struct {
	ID     string `validate:"required,max=64"`
	Nombre string `validate:"required,max=100"`
	Email  string `validate:"required,email,max=255"`
	Cargo  string `validate:"required,max=100"`
}

// List retrieves all users in insertion order with their role assignments loaded.
func List(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var users []models.User
	result := db.Preload("Roles").Order("created_at ASC, id ASC").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

// Get retrieves a user by id with role assignments loaded.
func Get(db *gorm.DB, id string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User
	result := db.Preload("Roles").First(&u, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &u, nil
}

// Create creates a new user together with its initial role assignments.
// Every referenced role must exist in the matching system. The user row,
// the assignment rows and the audit entry commit in a single transaction;
// on any failure the store is left unchanged.
func Create(db *gorm.DB, u *models.User, sistemas map[models.SystemKey][]string, responsable string) error {
	if db == nil {
		return ErrDBNil
	}

	in := createInput{ID: u.ID, Nombre: u.Nombre, Email: u.Email, Cargo: u.Cargo}
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if u.Estado == "" {
		u.Estado = models.EstadoActivo
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("id = ? OR email = ?", u.ID, u.Email).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return ErrDuplicateKey
		}

		for sistema, roleNames := range sistemas {
			if !sistema.Known() {
				return fmt.Errorf("%w: %s", ErrUnknownSystem, sistema)
			}

			for _, roleName := range roleNames {
				if err := checkRole(tx, sistema, roleName); err != nil {
					return err
				}
			}
		}

		if err := tx.Create(u).Error; err != nil {
			return err
		}

		for sistema, roleNames := range sistemas {
			for _, roleName := range roleNames {
				assignment := models.UserRole{UserID: u.ID, Sistema: sistema, RoleName: roleName}
				if err := tx.Create(&assignment).Error; err != nil {
					return err
				}
			}
		}

		return audit.Append(tx, &models.AuditEntry{
			Usuario:     u.Nombre + " " + u.Apellido,
			Accion:      models.AccionCreacionUsuario,
			Sistema:     "Consola",
			Detalle:     fmt.Sprintf("Usuario %q creado exitosamente", u.Email),
			Responsable: responsable,
		})
	})
}

// Deactivate soft-deactivates a user. Users are never physically deleted.
// Deactivating an already inactive user is a no-op without an audit entry.
func Deactivate(db *gorm.DB, id, responsable string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		u, err := Get(tx, id)
		if err != nil {
			return err
		}

		if u.Estado == models.EstadoInactivo {
			return nil
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", id).
			Update("estado", models.EstadoInactivo).Error; err != nil {
			return err
		}

		return audit.Append(tx, &models.AuditEntry{
			Usuario:     u.Nombre + " " + u.Apellido,
			Accion:      models.AccionDesactivacionUsuario,
			Sistema:     "Consola",
			Detalle:     fmt.Sprintf("Usuario %q desactivado", u.Email),
			Responsable: responsable,
		})
	})
}

// AssignRole adds a role to the user's set for the given system.
// Assigning an already-held role is a no-op, not an error, and writes no
// audit entry. On success the assignment row and the audit entry commit
// in one transaction, so no partial state is ever visible to readers.
func AssignRole(db *gorm.DB, userID string, sistema models.SystemKey, roleName, responsable string) error {
	if db == nil {
		return ErrDBNil
	}

	if !sistema.Known() {
		return fmt.Errorf("%w: %s", ErrUnknownSystem, sistema)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		u, err := Get(tx, userID)
		if err != nil {
			return err
		}

		if err := checkRole(tx, sistema, roleName); err != nil {
			return err
		}

		if u.HoldsRole(sistema, roleName) {
			return nil
		}

		assignment := models.UserRole{UserID: userID, Sistema: sistema, RoleName: roleName}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		return audit.Append(tx, &models.AuditEntry{
			Usuario:     u.Nombre + " " + u.Apellido,
			Accion:      models.AccionAsignacionRol,
			Sistema:     sistema.Label(),
			Detalle:     fmt.Sprintf("Se agregó el rol %q al usuario %s %s", roleName, u.Nombre, u.Apellido),
			Responsable: responsable,
		})
	})
}

// UnassignRole removes a role from the user's set for the given system.
// Removing a role the user does not hold is a no-op without an audit entry.
func UnassignRole(db *gorm.DB, userID string, sistema models.SystemKey, roleName, responsable string) error {
	if db == nil {
		return ErrDBNil
	}

	if !sistema.Known() {
		return fmt.Errorf("%w: %s", ErrUnknownSystem, sistema)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		u, err := Get(tx, userID)
		if err != nil {
			return err
		}

		if !u.HoldsRole(sistema, roleName) {
			return nil
		}

		if err := tx.Where("user_id = ? AND sistema = ? AND role_name = ?", userID, sistema, roleName).
			Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		return audit.Append(tx, &models.AuditEntry{
			Usuario:     u.Nombre + " " + u.Apellido,
			Accion:      models.AccionRevocacionRol,
			Sistema:     sistema.Label(),
			Detalle:     fmt.Sprintf("Se removió el rol %q del usuario %s %s", roleName, u.Nombre, u.Apellido),
			Responsable: responsable,
		})
	})
}

// checkRole verifies that the referenced role exists in the given system.
// A role found under another system yields ErrSystemMismatch so callers can
// distinguish a typo in the role name from a wrong system key.
func checkRole(tx *gorm.DB, sistema models.SystemKey, roleName string) error {
	var count int64
	if err := tx.Model(&models.Role{}).
		Where("sistema = ? AND nombre = ?", sistema, roleName).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	if err := tx.Model(&models.Role{}).
		Where("nombre = ?", roleName).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return fmt.Errorf("%w: role %q is not defined for system %q", ErrSystemMismatch, roleName, sistema)
	}

	return fmt.Errorf("%w: %q", ErrRoleNotFound, roleName)
}
