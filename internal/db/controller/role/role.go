// Package role provides CRUD operations for roles in the governed systems.
package role

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
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrDuplicateRole is returned when a role id or (sistema, nombre) pair already exists.
	ErrDuplicateRole = errors.New("role already exists")
	// ErrValidation is returned when role input fails validation.
	ErrValidation = errors.New("role validation failed")
	// ErrUnknownSystem is returned when the role references an unknown system key.
	ErrUnknownSystem = errors.New("unknown system key")
)

var validate = validator.New() //nolint:gochecknoglobals

type createInput struct {
	ID     string `validate:"required,max=64"`
	Nombre string `validate:"required,max=100"`
}

// List retrieves all roles ordered by system and name.
func List(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	result := db.Order("sistema ASC, nombre ASC").Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

// Get retrieves a role by its id.
func Get(db *gorm.DB, id string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role
	result := db.First(&r, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &r, nil
}

// GetBySistemaNombre retrieves a role by its system key and name.
func GetBySistemaNombre(db *gorm.DB, sistema models.SystemKey, nombre string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role
	result := db.First(&r, "sistema = ? AND nombre = ?", sistema, nombre)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &r, nil
}

// Create creates a new role. The role name must be unique within its system.
// The role row and the audit entry commit in one transaction.
func Create(db *gorm.DB, r *models.Role, responsable string) error {
	if db == nil {
		return ErrDBNil
	}

	in := createInput{ID: r.ID, Nombre: r.Nombre}
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if !r.Sistema.Known() {
		return fmt.Errorf("%w: %s", ErrUnknownSystem, r.Sistema)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Role{}).
			Where("id = ? OR (sistema = ? AND nombre = ?)", r.ID, r.Sistema, r.Nombre).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return ErrDuplicateRole
		}

		if err := tx.Create(r).Error; err != nil {
			return err
		}

		return audit.Append(tx, &models.AuditEntry{
			Usuario:     r.Nombre,
			Accion:      models.AccionCreacionRol,
			Sistema:     r.Sistema.Label(),
			Detalle:     fmt.Sprintf("Se ha creado el rol %q en %s", r.Nombre, r.Sistema.Label()),
			Responsable: responsable,
		})
	})
}
