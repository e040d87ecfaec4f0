package models

import "time"

// Role represents a technical role in one of the governed backend systems.
type Role struct {
	// ID is the unique identifier for the role.
	ID string `gorm:"primaryKey;size:64" json:"id"`
	// Nombre is the role name, unique within its system.
	Nombre string `gorm:"size:100;not null;uniqueIndex:idx_sistema_nombre" json:"nombre"`
	// Descripcion provides a human-readable explanation of the role's purpose.
	Descripcion string `gorm:"size:255" json:"descripcion"`
	// Sistema is the backend system this role belongs to.
	Sistema SystemKey `gorm:"type:varchar(20);not null;uniqueIndex:idx_sistema_nombre" json:"sistema"`
	// Permisos is the set of permission strings granted by the role.
	Permisos []string `gorm:"serializer:json" json:"permisos"`
	// UsuariosAsignados is the number of distinct users holding this role.
	// It is derived, never authoritative; the reconciler recomputes it from
	// the user_roles table on read.
	UsuariosAsignados int `gorm:"column:usuarios_asignados" json:"usuariosAsignados"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"-"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
