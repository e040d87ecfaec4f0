package models

import "time"

// UserEstado represents the lifecycle state of a governed user.
// Users are never physically deleted; deactivation flips the state to Inactivo.
type UserEstado string

const (
	// EstadoActivo indicates the user is active in the governed systems.
	EstadoActivo UserEstado = "Activo"
	// EstadoInactivo indicates the user has been soft-deactivated.
	EstadoInactivo UserEstado = "Inactivo"
)

// User represents a governed identity visible in the console.
// Role membership per backend system is kept in the user_roles join table
// and reassembled into the sistemas mapping when the user is serialized.
type User struct {
	// ID is the stable unique identifier for the user.
	ID string `gorm:"primaryKey;size:64" json:"id"`
	// Nombre is the user's given name.
	Nombre string `gorm:"size:100;not null" json:"nombre"`
	// Apellido is the user's family name.
	Apellido string `gorm:"size:100" json:"apellido"`
	// Email is the user's corporate email address.
	Email string `gorm:"unique;size:255;not null" json:"email"`
	// Telefono is the user's contact phone number.
	Telefono string `gorm:"size:50" json:"telefono"`
	// Estado is the lifecycle state (Activo or Inactivo).
	Estado UserEstado `gorm:"type:varchar(20);not null;default:'Activo'" json:"estado"`
	// Cargo is the user's job title, free text from the payroll system.
	Cargo string `gorm:"size:100;not null" json:"cargo"`
	// Roles are the per-system role assignments (loaded via foreign key).
	Roles []UserRole `gorm:"foreignKey:UserID" json:"-"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"-"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the User model.
// This overrides GORM's default pluralized table naming.
func (User) TableName() string {
	return "users"
}

// Sistemas reassembles the user's role assignments into the per-system mapping
// exposed by the API. Every governed system is present, with an empty set when
// the user holds no roles there.
func (u *User) Sistemas() map[SystemKey][]string {
	out := make(map[SystemKey][]string, len(SystemKeys()))
	for _, key := range SystemKeys() {
		out[key] = []string{}
	}

	for _, r := range u.Roles {
		out[r.Sistema] = append(out[r.Sistema], r.RoleName)
	}

	return out
}

// HoldsRole reports whether the user holds the given role in the given system.
func (u *User) HoldsRole(sistema SystemKey, roleName string) bool {
	for _, r := range u.Roles {
		if r.Sistema == sistema && r.RoleName == roleName {
			return true
		}
	}

	return false
}
