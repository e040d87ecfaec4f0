package models

import "time"

// UserRole represents one role held by a user in one backend system.
// This junction table replaces the original console's JSON-encoded sistemas
// column while preserving the external read shape.
// Referential integrity against the roles table (a matching Role with the
// same sistema and nombre) is enforced at the application level, not by a
// foreign key.
type UserRole struct {
	// UserID is the ID of the user holding the role.
	UserID string `gorm:"primaryKey;size:64;column:user_id"`
	// Sistema is the backend system the role belongs to.
	Sistema SystemKey `gorm:"primaryKey;type:varchar(20);column:sistema"`
	// RoleName is the role's name within that system.
	RoleName string `gorm:"primaryKey;size:100;column:role_name"`
	// CreatedAt is the timestamp when the role was assigned (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the UserRole model.
// This overrides GORM's default pluralized table naming.
func (UserRole) TableName() string {
	return "user_roles"
}
