package models

import "time"

// Audit action kinds written by the governed operations.
const (
	// AccionCreacionUsuario is recorded when a user is created.
	AccionCreacionUsuario = "Creación de Usuario"
	// AccionDesactivacionUsuario is recorded when a user is soft-deactivated.
	AccionDesactivacionUsuario = "Desactivación de Usuario"
	// AccionAsignacionRol is recorded when a role is assigned to a user.
	AccionAsignacionRol = "Asignación de Rol"
	// AccionRevocacionRol is recorded when a role is removed from a user.
	AccionRevocacionRol = "Revocación de Rol"
	// AccionCreacionRol is recorded when a role is created.
	AccionCreacionRol = "Creación de Rol"
	// AccionReprocesoManual is recorded when a failed integration is re-launched.
	AccionReprocesoManual = "Reproceso Manual"
)

// AuditEntry is an immutable record of a governance action.
// Entries are append-only: no update or delete path exists.
type AuditEntry struct {
	// ID is the unique identifier for the entry.
	ID string `gorm:"primaryKey;size:64" json:"id"`
	// Usuario is the subject of the action.
	Usuario string `gorm:"size:255;not null" json:"usuario"`
	// Accion is the action kind, one of the Accion constants.
	Accion string `gorm:"size:100;not null" json:"accion"`
	// Sistema is the display name of the system the action touched.
	Sistema string `gorm:"size:100" json:"sistema"`
	// Detalle is a free-text description of the action.
	Detalle string `gorm:"size:512" json:"detalle"`
	// Fecha is the timestamp of the action.
	Fecha time.Time `gorm:"not null" json:"fecha"`
	// Responsable is the actor that performed the action.
	Responsable string `gorm:"size:255" json:"responsable"`
}

// TableName specifies the database table name for the AuditEntry model.
// This overrides GORM's default pluralized table naming.
func (AuditEntry) TableName() string {
	return "audit"
}
