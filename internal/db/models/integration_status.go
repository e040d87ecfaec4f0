package models

import "time"

// SyncEstado represents the outcome of the last synchronization attempt
// between the console and a backend system.
type SyncEstado string

const (
	// SyncExitoso indicates the last synchronization completed successfully.
	// Exitoso is terminal: a successful record is never reprocessed.
	SyncExitoso SyncEstado = "Exitoso"
	// SyncFallido indicates the last synchronization failed.
	SyncFallido SyncEstado = "Fallido"
	// SyncProcesando indicates a synchronization is currently in flight.
	SyncProcesando SyncEstado = "Procesando"
)

// IntegrationStatus records the sync state of one backend integration.
// Estado transitions: Procesando -> {Exitoso, Fallido};
// Fallido -> Procesando (only when Reprocesable); Exitoso is terminal.
type IntegrationStatus struct {
	// ID is the unique identifier for the integration record.
	ID string `gorm:"primaryKey;size:64" json:"id"`
	// Sistema is the display name of the integrated system.
	Sistema string `gorm:"size:100;not null" json:"sistema"`
	// Estado is the current synchronization state.
	Estado SyncEstado `gorm:"type:varchar(20);not null" json:"estado"`
	// UltimaSincronizacion is the time of the last synchronization attempt.
	UltimaSincronizacion time.Time `gorm:"column:ultima_sincronizacion" json:"ultimaSincronizacion"`
	// Error holds the failure description, present iff Estado is Fallido.
	Error string `gorm:"size:512" json:"error,omitempty"`
	// Reprocesable is true only when Estado is Fallido and the failure
	// class is retryable.
	Reprocesable bool `json:"reprocesable"`
	// UpdatedAt is the timestamp when the record was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the IntegrationStatus model.
// This overrides GORM's default pluralized table naming.
func (IntegrationStatus) TableName() string {
	return "integration_statuses"
}

// CanReprocess reports whether a manual reprocess may be launched.
func (s *IntegrationStatus) CanReprocess() bool {
	return s.Estado == SyncFallido && s.Reprocesable
}
