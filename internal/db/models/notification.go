package models

import "time"

// NotificationTipo classifies a console notification.
type NotificationTipo string

const (
	// TipoInfo is an informational notification.
	TipoInfo NotificationTipo = "info"
	// TipoError reports a failure needing operator attention.
	TipoError NotificationTipo = "error"
	// TipoSuccess confirms a completed operation.
	TipoSuccess NotificationTipo = "success"
)

// Notification is a console notification shown to administrators.
type Notification struct {
	// ID is the unique identifier for the notification.
	ID string `gorm:"primaryKey;size:64" json:"id"`
	// Titulo is the short headline.
	Titulo string `gorm:"size:100;not null" json:"titulo"`
	// Mensaje is the notification body.
	Mensaje string `gorm:"size:512" json:"mensaje"`
	// Fecha is when the notification was raised.
	Fecha time.Time `gorm:"not null" json:"fecha"`
	// Leida indicates whether an administrator has read the notification.
	Leida bool `json:"leida"`
	// Tipo classifies the notification (info, error, success).
	Tipo NotificationTipo `gorm:"type:varchar(20);not null" json:"tipo"`
}

// TableName specifies the database table name for the Notification model.
// This overrides GORM's default pluralized table naming.
func (Notification) TableName() string {
	return "notifications"
}
