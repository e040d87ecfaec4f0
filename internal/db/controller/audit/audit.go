// Package audit provides the append-only audit log of governance actions.
package audit

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrStorage is returned when the underlying persistence is unavailable.
	ErrStorage = errors.New("audit storage unavailable")
)

// List retrieves all audit entries, newest first.
func List(db *gorm.DB) ([]models.AuditEntry, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var entries []models.AuditEntry
	result := db.Order("fecha DESC, id DESC").Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, result.Error)
	}

	return entries, nil
}

// Append writes an immutable audit entry. The id and timestamp are filled
// in when absent. Failures are surfaced to the caller, never swallowed:
// an operation whose audit entry cannot be written must not commit.
func Append(db *gorm.DB, entry *models.AuditEntry) error {
	if db == nil {
		return ErrDBNil
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if entry.Fecha.IsZero() {
		entry.Fecha = time.Now().UTC()
	}

	if result := db.Create(entry); result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStorage, result.Error)
	}

	return nil
}
