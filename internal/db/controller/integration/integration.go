// Package integration provides access to integration-sync status records.
package integration

import (
	"errors"

	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrStatusNotFound is returned when an integration record is not found.
	ErrStatusNotFound = errors.New("integration status not found")
)

// List retrieves all integration records ordered by system name.
func List(db *gorm.DB) ([]models.IntegrationStatus, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var statuses []models.IntegrationStatus
	result := db.Order("sistema ASC").Find(&statuses)
	if result.Error != nil {
		return nil, result.Error
	}

	return statuses, nil
}

// Get retrieves an integration record by its id.
func Get(db *gorm.DB, id string) (*models.IntegrationStatus, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var status models.IntegrationStatus
	result := db.First(&status, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStatusNotFound
		}
		return nil, result.Error
	}

	return &status, nil
}

// Save persists the full state of an integration record.
func Save(db *gorm.DB, status *models.IntegrationStatus) error {
	if db == nil {
		return ErrDBNil
	}

	if result := db.Save(status); result.Error != nil {
		return result.Error
	}

	return nil
}
