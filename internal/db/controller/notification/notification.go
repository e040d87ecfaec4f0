// Package notification provides access to console notifications.
package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("notification not found")
)

// List retrieves all notifications, newest first.
func List(db *gorm.DB) ([]models.Notification, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var notifications []models.Notification
	result := db.Order("fecha DESC, id DESC").Find(&notifications)
	if result.Error != nil {
		return nil, result.Error
	}

	return notifications, nil
}

// Create raises a new notification. The id and timestamp are filled in when absent.
func Create(db *gorm.DB, n *models.Notification) error {
	if db == nil {
		return ErrDBNil
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	if n.Fecha.IsZero() {
		n.Fecha = time.Now().UTC()
	}

	if result := db.Create(n); result.Error != nil {
		return result.Error
	}

	return nil
}

// MarkRead marks a notification as read.
func MarkRead(db *gorm.DB, id string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.Notification{}).Where("id = ?", id).Update("leida", true)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
