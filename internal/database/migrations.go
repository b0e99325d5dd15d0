package database

import (
	"gorm.io/gorm"

	"gorm-trashbin/internal/models"
	"gorm-trashbin/pkg/crypto"
)

// Default bootstrap administrator credentials. The seeded account is only
// created when the users table is empty and should be rotated immediately on
// real installations.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@localhost"
	DefaultAdminPassword = "admin"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Snippet{},
		&models.TrashEvent{},
		&models.SystemSetting{},
	)
}

// SeedData ensures a usable administrator account exists on fresh installs.
// Existing installations, including ones whose only accounts sit in the
// trash, are left untouched.
func SeedData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := crypto.HashPassword(DefaultAdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: DefaultAdminUsername,
		Email:    DefaultAdminEmail,
		Password: hashed,
		IsAdmin:  true,
		IsActive: true,
	}

	return db.Where(models.User{Username: DefaultAdminUsername}).
		Attrs(admin).
		FirstOrCreate(&models.User{}).Error
}
