package database

import (
	"errors"
	"strings"

	"github.com/chachabrian/tourbook-backend/internal/config"
	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.PasswordResetToken{},
		&models.Category{},
		&models.Tour{},
		&models.Service{},
		&models.Booking{},
		&models.BookingNote{},
		&models.Content{},
		&models.SocialLink{},
		&models.EmailSetting{},
		&models.ActivityLog{},
	)
	if err != nil {
		return err
	}

	return seedEmailSettings(db)
}

var defaultEmailSettings = []models.EmailSetting{
	{SettingKey: models.SettingAdminNotificationEmail, SettingValue: "", Description: "Address that receives new booking alerts"},
	{SettingKey: models.SettingBookingNotificationsEnabled, SettingValue: "true", Description: "Send admin alerts for new bookings"},
	{SettingKey: models.SettingCustomerConfirmationEnabled, SettingValue: "true", Description: "Send booking confirmations to customers"},
	{SettingKey: models.SettingStatusUpdateEnabled, SettingValue: "true", Description: "Email customers when a booking status changes"},
}

func seedEmailSettings(db *gorm.DB) error {
	for _, setting := range defaultEmailSettings {
		s := setting
		if err := db.Where("setting_key = ?", s.SettingKey).FirstOrCreate(&s).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedSuperAdmin creates the bootstrap super admin when no super admin exists
// and BOOTSTRAP_ADMIN_EMAIL/PASSWORD are set. Only this row is flagged
// IsBootstrap.
func SeedSuperAdmin(db *gorm.DB, cfg *config.Config) error {
	var existing models.User
	err := db.Where("is_bootstrap = ? OR is_super_admin = ?", true, true).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		logger.Warning("No super admin exists and BOOTSTRAP_ADMIN_EMAIL/PASSWORD are not set")
		return nil
	}

	admin := &models.User{
		Name:         cfg.BootstrapAdminName,
		Email:        strings.ToLower(cfg.BootstrapAdminEmail),
		Password:     cfg.BootstrapAdminPassword,
		Role:         models.RoleSuperAdmin,
		IsSuperAdmin: true,
		IsBootstrap:  true,
		IsActive:     true,
	}
	if err := admin.Save(db); err != nil {
		return err
	}
	logger.Success("Bootstrap super admin created: " + admin.Email)
	return nil
}
