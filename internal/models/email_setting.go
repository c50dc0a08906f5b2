package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Known email setting keys
const (
	SettingAdminNotificationEmail      = "admin_notification_email"
	SettingBookingNotificationsEnabled = "booking_notifications_enabled"
	SettingCustomerConfirmationEnabled = "customer_confirmation_enabled"
	SettingStatusUpdateEnabled         = "status_update_enabled"
)

type EmailSetting struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SettingKey   string    `gorm:"size:100;not null;uniqueIndex" json:"settingKey"`
	SettingValue string    `gorm:"type:text" json:"settingValue"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name
func (EmailSetting) TableName() string {
	return "email_settings"
}

func (s *EmailSetting) Save(db *gorm.DB) error {
	if s.ID == 0 {
		return db.Create(s).Error
	}
	return db.Save(s).Error
}

// Enabled reads the value as a flag. Anything but an explicit off value is on.
func (s *EmailSetting) Enabled() bool {
	switch strings.ToLower(strings.TrimSpace(s.SettingValue)) {
	case "false", "0", "off", "no", "disabled":
		return false
	default:
		return true
	}
}

func FindEmailSettingByKey(db *gorm.DB, key string) (*EmailSetting, error) {
	var setting EmailSetting
	if err := db.Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func FindEmailSettings(db *gorm.DB) ([]EmailSetting, error) {
	var settings []EmailSetting
	err := db.Order("setting_key ASC").Find(&settings).Error
	return settings, err
}

// EmailSettingEnabled treats a missing row as enabled.
func EmailSettingEnabled(db *gorm.DB, key string) bool {
	setting, err := FindEmailSettingByKey(db, key)
	if err != nil {
		return true
	}
	return setting.Enabled()
}
