package models

import (
	"time"

	"gorm.io/gorm"
)

// PasswordResetToken is a single-use credential mailed to an admin who forgot
// their password.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Token     string    `gorm:"size:128;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// IsValid checks if the token is valid (not expired and not used)
func (t *PasswordResetToken) IsValid() bool {
	return !t.Used && time.Now().Before(t.ExpiresAt)
}

// MarkAsUsed consumes the token. It reports false when the token had
// already been consumed by another request.
func (t *PasswordResetToken) MarkAsUsed(db *gorm.DB) (bool, error) {
	result := db.Model(&PasswordResetToken{}).
		Where("id = ? AND used = ?", t.ID, false).
		Update("used", true)
	if result.Error != nil {
		return false, result.Error
	}
	t.Used = true
	return result.RowsAffected == 1, nil
}

// InvalidateResetTokens marks every outstanding token of a user as used.
func InvalidateResetTokens(db *gorm.DB, userID uint) error {
	return db.Model(&PasswordResetToken{}).
		Where("user_id = ? AND used = ? AND expires_at > ?", userID, false, time.Now()).
		Update("used", true).Error
}

func FindResetToken(db *gorm.DB, token string) (*PasswordResetToken, error) {
	var record PasswordResetToken
	if err := db.Preload("User").Where("token = ?", token).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
