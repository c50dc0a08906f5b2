package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/middleware"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TestEmailSender queues a test email to the given address.
type TestEmailSender interface {
	SendTest(ctx context.Context, to string) error
}

func ListEmailSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := models.FindEmailSettings(db)
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to fetch email settings", err))
			return
		}
		respond(c, http.StatusOK, "", settings)
	}
}

func GetEmailSetting(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		setting, err := models.FindEmailSettingByKey(db, c.Param("key"))
		if err != nil {
			respondError(c, notFoundOr(err, "Email setting not found"))
			return
		}
		respond(c, http.StatusOK, "", setting)
	}
}

// UpsertEmailSetting creates the setting when the key is new.
func UpsertEmailSetting(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.Param("key"))
		var in struct {
			SettingValue *string `json:"settingValue"`
			Description  *string `json:"description"`
		}
		if err := bindBody(c, &in); err != nil {
			respondError(c, err)
			return
		}
		if in.SettingValue == nil {
			failValidation(c, "settingValue is required")
			return
		}
		value := strings.TrimSpace(*in.SettingValue)
		if key == models.SettingAdminNotificationEmail && value != "" && !utils.IsEmail(value) {
			failValidation(c, "Invalid email format")
			return
		}

		setting, err := models.FindEmailSettingByKey(db, key)
		status := http.StatusOK
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			setting = &models.EmailSetting{SettingKey: key}
			status = http.StatusCreated
		case err != nil:
			respondError(c, apperrors.Unexpected("Failed to fetch email setting", err))
			return
		}

		before := setting.SettingValue
		setting.SettingValue = value
		if in.Description != nil {
			setting.Description = *in.Description
		}
		if err := setting.Save(db); err != nil {
			respondError(c, apperrors.Unexpected("Failed to save email setting", err))
			return
		}

		record(activity, c, models.ActionUpdate, "email_setting", setting.ID, "Updated email setting "+key,
			map[string]interface{}{"from": before, "to": value})
		respond(c, status, "Email setting saved", setting)
	}
}

func DeleteEmailSetting(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		setting, err := models.FindEmailSettingByKey(db, c.Param("key"))
		if err != nil {
			respondError(c, notFoundOr(err, "Email setting not found"))
			return
		}
		if err := db.Delete(setting).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to delete email setting", err))
			return
		}

		record(activity, c, models.ActionDelete, "email_setting", setting.ID, "Deleted email setting "+setting.SettingKey, nil)
		respond(c, http.StatusOK, "Email setting deleted", nil)
	}
}

// SendTestEmail queues a test message to the given address, defaulting to
// the signed-in admin.
func SendTestEmail(sender TestEmailSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Email string `json:"email" binding:"omitempty,email"`
		}
		if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, bindingError(err))
			return
		}
		to := strings.TrimSpace(in.Email)
		if to == "" {
			to = c.GetString(middleware.UserEmailKey)
		}
		if to == "" {
			failValidation(c, "Recipient email is required")
			return
		}

		if err := sender.SendTest(c.Request.Context(), to); err != nil {
			respondError(c, apperrors.Unexpected("Failed to queue test email", err))
			return
		}
		respond(c, http.StatusOK, "Test email queued", gin.H{"to": to})
	}
}
