package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"gorm.io/gorm"
)

type NotificationSettings struct {
	CompanyName string
	AdminEmail  string
	FrontendURL string
	SMSEnabled  bool
}

// Notifications renders messages and hands them to the queue. Email setting
// toggles are read when a message is composed, never by the workers.
type Notifications struct {
	db       *gorm.DB
	queue    NotificationQueue
	settings NotificationSettings
}

func NewNotifications(db *gorm.DB, queue NotificationQueue, settings NotificationSettings) *Notifications {
	return &Notifications{db: db, queue: queue, settings: settings}
}

func (n *Notifications) enqueue(ctx context.Context, job Job) error {
	if n.queue == nil {
		return ErrQueueClosed
	}
	if err := n.queue.Enqueue(ctx, job); err != nil {
		logger.Error(fmt.Sprintf("Failed to enqueue %s notification", job.Kind), err)
		return err
	}
	return nil
}

func (n *Notifications) adminRecipient() string {
	setting, err := models.FindEmailSettingByKey(n.db, models.SettingAdminNotificationEmail)
	if err == nil && strings.TrimSpace(setting.SettingValue) != "" {
		return strings.TrimSpace(setting.SettingValue)
	}
	return n.settings.AdminEmail
}

func (n *Notifications) bookingData(b *models.Booking, itemTitle string) utils.BookingEmailData {
	return utils.BookingEmailData{
		Company:         n.settings.CompanyName,
		Year:            time.Now().Year(),
		DashboardURL:    strings.TrimRight(n.settings.FrontendURL, "/") + "/admin/bookings",
		BookingNumber:   b.BookingNumber,
		Type:            string(b.Type),
		ItemTitle:       itemTitle,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		StartDate:       b.StartDate.Format("2006-01-02"),
		TotalTravelers:  b.TotalTravelers,
		TotalAmount:     fmt.Sprintf("%.2f", b.TotalAmount),
		Currency:        b.Currency,
		SpecialRequests: b.SpecialRequests,
		Status:          string(b.Status),
	}
}

// BookingCreated queues the admin alert, the customer confirmation and the
// customer SMS. Every failure is logged only.
func (n *Notifications) BookingCreated(ctx context.Context, b *models.Booking, itemTitle string) {
	data := n.bookingData(b, itemTitle)

	if models.EmailSettingEnabled(n.db, models.SettingBookingNotificationsEnabled) {
		if admin := n.adminRecipient(); admin != "" {
			if body, err := utils.RenderEmail("admin_booking_alert", data); err != nil {
				logger.Error("Failed to render admin booking alert", err)
			} else {
				_ = n.enqueue(ctx, Job{
					Kind:    JobAdminBookingAlert,
					To:      []string{admin},
					Subject: fmt.Sprintf("New Booking %s - %s", b.BookingNumber, itemTitle),
					Body:    body,
				})
			}
		} else {
			logger.Warning("No admin notification email configured, skipping booking alert")
		}
	}

	if models.EmailSettingEnabled(n.db, models.SettingCustomerConfirmationEnabled) {
		if body, err := utils.RenderEmail("customer_booking_confirmation", data); err != nil {
			logger.Error("Failed to render booking confirmation", err)
		} else {
			_ = n.enqueue(ctx, Job{
				Kind:    JobBookingConfirmation,
				To:      []string{b.CustomerEmail},
				Subject: fmt.Sprintf("Booking Confirmation %s - %s", b.BookingNumber, n.settings.CompanyName),
				Body:    body,
			})
		}

		if n.settings.SMSEnabled && b.CustomerPhone != "" {
			_ = n.enqueue(ctx, Job{
				Kind: JobBookingSMS,
				To:   []string{b.CustomerPhone},
				Body: utils.BookingConfirmationSMS(n.settings.CompanyName, b.CustomerName, b.BookingNumber, itemTitle),
			})
		}
	}
}

// StatusChanged queues the customer status update email.
func (n *Notifications) StatusChanged(ctx context.Context, b *models.Booking, itemTitle string, from models.BookingStatus) {
	if !models.EmailSettingEnabled(n.db, models.SettingStatusUpdateEnabled) {
		return
	}
	data := n.bookingData(b, itemTitle)
	data.PreviousStatus = string(from)

	body, err := utils.RenderEmail("booking_status_update", data)
	if err != nil {
		logger.Error("Failed to render status update email", err)
		return
	}
	_ = n.enqueue(ctx, Job{
		Kind:    JobStatusUpdate,
		To:      []string{b.CustomerEmail},
		Subject: fmt.Sprintf("Booking %s is now %s", b.BookingNumber, b.Status),
		Body:    body,
	})
}

func (n *Notifications) PasswordReset(ctx context.Context, user *models.User, token string, ttl time.Duration) {
	body, err := utils.RenderEmail("password_reset", utils.PasswordResetEmailData{
		Company:   n.settings.CompanyName,
		Year:      time.Now().Year(),
		Name:      user.Name,
		ResetURL:  fmt.Sprintf("%s/admin/reset-password?token=%s", strings.TrimRight(n.settings.FrontendURL, "/"), token),
		ExpiresIn: ttl.String(),
	})
	if err != nil {
		logger.Error("Failed to render password reset email", err)
		return
	}
	_ = n.enqueue(ctx, Job{
		Kind:    JobPasswordReset,
		To:      []string{user.Email},
		Subject: "Password Reset Request - " + n.settings.CompanyName,
		Body:    body,
	})
}

// SendTest queues a test email and reports whether it was accepted.
func (n *Notifications) SendTest(ctx context.Context, to string) error {
	body, err := utils.RenderEmail("test_email", utils.TestEmailData{
		Company: n.settings.CompanyName,
		Year:    time.Now().Year(),
		SentAt:  time.Now().Format(time.RFC1123),
	})
	if err != nil {
		return err
	}
	return n.enqueue(ctx, Job{
		Kind:    JobTestEmail,
		To:      []string{to},
		Subject: "Test Email - " + n.settings.CompanyName,
		Body:    body,
	})
}
