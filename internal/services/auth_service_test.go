package services

import (
	"context"
	"testing"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) (*AuthService, *gorm.DB, *memoryQueue, *recordingActivity) {
	t.Helper()
	db := setupTestDB(t)
	queue := &memoryQueue{}
	activity := &recordingActivity{}
	notifications := NewNotifications(db, queue, NotificationSettings{
		CompanyName: "Tourbook",
		FrontendURL: "https://tourbook.example.com/",
	})
	svc := NewAuthService(db, AuthServiceConfig{
		JWTSecret:     testSecret,
		TokenTTL:      time.Hour,
		ResetTokenTTL: 30 * time.Minute,
	}, notifications, activity)
	return svc, db, queue, activity
}

func latestResetToken(t *testing.T, db *gorm.DB, userID uint) models.PasswordResetToken {
	t.Helper()
	var token models.PasswordResetToken
	require.NoError(t, db.Where("user_id = ?", userID).Order("id DESC").First(&token).Error)
	return token
}

func TestAdminLogin(t *testing.T) {
	svc, db, _, activity := newAuthService(t)
	admin := createAdmin(t, db, "admin@example.com", false)

	result, err := svc.AdminLogin(context.Background(), " Admin@Example.com ", "secret123", &Actor{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, result.User.ID)
	assert.NotNil(t, result.User.LastLoginAt)

	claims, err := utils.ValidateToken(testSecret, result.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	assert.Equal(t, []string{models.ActionLogin}, activity.actions())
	assert.Equal(t, "10.0.0.1", activity.entries[0].IPAddress)
	assert.Equal(t, admin.ID, activity.entries[0].UserID)
}

func TestAdminLoginSuperAdminRole(t *testing.T) {
	svc, db, _, _ := newAuthService(t)
	createAdmin(t, db, "root@example.com", true)

	result, err := svc.AdminLogin(context.Background(), "root@example.com", "secret123", nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, result.User.Role)

	claims, err := utils.ValidateToken(testSecret, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "super_admin", claims.Role)
}

func TestAdminLoginFailuresLookTheSame(t *testing.T) {
	svc, db, _, activity := newAuthService(t)
	createAdmin(t, db, "admin@example.com", false)

	inactive := createAdmin(t, db, "inactive@example.com", false)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	customer := createAdmin(t, db, "customer@example.com", false)
	require.NoError(t, db.Model(customer).Update("role", models.RoleCustomer).Error)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "secret123"},
		{"wrong password", "admin@example.com", "wrong-password"},
		{"inactive account", "inactive@example.com", "secret123"},
		{"customer role", "customer@example.com", "secret123"},
	}
	compares := 0
	svc.comparePassword = func(hash []byte, password string) error {
		compares++
		return bcryptCompare(hash, password)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compares = 0
			_, err := svc.AdminLogin(context.Background(), tt.email, tt.password, nil)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
			// Unknown and unusable accounts still pay for a password comparison.
			assert.Equal(t, 1, compares)
		})
	}
	assert.Empty(t, activity.actions())
}

func TestDummyPasswordHashMatchesRealCost(t *testing.T) {
	cost, err := bcrypt.Cost(dummyPasswordHash())
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.Error(t, bcryptCompare(dummyPasswordHash(), "secret123"))
}

func TestChangePassword(t *testing.T) {
	svc, db, _, _ := newAuthService(t)
	admin := createAdmin(t, db, "admin@example.com", false)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, admin.ID, "secret123", "short"), ErrPasswordTooShort)
	assert.ErrorIs(t, svc.ChangePassword(ctx, admin.ID, "not-it", "new-secret"), ErrIncorrectPassword)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(svc.ChangePassword(ctx, 999, "secret123", "new-secret")))

	require.NoError(t, svc.ChangePassword(ctx, admin.ID, "secret123", "new-secret"))

	_, err := svc.AdminLogin(ctx, "admin@example.com", "secret123", nil)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.AdminLogin(ctx, "admin@example.com", "new-secret", nil)
	assert.NoError(t, err)
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	svc, db, queue, _ := newAuthService(t)
	admin := createAdmin(t, db, "admin@example.com", false)
	ctx := context.Background()

	assert.Equal(t, ForgotPasswordMessage, svc.ForgotPassword(ctx, "nobody@example.com"))
	assert.Empty(t, queue.kinds())

	assert.Equal(t, ForgotPasswordMessage, svc.ForgotPassword(ctx, "admin@example.com"))
	assert.Equal(t, []JobKind{JobPasswordReset}, queue.kinds())

	token := latestResetToken(t, db, admin.ID)
	assert.Equal(t, []string{"admin@example.com"}, queue.jobs[0].To)
	assert.Contains(t, queue.jobs[0].Body, "https://tourbook.example.com/admin/reset-password?token="+token.Token)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), token.ExpiresAt, time.Minute)
}

func TestForgotPasswordInvalidatesEarlierTokens(t *testing.T) {
	svc, db, _, _ := newAuthService(t)
	admin := createAdmin(t, db, "admin@example.com", false)
	ctx := context.Background()

	svc.ForgotPassword(ctx, "admin@example.com")
	first := latestResetToken(t, db, admin.ID)
	svc.ForgotPassword(ctx, "admin@example.com")

	_, err := svc.VerifyResetToken(ctx, first.Token)
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	second := latestResetToken(t, db, admin.ID)
	email, err := svc.VerifyResetToken(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", email)
}

func TestResetPasswordIsSingleUse(t *testing.T) {
	svc, db, _, _ := newAuthService(t)
	admin := createAdmin(t, db, "admin@example.com", false)
	ctx := context.Background()

	svc.ForgotPassword(ctx, "admin@example.com")
	token := latestResetToken(t, db, admin.ID)

	// Verifying twice leaves the token usable.
	_, err := svc.VerifyResetToken(ctx, token.Token)
	require.NoError(t, err)
	_, err = svc.VerifyResetToken(ctx, token.Token)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, token.Token, "abc"), ErrPasswordTooShort)
	require.NoError(t, svc.ResetPassword(ctx, token.Token, "brand-new-pass"))
	assert.ErrorIs(t, svc.ResetPassword(ctx, token.Token, "another-pass"), ErrInvalidResetToken)

	_, err = svc.AdminLogin(ctx, "admin@example.com", "brand-new-pass", nil)
	assert.NoError(t, err)
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	svc, db, _, _ := newAuthService(t)
	admin := createAdmin(t, db, "admin@example.com", false)
	expired := &models.PasswordResetToken{
		UserID:    admin.ID,
		Token:     utils.GenerateResetToken(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(expired).Error)

	assert.ErrorIs(t, svc.ResetPassword(context.Background(), expired.Token, "brand-new-pass"), ErrInvalidResetToken)
	_, err := svc.VerifyResetToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}
