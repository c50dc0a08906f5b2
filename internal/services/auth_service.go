package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// ForgotPasswordMessage is returned whether or not the address is known.
const ForgotPasswordMessage = "If an account with that email exists, a password reset link has been sent"

var (
	ErrInvalidCredentials = apperrors.Auth("Invalid admin credentials")
	ErrIncorrectPassword  = apperrors.Auth("Current password is incorrect")
	ErrInvalidResetToken  = apperrors.Validation("Invalid or expired reset token")
	ErrPasswordTooShort   = apperrors.Validation("Password must be at least 6 characters")
)

type PasswordResetNotifier interface {
	PasswordReset(ctx context.Context, user *models.User, token string, ttl time.Duration)
}

type AuthServiceConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
}

type AuthService struct {
	db       *gorm.DB
	cfg      AuthServiceConfig
	notifier PasswordResetNotifier
	activity ActivityRecorder

	comparePassword func(hash []byte, password string) error
}

// dummyPasswordHash stands in for accounts that cannot sign in so every
// failed login pays for one bcrypt comparison at the default cost.
var dummyPasswordHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("tourbook-no-such-admin"), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to prepare placeholder password hash", err)
	}
	return hash
})

func bcryptCompare(hash []byte, password string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}

func NewAuthService(db *gorm.DB, cfg AuthServiceConfig, notifier PasswordResetNotifier, activity ActivityRecorder) *AuthService {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	return &AuthService{db: db, cfg: cfg, notifier: notifier, activity: activity, comparePassword: bcryptCompare}
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AdminLogin answers every failure with the same error so callers cannot
// tell unknown accounts from wrong passwords.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string, actor *Actor) (*LoginResult, error) {
	user, err := models.FindUserByEmail(s.db, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to look up admin for login", err)
	}
	if err != nil || !user.CanSignInToDashboard() || !user.IsActive {
		_ = s.comparePassword(dummyPasswordHash(), password)
		return nil, ErrInvalidCredentials
	}
	if err := s.comparePassword([]byte(user.PasswordHash), password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, apperrors.Unexpected("Failed to generate token", err)
	}

	loginAt := time.Now()
	if err := s.db.Model(user).UpdateColumn("last_login_at", loginAt).Error; err != nil {
		logger.Error("Failed to record last login", err)
	}
	user.LastLoginAt = &loginAt
	user.Role = user.EffectiveRole()

	if s.activity != nil {
		s.activity.Record(actorEntry(withUser(actor, user), ActivityEntry{
			Action:      models.ActionLogin,
			EntityType:  "user",
			EntityID:    user.ID,
			Description: user.Email + " signed in",
		}))
	}

	return &LoginResult{Token: token, User: user}, nil
}

func withUser(actor *Actor, user *models.User) *Actor {
	a := Actor{ID: user.ID, Name: user.Name}
	if actor != nil {
		a.IPAddress = actor.IPAddress
		a.UserAgent = actor.UserAgent
	}
	return &a
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	return utils.GenerateToken(s.cfg.JWTSecret, s.cfg.TokenTTL, user.ID, string(user.EffectiveRole()), user.Email, user.Name)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if len(next) < minPasswordLength {
		return ErrPasswordTooShort
	}
	user, err := models.FindUserByID(s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("User not found")
		}
		return apperrors.Unexpected("Failed to load user", err)
	}
	if err := user.CheckPassword(current); err != nil {
		return ErrIncorrectPassword
	}

	user.Password = next
	if err := user.Save(s.db); err != nil {
		return apperrors.Unexpected("Failed to update password", err)
	}
	if s.activity != nil {
		s.activity.Record(ActivityEntry{
			UserID:      user.ID,
			UserName:    user.Name,
			Action:      models.ActionUpdate,
			EntityType:  "user",
			EntityID:    user.ID,
			Description: "Changed own password",
		})
	}
	return nil
}

// ForgotPassword never reports whether the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) string {
	user, err := models.FindUserByEmail(s.db, email)
	if err != nil || !user.IsActive || !user.CanSignInToDashboard() {
		return ForgotPasswordMessage
	}

	if err := models.InvalidateResetTokens(s.db, user.ID); err != nil {
		logger.Error("Failed to invalidate previous reset tokens", err)
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     utils.GenerateResetToken(),
		ExpiresAt: time.Now().Add(s.cfg.ResetTokenTTL),
	}
	if err := s.db.Create(token).Error; err != nil {
		logger.Error("Failed to store reset token", err)
		return ForgotPasswordMessage
	}

	if s.notifier != nil {
		s.notifier.PasswordReset(context.WithoutCancel(ctx), user, token.Token, s.cfg.ResetTokenTTL)
	}
	return ForgotPasswordMessage
}

func (s *AuthService) validResetToken(token string) (*models.PasswordResetToken, error) {
	if token == "" {
		return nil, ErrInvalidResetToken
	}
	record, err := models.FindResetToken(s.db, token)
	if err != nil || !record.IsValid() || record.User == nil {
		return nil, ErrInvalidResetToken
	}
	return record, nil
}

// VerifyResetToken has no side effects.
func (s *AuthService) VerifyResetToken(ctx context.Context, token string) (string, error) {
	record, err := s.validResetToken(token)
	if err != nil {
		return "", err
	}
	return record.User.Email, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	record, err := s.validResetToken(token)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		consumed, err := record.MarkAsUsed(tx)
		if err != nil {
			return apperrors.Unexpected("Failed to consume reset token", err)
		}
		if !consumed {
			return ErrInvalidResetToken
		}

		user := record.User
		user.Password = newPassword
		if err := user.Save(tx); err != nil {
			return apperrors.Unexpected("Failed to update password", err)
		}
		return nil
	})
}
