package handlers

import (
	"net/http"
	"strings"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/middleware"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func AdminLogin(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := bindBody(c, &input); err != nil {
			respondError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))
		result, err := auth.AdminLogin(c.Request.Context(), email, input.Password, actorFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "Login successful", result)
	}
}

func Me(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := models.FindUserByID(db, c.GetUint(middleware.UserIDKey))
		if err != nil {
			respondError(c, notFoundOr(err, "User not found"))
			return
		}
		user.Role = user.EffectiveRole()
		respond(c, http.StatusOK, "", user)
	}
}

func ChangePassword(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ChangePasswordInput
		if err := bindBody(c, &input); err != nil {
			respondError(c, err)
			return
		}

		err := auth.ChangePassword(c.Request.Context(), c.GetUint(middleware.UserIDKey), input.CurrentPassword, input.NewPassword)
		if err != nil {
			// A wrong current password is a bad request, not a lost session.
			if appErr, ok := apperrors.As(err); ok && appErr.Kind == apperrors.KindAuth {
				failValidation(c, appErr.Message)
				return
			}
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "Password changed successfully", nil)
	}
}

func ForgotPassword(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ForgotPasswordInput
		if err := bindBody(c, &input); err != nil {
			respondError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))
		respond(c, http.StatusOK, auth.ForgotPassword(c.Request.Context(), email), nil)
	}
}

func ResetPassword(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ResetPasswordInput
		if err := bindBody(c, &input); err != nil {
			respondError(c, err)
			return
		}

		if err := auth.ResetPassword(c.Request.Context(), input.Token, input.NewPassword); err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "Password has been reset successfully", nil)
	}
}

func VerifyResetToken(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := auth.VerifyResetToken(c.Request.Context(), c.Param("token"))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "Token is valid", gin.H{"valid": true, "email": email})
	}
}
