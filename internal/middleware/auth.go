package middleware

import (
	"net/http"
	"strings"

	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Context keys set by the auth middleware
const (
	UserIDKey    = "userId"
	UserRoleKey  = "userRole"
	UserEmailKey = "userEmail"
	UserNameKey  = "userName"
)

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

func tokenFrom(c *gin.Context) string {
	// First try to get token from Authorization header
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	// If not found in header, try query parameter (for WebSocket)
	return c.Query("token")
}

// authenticate validates the token and, when db is set, reloads the account
// so deactivated or demoted admins lose access before their token expires.
func authenticate(c *gin.Context, secret string, db *gorm.DB) (int, string) {
	tokenString := tokenFrom(c)
	if tokenString == "" {
		return http.StatusUnauthorized, "Authorization header or token query parameter required"
	}

	claims, err := utils.ValidateToken(secret, tokenString)
	if err != nil {
		return http.StatusUnauthorized, "Invalid token"
	}

	role, email, name := claims.Role, claims.Email, claims.Name
	if db != nil {
		user, err := models.FindUserByID(db, claims.UserID)
		if err != nil || !user.IsActive || !user.CanSignInToDashboard() {
			return http.StatusUnauthorized, "Invalid token"
		}
		role, email, name = string(user.EffectiveRole()), user.Email, user.Name
	}

	c.Set(UserIDKey, claims.UserID)
	c.Set(UserRoleKey, role)
	c.Set(UserEmailKey, email)
	c.Set(UserNameKey, name)
	return 0, ""
}

func AuthMiddleware(secret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if status, message := authenticate(c, secret, db); status != 0 {
			abort(c, status, message)
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the admin identity when a valid token is present and
// lets anonymous requests through otherwise.
func OptionalAuth(secret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenFrom(c) != "" {
			_, _ = authenticate(c, secret, db)
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(UserRoleKey)
		if role != string(models.RoleAdmin) && role != string(models.RoleSuperAdmin) {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(UserRoleKey) != string(models.RoleSuperAdmin) {
			abort(c, http.StatusForbidden, "Super admin access required")
			return
		}
		c.Next()
	}
}

// IsAdmin reports whether the request carries an authenticated admin.
func IsAdmin(c *gin.Context) bool {
	role := c.GetString(UserRoleKey)
	return role == string(models.RoleAdmin) || role == string(models.RoleSuperAdmin)
}
