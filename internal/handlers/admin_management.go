package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/middleware"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const minAdminPasswordLength = 6

var (
	errEmailTaken        = apperrors.Conflict("Email already exists")
	errProtectedAdmin    = apperrors.Forbidden("The bootstrap super admin account cannot be modified this way")
	errSelfDelete        = apperrors.Validation("You cannot delete your own account")
	errAdminNotFound     = apperrors.NotFound("Admin not found")
	errAdminPasswordSize = apperrors.Validation("Password must be at least 6 characters")
)

var adminSortColumns = map[string]string{
	"name":        "name",
	"email":       "email",
	"createdAt":   "created_at",
	"lastLoginAt": "last_login_at",
}

type CreateAdminInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=admin super_admin"`
}

type UpdateAdminInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin super_admin"`
	IsActive *bool   `json:"isActive"`
}

func adminView(u *models.User) *models.User {
	u.Role = u.EffectiveRole()
	return u
}

func findAdmin(db *gorm.DB, c *gin.Context) (*models.User, error) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, apperrors.Validation("Invalid admin ID")
	}
	user, err := models.FindUserByID(db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errAdminNotFound
		}
		return nil, apperrors.Unexpected("Failed to load admin", err)
	}
	if !user.CanSignInToDashboard() {
		return nil, errAdminNotFound
	}
	return user, nil
}

func emailTaken(db *gorm.DB, email string, excludeID uint) (bool, error) {
	var count int64
	query := db.Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func ListAdmins(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := parsePagination(c)
		query := db.Model(&models.User{}).Where("role IN ?", []models.UserRole{models.RoleAdmin, models.RoleSuperAdmin})

		switch c.Query("role") {
		case string(models.RoleSuperAdmin):
			query = query.Where("is_super_admin = ?", true)
		case string(models.RoleAdmin):
			query = query.Where("is_super_admin = ?", false)
		}
		if active := c.Query("isActive"); active != "" {
			query = query.Where("is_active = ?", active == "true" || active == "1")
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to count admins", err))
			return
		}

		var users []models.User
		err := query.
			Order(sortClause(c, adminSortColumns, "created_at DESC")).
			Offset((page - 1) * limit).Limit(limit).
			Find(&users).Error
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to fetch admins", err))
			return
		}
		for i := range users {
			adminView(&users[i])
		}
		respondList(c, users, page, limit, total)
	}
}

func GetAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := findAdmin(db, c)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", adminView(user))
	}
}

func CreateAdmin(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateAdminInput
		if err := bindBody(c, &input); err != nil {
			respondError(c, err)
			return
		}
		if len(input.Password) < minAdminPasswordLength {
			respondError(c, errAdminPasswordSize)
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))
		taken, err := emailTaken(db, email, 0)
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to check email", err))
			return
		}
		if taken {
			respondError(c, errEmailTaken)
			return
		}

		creator := c.GetUint(middleware.UserIDKey)
		user := &models.User{
			Name:      strings.TrimSpace(input.Name),
			Email:     email,
			Password:  input.Password,
			Role:      models.RoleAdmin,
			IsActive:  true,
			CreatedBy: &creator,
		}
		if input.Role == string(models.RoleSuperAdmin) {
			user.Role = models.RoleSuperAdmin
			user.IsSuperAdmin = true
		}

		if err := user.Save(db); err != nil {
			if services.IsUniqueViolation(err) {
				respondError(c, errEmailTaken)
				return
			}
			respondError(c, apperrors.Unexpected("Failed to create admin", err))
			return
		}

		record(activity, c, models.ActionCreate, "user", user.ID, "Created admin "+user.Email,
			map[string]interface{}{"role": string(user.EffectiveRole())})
		respond(c, http.StatusCreated, "Admin created successfully", adminView(user))
	}
}

// UpdateAdmin refuses to demote or deactivate the bootstrap super admin. Other
// super admins are managed like any admin.
func UpdateAdmin(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := findAdmin(db, c)
		if err != nil {
			respondError(c, err)
			return
		}
		var input UpdateAdminInput
		if err := bindBody(c, &input); err != nil {
			respondError(c, err)
			return
		}

		if user.IsBootstrap {
			if input.Role != nil && *input.Role != string(models.RoleSuperAdmin) {
				respondError(c, errProtectedAdmin)
				return
			}
			if input.IsActive != nil && !*input.IsActive {
				respondError(c, errProtectedAdmin)
				return
			}
		}

		changes := map[string]interface{}{}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				failValidation(c, "Name cannot be empty")
				return
			}
			user.Name = name
			changes["name"] = name
		}
		if input.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*input.Email))
			taken, err := emailTaken(db, email, user.ID)
			if err != nil {
				respondError(c, apperrors.Unexpected("Failed to check email", err))
				return
			}
			if taken {
				respondError(c, errEmailTaken)
				return
			}
			user.Email = email
			changes["email"] = email
		}
		if input.Password != nil && *input.Password != "" {
			if len(*input.Password) < minAdminPasswordLength {
				respondError(c, errAdminPasswordSize)
				return
			}
			user.Password = *input.Password
			changes["password"] = "changed"
		}
		if input.Role != nil && models.UserRole(*input.Role) != user.EffectiveRole() {
			user.Role = models.UserRole(*input.Role)
			user.IsSuperAdmin = user.Role == models.RoleSuperAdmin
			changes["role"] = *input.Role
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
			changes["isActive"] = *input.IsActive
		}

		if err := user.Save(db); err != nil {
			if services.IsUniqueViolation(err) {
				respondError(c, errEmailTaken)
				return
			}
			respondError(c, apperrors.Unexpected("Failed to update admin", err))
			return
		}

		record(activity, c, models.ActionUpdate, "user", user.ID, "Updated admin "+user.Email, changes)
		respond(c, http.StatusOK, "Admin updated successfully", adminView(user))
	}
}

func DeleteAdmin(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := findAdmin(db, c)
		if err != nil {
			respondError(c, err)
			return
		}
		if user.ID == c.GetUint(middleware.UserIDKey) {
			respondError(c, errSelfDelete)
			return
		}
		if user.IsBootstrap {
			respondError(c, errProtectedAdmin)
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.PasswordResetToken{}).Error; err != nil {
				return err
			}
			return tx.Delete(user).Error
		})
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to delete admin", err))
			return
		}

		record(activity, c, models.ActionDelete, "user", user.ID, "Deleted admin "+user.Email, nil)
		respond(c, http.StatusOK, "Admin deleted successfully", nil)
	}
}
