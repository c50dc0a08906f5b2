package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
	RoleCustomer   UserRole = "customer"
)

// User is an authentication principal. Only admin and super_admin roles may
// sign in to the dashboard.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"-:all" json:"-"` // Temporary field for password handling
	PasswordHash string     `gorm:"column:password;not null" json:"-"`
	Role         UserRole   `gorm:"size:20;not null;default:'admin'" json:"role"`
	IsSuperAdmin bool       `gorm:"not null;default:false" json:"isSuperAdmin"`
	IsBootstrap  bool       `gorm:"not null;default:false" json:"isBootstrap"` // the seeded account; cannot be demoted, deactivated or deleted
	IsActive     bool       `gorm:"not null" json:"isActive"`
	CreatedBy    *uint      `json:"createdBy,omitempty"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	u.Password = ""
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// CanSignInToDashboard reports whether the account holds an administrative role.
func (u *User) CanSignInToDashboard() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// EffectiveRole is the role carried in tokens: the super admin flag wins over
// the stored role column.
func (u *User) EffectiveRole() UserRole {
	if u.IsSuperAdmin {
		return RoleSuperAdmin
	}
	return RoleAdmin
}

func (u *User) Save(db *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := u.HashPassword(); err != nil {
		return err
	}
	if u.ID == 0 {
		return db.Create(u).Error
	}
	return db.Save(u).Error
}

func FindUserByID(db *gorm.DB, id uint) (*User, error) {
	var user User
	if err := db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
