package models

import (
	"time"

	"gorm.io/gorm"
)

type CategoryType string

const (
	CategoryTypeTour    CategoryType = "tour"
	CategoryTypeService CategoryType = "service"
	CategoryTypeBoth    CategoryType = "both"
)

func (t CategoryType) IsValid() bool {
	switch t {
	case CategoryTypeTour, CategoryTypeService, CategoryTypeBoth:
		return true
	default:
		return false
	}
}

// Category classifies tours and services.
type Category struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null" json:"name"`
	NameVi      string       `json:"nameVi,omitempty"`
	Slug        string       `gorm:"size:191;not null;uniqueIndex" json:"slug"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	Type        CategoryType `gorm:"size:20;not null;default:'both';index" json:"type"`
	Icon        string       `json:"icon,omitempty"`
	Color       string       `gorm:"size:20" json:"color,omitempty"`
	Status      ItemStatus   `gorm:"size:20;not null;default:'active';index" json:"status"`
	Featured    bool         `gorm:"not null;default:false" json:"featured"`
	SortOrder   int          `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TableName specifies the table name
func (Category) TableName() string {
	return "categories"
}

// CategoryUsage counts the live tours and services pointing at a category.
type CategoryUsage struct {
	Tours    int64 `json:"tours"`
	Services int64 `json:"services"`
	Total    int64 `json:"total"`
}

func (c *Category) Save(db *gorm.DB) error {
	if c.ID == 0 {
		return db.Create(c).Error
	}
	return db.Save(c).Error
}

// Usage ignores soft-deleted tours and services.
func (c *Category) Usage(db *gorm.DB) (CategoryUsage, error) {
	var usage CategoryUsage
	if err := db.Model(&Tour{}).Where("category_id = ?", c.ID).Count(&usage.Tours).Error; err != nil {
		return usage, err
	}
	if err := db.Model(&Service{}).Where("category_id = ?", c.ID).Count(&usage.Services).Error; err != nil {
		return usage, err
	}
	usage.Total = usage.Tours + usage.Services
	return usage, nil
}

func FindCategoryByID(db *gorm.DB, id uint) (*Category, error) {
	var category Category
	if err := db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func FindCategoryBySlug(db *gorm.DB, slug string) (*Category, error) {
	var category Category
	if err := db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func FindCategoriesByStatus(db *gorm.DB, status ItemStatus) ([]Category, error) {
	var categories []Category
	err := db.Where("status = ?", status).Order("sort_order ASC, name ASC").Find(&categories).Error
	return categories, err
}
