package models

import (
	"time"

	"gorm.io/gorm"
)

type SocialLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Platform  string    `gorm:"size:50;not null" json:"platform"`
	URL       string    `gorm:"not null" json:"url"`
	Icon      string    `json:"icon,omitempty"`
	SortOrder int       `gorm:"not null;default:0" json:"sortOrder"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name
func (SocialLink) TableName() string {
	return "social_links"
}

func (s *SocialLink) Save(db *gorm.DB) error {
	if s.ID == 0 {
		return db.Create(s).Error
	}
	return db.Save(s).Error
}

func FindSocialLinkByID(db *gorm.DB, id uint) (*SocialLink, error) {
	var link SocialLink
	if err := db.First(&link, id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// FindSocialLinks returns links in display order, optionally only active ones.
func FindSocialLinks(db *gorm.DB, activeOnly bool) ([]SocialLink, error) {
	var links []SocialLink
	query := db.Order("sort_order ASC, id ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&links).Error
	return links, err
}
