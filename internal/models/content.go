package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Content is an editable block of site copy addressed by a unique key.
type Content struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Key       string            `gorm:"column:content_key;size:191;not null;uniqueIndex" json:"key"`
	Page      string            `gorm:"size:100;index" json:"page,omitempty"`
	Section   string            `gorm:"size:100" json:"section,omitempty"`
	Title     string            `json:"title,omitempty"`
	TitleVi   string            `json:"titleVi,omitempty"`
	Body      string            `gorm:"type:text" json:"body,omitempty"`
	BodyVi    string            `gorm:"type:text" json:"bodyVi,omitempty"`
	Image     string            `json:"image,omitempty"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	Status    ItemStatus        `gorm:"size:20;not null;default:'active';index" json:"status"`
	SortOrder int               `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// TableName specifies the table name
func (Content) TableName() string {
	return "content"
}

func (c *Content) BeforeSave(tx *gorm.DB) error {
	if c.Metadata == nil {
		c.Metadata = datatypes.JSONMap{}
	}
	return nil
}

func (c *Content) Save(db *gorm.DB) error {
	if c.ID == 0 {
		return db.Create(c).Error
	}
	return db.Save(c).Error
}

func FindContentByID(db *gorm.DB, id uint) (*Content, error) {
	var content Content
	if err := db.First(&content, id).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

func FindContentByKey(db *gorm.DB, key string) (*Content, error) {
	var content Content
	if err := db.Where("content_key = ?", key).First(&content).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

func FindContentByStatus(db *gorm.DB, status ItemStatus) ([]Content, error) {
	var items []Content
	err := db.Where("status = ?", status).Order("page ASC, sort_order ASC").Find(&items).Error
	return items, err
}
