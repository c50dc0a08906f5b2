package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxGalleryImages bounds the images list of tours and services.
const MaxGalleryImages = 10

type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
	ItemStatusDraft    ItemStatus = "draft"
)

func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusActive, ItemStatusInactive, ItemStatusDraft:
		return true
	default:
		return false
	}
}

// ItineraryDay is one entry of a tour's day-by-day plan.
type ItineraryDay struct {
	Day           int    `json:"day"`
	Title         string `json:"title"`
	TitleVi       string `json:"titleVi,omitempty"`
	Description   string `json:"description,omitempty"`
	DescriptionVi string `json:"descriptionVi,omitempty"`
}

// Tour is a sellable multi-day or day trip.
type Tour struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Title              string     `gorm:"not null" json:"title"`
	TitleVi            string     `json:"titleVi,omitempty"`
	Slug               string     `gorm:"size:191;not null;uniqueIndex" json:"slug"`
	Description        string     `gorm:"type:text" json:"description,omitempty"`
	DescriptionVi      string     `gorm:"type:text" json:"descriptionVi,omitempty"`
	ShortDescription   string     `json:"shortDescription,omitempty"`
	ShortDescriptionVi string     `json:"shortDescriptionVi,omitempty"`
	Price              float64    `gorm:"not null;default:0" json:"price"`
	OriginalPrice      *float64   `json:"originalPrice,omitempty"`
	Duration           string     `json:"duration,omitempty"`
	Location           string     `json:"location,omitempty"`
	MaxParticipants    int        `gorm:"not null;default:0" json:"maxParticipants"`
	FeaturedImage      string     `json:"featuredImage,omitempty"`
	CategoryID         *uint      `gorm:"index" json:"categoryId,omitempty"`
	Status             ItemStatus `gorm:"size:20;not null;index;default:'draft'" json:"status"`
	Featured           bool       `gorm:"not null;default:false" json:"featured"`

	Images    datatypes.JSONSlice[string]       `json:"images"`
	Itinerary datatypes.JSONSlice[ItineraryDay] `json:"itinerary"`
	Included  datatypes.JSONSlice[string]       `json:"included"`
	Excluded  datatypes.JSONSlice[string]       `json:"excluded"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (Tour) TableName() string {
	return "tours"
}

// BeforeSave stores empty lists as [] rather than null.
func (t *Tour) BeforeSave(tx *gorm.DB) error {
	if t.Images == nil {
		t.Images = datatypes.JSONSlice[string]{}
	}
	if t.Itinerary == nil {
		t.Itinerary = datatypes.JSONSlice[ItineraryDay]{}
	}
	if t.Included == nil {
		t.Included = datatypes.JSONSlice[string]{}
	}
	if t.Excluded == nil {
		t.Excluded = datatypes.JSONSlice[string]{}
	}
	return nil
}

// StoredImages lists every object-store URL referenced by the tour.
func (t *Tour) StoredImages() []string {
	urls := make([]string, 0, len(t.Images)+1)
	if t.FeaturedImage != "" {
		urls = append(urls, t.FeaturedImage)
	}
	return append(urls, t.Images...)
}

func (t *Tour) Save(db *gorm.DB) error {
	if t.ID == 0 {
		return db.Create(t).Error
	}
	return db.Save(t).Error
}

func FindTourByID(db *gorm.DB, id uint) (*Tour, error) {
	var tour Tour
	if err := db.Preload("Category").First(&tour, id).Error; err != nil {
		return nil, err
	}
	return &tour, nil
}

func FindTourBySlug(db *gorm.DB, slug string) (*Tour, error) {
	var tour Tour
	if err := db.Preload("Category").Where("slug = ?", slug).First(&tour).Error; err != nil {
		return nil, err
	}
	return &tour, nil
}

func FindToursByStatus(db *gorm.DB, status ItemStatus) ([]Tour, error) {
	var tours []Tour
	err := db.Where("status = ?", status).Order("created_at DESC").Find(&tours).Error
	return tours, err
}

// Service is a sellable non-tour offering such as an airport transfer or visa support.
type Service struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"not null" json:"title"`
	TitleVi       string     `json:"titleVi,omitempty"`
	Slug          string     `gorm:"size:191;not null;uniqueIndex" json:"slug"`
	Description   string     `gorm:"type:text" json:"description,omitempty"`
	DescriptionVi string     `gorm:"type:text" json:"descriptionVi,omitempty"`
	ServiceType   string     `gorm:"size:50;index" json:"serviceType,omitempty"`
	Price         float64    `gorm:"not null;default:0" json:"price"`
	PriceUnit     string     `json:"priceUnit,omitempty"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	CategoryID    *uint      `gorm:"index" json:"categoryId,omitempty"`
	Status        ItemStatus `gorm:"size:20;not null;index;default:'draft'" json:"status"`
	Featured      bool       `gorm:"not null;default:false" json:"featured"`

	Images   datatypes.JSONSlice[string] `json:"images"`
	Included datatypes.JSONSlice[string] `json:"included"`
	Excluded datatypes.JSONSlice[string] `json:"excluded"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (Service) TableName() string {
	return "services"
}

// BeforeSave stores empty lists as [] rather than null.
func (s *Service) BeforeSave(tx *gorm.DB) error {
	if s.Images == nil {
		s.Images = datatypes.JSONSlice[string]{}
	}
	if s.Included == nil {
		s.Included = datatypes.JSONSlice[string]{}
	}
	if s.Excluded == nil {
		s.Excluded = datatypes.JSONSlice[string]{}
	}
	return nil
}

func (s *Service) StoredImages() []string {
	urls := make([]string, 0, len(s.Images)+1)
	if s.FeaturedImage != "" {
		urls = append(urls, s.FeaturedImage)
	}
	return append(urls, s.Images...)
}

func (s *Service) Save(db *gorm.DB) error {
	if s.ID == 0 {
		return db.Create(s).Error
	}
	return db.Save(s).Error
}

func FindServiceByID(db *gorm.DB, id uint) (*Service, error) {
	var service Service
	if err := db.Preload("Category").First(&service, id).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func FindServiceBySlug(db *gorm.DB, slug string) (*Service, error) {
	var service Service
	if err := db.Preload("Category").Where("slug = ?", slug).First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func FindServicesByStatus(db *gorm.DB, status ItemStatus) ([]Service, error) {
	var services []Service
	err := db.Where("status = ?", status).Order("created_at DESC").Find(&services).Error
	return services, err
}
