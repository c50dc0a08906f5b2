package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingType string

const (
	BookingTypeTour    BookingType = "tour"
	BookingTypeService BookingType = "service"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusContacted BookingStatus = "contacted"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// bookingTransitions lists the statuses an admin may move a booking to.
// Re-applying the current status is always allowed and is a no-op.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusContacted, BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusContacted: {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusContacted, BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCancelled: {BookingStatusPending},
	BookingStatusCompleted: {},
}

func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusContacted,
		BookingStatusCompleted,
		BookingStatusCancelled,
	}
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo reports whether the workflow allows moving from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a customer's request to reserve a tour or a service.
type Booking struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Type          BookingType   `gorm:"size:20;not null;index" json:"type"`
	ItemID        uint          `gorm:"not null;index" json:"itemId"`
	BookingNumber string        `gorm:"<-:create;size:32;not null;uniqueIndex" json:"bookingNumber"`
	Status        BookingStatus `gorm:"size:20;not null;index;default:'pending'" json:"status"`

	CustomerName  string `gorm:"not null" json:"customerName"`
	CustomerEmail string `gorm:"not null;index" json:"customerEmail"`
	CustomerPhone string `gorm:"not null" json:"customerPhone"`

	StartDate      time.Time `gorm:"not null;index" json:"startDate"`
	Adults         int       `gorm:"not null;default:0" json:"adults"`
	Children       int       `gorm:"not null;default:0" json:"children"`
	Infants        int       `gorm:"not null;default:0" json:"infants"`
	TotalTravelers int       `gorm:"not null" json:"totalTravelers"`
	TotalAmount    float64   `gorm:"not null" json:"totalAmount"`
	Currency       string    `gorm:"size:8;not null;default:'USD'" json:"currency"`

	SpecialRequests              string `json:"specialRequests,omitempty"`
	EmergencyContactName         string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone        string `json:"emergencyContactPhone,omitempty"`
	EmergencyContactRelationship string `json:"emergencyContactRelationship,omitempty"`

	Gender      string     `json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Address     string     `json:"address,omitempty"`
	Nationality string     `json:"nationality,omitempty"`

	// Service bookings only
	DepartureLocation   string     `json:"departureLocation,omitempty"`
	DestinationLocation string     `json:"destinationLocation,omitempty"`
	ReturnTrip          bool       `gorm:"not null;default:false" json:"returnTrip"`
	ReturnDate          *time.Time `json:"returnDate,omitempty"`

	IdempotencyKey *string `gorm:"size:128;uniqueIndex" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Notes []BookingNote `gorm:"foreignKey:BookingID" json:"notes,omitempty"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}

// Save inserts the booking when it has no id yet and updates it otherwise.
func (b *Booking) Save(db *gorm.DB) error {
	if b.ID == 0 {
		return db.Create(b).Error
	}
	return db.Save(b).Error
}

func FindBookingByID(db *gorm.DB, id uint) (*Booking, error) {
	var booking Booking
	if err := db.First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func FindBookingByNumber(db *gorm.DB, number string) (*Booking, error) {
	var booking Booking
	if err := db.Where("booking_number = ?", number).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func FindBookingByIdempotencyKey(db *gorm.DB, key string) (*Booking, error) {
	var booking Booking
	if err := db.Where("idempotency_key = ?", key).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func FindBookingsByStatus(db *gorm.DB, status BookingStatus) ([]Booking, error) {
	var bookings []Booking
	err := db.Where("status = ?", status).Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

// BookingNote is an append-only admin annotation on a booking.
type BookingNote struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BookingID     uint      `gorm:"not null;index" json:"bookingId"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CreatedBy     uint      `gorm:"not null" json:"createdBy"`
	CreatedByName string    `gorm:"-:migration;->" json:"createdByName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (BookingNote) TableName() string {
	return "booking_notes"
}

// FindBookingNotes returns the notes of a booking, newest first, with the author's name.
func FindBookingNotes(db *gorm.DB, bookingID uint) ([]BookingNote, error) {
	var notes []BookingNote
	err := db.Table("booking_notes").
		Select("booking_notes.*, users.name AS created_by_name").
		Joins("LEFT JOIN users ON users.id = booking_notes.created_by").
		Where("booking_notes.booking_id = ?", bookingID).
		Order("booking_notes.created_at DESC, booking_notes.id DESC").
		Scan(&notes).Error
	return notes, err
}

func FindBookingNoteByID(db *gorm.DB, id uint) (*BookingNote, error) {
	var note BookingNote
	err := db.Table("booking_notes").
		Select("booking_notes.*, users.name AS created_by_name").
		Joins("LEFT JOIN users ON users.id = booking_notes.created_by").
		Where("booking_notes.id = ?", id).
		Take(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}
