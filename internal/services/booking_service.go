package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

const bookingNumberAttempts = 3

var (
	ErrMissingBookingInfo = apperrors.Validation("Missing required booking information")
	ErrInvalidEmail       = apperrors.Validation("Invalid email format")
	ErrInvalidStartDate   = apperrors.Validation("Invalid start date")
	ErrStartDateInPast    = apperrors.Validation("Start date cannot be in the past")
	ErrInvalidStatus      = apperrors.Validation("Invalid status value")
	ErrNoteRequired       = apperrors.Validation("Note content is required")
	ErrBookingNotFound    = apperrors.NotFound("Booking not found")
	ErrTourNotFound       = apperrors.NotFound("Tour not found")
	ErrServiceNotFound    = apperrors.NotFound("Service not found")
	ErrBookingInFlight    = apperrors.Conflict("An identical booking is already being processed")
)

// BookingNotifier is the notification side of the booking workflow.
type BookingNotifier interface {
	BookingCreated(ctx context.Context, b *models.Booking, itemTitle string)
	StatusChanged(ctx context.Context, b *models.Booking, itemTitle string, from models.BookingStatus)
}

// BookingInput is a direct booking submission. Pointer fields distinguish
// "absent" from zero.
type BookingInput struct {
	TourID    *uint `json:"tourId"`
	ServiceID *uint `json:"serviceId"`

	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`

	StartDate      string   `json:"startDate"`
	Adults         int      `json:"adults"`
	Children       int      `json:"children"`
	Infants        int      `json:"infants"`
	TotalTravelers *int     `json:"totalTravelers"`
	TotalAmount    *float64 `json:"totalAmount"`
	Currency       string   `json:"currency"`

	SpecialRequests              string `json:"specialRequests"`
	EmergencyContactName         string `json:"emergencyContactName"`
	EmergencyContactPhone        string `json:"emergencyContactPhone"`
	EmergencyContactRelationship string `json:"emergencyContactRelationship"`

	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`
	Nationality string `json:"nationality"`

	DepartureLocation   string `json:"departureLocation"`
	DestinationLocation string `json:"destinationLocation"`
	ReturnTrip          bool   `json:"returnTrip"`
	ReturnDate          string `json:"returnDate"`

	IdempotencyKey string `json:"-"`
}

type CreateBookingResult struct {
	BookingNumber string               `json:"bookingNumber"`
	BookingID     uint                 `json:"bookingId"`
	Status        models.BookingStatus `json:"status"`
	ItemTitle     string               `json:"itemTitle"`
	Type          models.BookingType   `json:"type"`
	Duplicate     bool                 `json:"duplicate,omitempty"`
}

// Actor is the authenticated admin behind a mutation plus request metadata
// for the audit trail.
type Actor struct {
	ID        uint
	Name      string
	IPAddress string
	UserAgent string
}

// BookingDetail is a booking with the title of the tour or service it reserves.
type BookingDetail struct {
	models.Booking
	ItemTitle string `json:"itemTitle"`
}

type BookingStats struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"byStatus"`
	ByType       map[string]int64 `json:"byType"`
	TotalRevenue float64          `json:"totalRevenue"`
	Today        int64            `json:"today"`
	Last7Days    int64            `json:"last7Days"`
}

type BookingFilter struct {
	Status   string
	Type     string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
	OrderBy  string
}

// BookingSortColumns whitelists sortable booking columns.
var BookingSortColumns = map[string]string{
	"created_at":     "created_at",
	"createdAt":      "created_at",
	"start_date":     "start_date",
	"startDate":      "start_date",
	"total_amount":   "total_amount",
	"totalAmount":    "total_amount",
	"status":         "status",
	"booking_number": "booking_number",
	"bookingNumber":  "booking_number",
}

type BookingServiceDeps struct {
	Notifier     BookingNotifier
	Events       EventPublisher
	Activity     ActivityRecorder
	Dedupe       DedupeStore
	DedupeWindow time.Duration
	Clock        func() time.Time
}

// BookingService owns the booking lifecycle: submission, status workflow,
// notes and reporting.
type BookingService struct {
	db           *gorm.DB
	notifier     BookingNotifier
	events       EventPublisher
	activity     ActivityRecorder
	dedupe       DedupeStore
	dedupeWindow time.Duration
	clock        func() time.Time
}

func NewBookingService(db *gorm.DB, deps BookingServiceDeps) *BookingService {
	s := &BookingService{
		db:           db,
		notifier:     deps.Notifier,
		events:       deps.Events,
		activity:     deps.Activity,
		dedupe:       deps.Dedupe,
		dedupeWindow: deps.DedupeWindow,
		clock:        deps.Clock,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.dedupeWindow <= 0 {
		s.dedupeWindow = 10 * time.Minute
	}
	return s
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns local midnight of that day.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return now.With(t.In(time.Local)).BeginningOfDay(), nil
}

func parseOptionalDate(value, field string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return nil, apperrors.Validation("Invalid " + field)
	}
	return &t, nil
}

func (s *BookingService) CreateDirectBooking(ctx context.Context, in BookingInput) (*CreateBookingResult, error) {
	bookingType := models.BookingTypeTour
	var itemID uint
	switch {
	case in.ServiceID != nil && *in.ServiceID > 0:
		bookingType = models.BookingTypeService
		itemID = *in.ServiceID
		if in.TourID != nil && *in.TourID > 0 {
			logger.Warning(fmt.Sprintf("Booking submitted with both tourId %d and serviceId %d, using the service", *in.TourID, *in.ServiceID))
		}
	case in.TourID != nil && *in.TourID > 0:
		itemID = *in.TourID
	}

	name := strings.TrimSpace(in.CustomerName)
	email := strings.TrimSpace(in.CustomerEmail)
	phone := strings.TrimSpace(in.CustomerPhone)
	if itemID == 0 || name == "" || email == "" || phone == "" || strings.TrimSpace(in.StartDate) == "" ||
		in.TotalTravelers == nil || *in.TotalTravelers <= 0 || in.TotalAmount == nil {
		return nil, ErrMissingBookingInfo
	}

	if !utils.IsEmail(email) {
		return nil, ErrInvalidEmail
	}

	startDate, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, ErrInvalidStartDate
	}
	if startDate.Before(now.With(s.clock()).BeginningOfDay()) {
		return nil, ErrStartDateInPast
	}

	if in.Adults < 0 || in.Children < 0 || in.Infants < 0 {
		return nil, apperrors.Validation("Traveler counts cannot be negative")
	}
	if *in.TotalAmount < 0 {
		return nil, apperrors.Validation("Total amount cannot be negative")
	}
	dateOfBirth, err := parseOptionalDate(in.DateOfBirth, "date of birth")
	if err != nil {
		return nil, err
	}
	returnDate, err := parseOptionalDate(in.ReturnDate, "return date")
	if err != nil {
		return nil, err
	}
	if returnDate != nil && returnDate.Before(startDate) {
		return nil, apperrors.Validation("Return date cannot be before the start date")
	}

	itemTitle, err := s.checkItem(bookingType, itemID, *in.TotalTravelers)
	if err != nil {
		return nil, err
	}

	idemKey := strings.TrimSpace(in.IdempotencyKey)
	if idemKey != "" {
		if existing, err := models.FindBookingByIdempotencyKey(s.db, idemKey); err == nil {
			return duplicateResult(existing, itemTitle), nil
		}
	}

	dedupeKey := SubmissionKey(idemKey, email, string(bookingType), itemID, startDate)
	claimed := false
	if s.dedupe != nil {
		existingNumber, ok, err := s.dedupe.Claim(ctx, dedupeKey, s.dedupeWindow)
		switch {
		case err != nil:
			logger.Error("Booking dedupe unavailable, continuing without it", err)
		case !ok && existingNumber == "":
			return nil, ErrBookingInFlight
		case !ok:
			if existing, err := models.FindBookingByNumber(s.db, existingNumber); err == nil {
				return duplicateResult(existing, itemTitle), nil
			}
			// Stale claim pointing at nothing; take it over.
			claimed = true
		default:
			claimed = true
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	booking := &models.Booking{
		Type:                         bookingType,
		ItemID:                       itemID,
		Status:                       models.BookingStatusPending,
		CustomerName:                 name,
		CustomerEmail:                email,
		CustomerPhone:                phone,
		StartDate:                    startDate,
		Adults:                       in.Adults,
		Children:                     in.Children,
		Infants:                      in.Infants,
		TotalTravelers:               *in.TotalTravelers,
		TotalAmount:                  *in.TotalAmount,
		Currency:                     currency,
		SpecialRequests:              strings.TrimSpace(in.SpecialRequests),
		EmergencyContactName:         strings.TrimSpace(in.EmergencyContactName),
		EmergencyContactPhone:        strings.TrimSpace(in.EmergencyContactPhone),
		EmergencyContactRelationship: strings.TrimSpace(in.EmergencyContactRelationship),
		Gender:                       strings.TrimSpace(in.Gender),
		DateOfBirth:                  dateOfBirth,
		Address:                      strings.TrimSpace(in.Address),
		Nationality:                  strings.TrimSpace(in.Nationality),
		DepartureLocation:            strings.TrimSpace(in.DepartureLocation),
		DestinationLocation:          strings.TrimSpace(in.DestinationLocation),
		ReturnTrip:                   in.ReturnTrip,
		ReturnDate:                   returnDate,
	}
	if idemKey != "" {
		booking.IdempotencyKey = &idemKey
	}

	existing, err := s.insertWithFreshNumber(booking)
	if err != nil {
		if claimed {
			s.releaseClaim(ctx, dedupeKey)
		}
		return nil, err
	}
	if existing != nil {
		return duplicateResult(existing, itemTitle), nil
	}

	if claimed {
		if err := s.dedupe.Complete(ctx, dedupeKey, booking.BookingNumber, s.dedupeWindow); err != nil {
			logger.Error("Failed to record booking dedupe key", err)
		}
	}

	logger.Success(fmt.Sprintf("Booking %s created for %s %d", booking.BookingNumber, bookingType, itemID))

	bgCtx := context.WithoutCancel(ctx)
	if s.notifier != nil {
		s.notifier.BookingCreated(bgCtx, booking, itemTitle)
	}
	if s.events != nil {
		s.events.Publish(EventBookingCreated, map[string]interface{}{
			"id":            booking.ID,
			"bookingNumber": booking.BookingNumber,
			"type":          booking.Type,
			"itemTitle":     itemTitle,
			"customerName":  booking.CustomerName,
			"startDate":     booking.StartDate.Format("2006-01-02"),
			"totalAmount":   booking.TotalAmount,
			"currency":      booking.Currency,
			"status":        booking.Status,
		})
	}
	if s.activity != nil {
		s.activity.Record(ActivityEntry{
			UserName:    booking.CustomerName,
			Action:      models.ActionCreate,
			EntityType:  "booking",
			EntityID:    booking.ID,
			Description: fmt.Sprintf("New %s booking %s for %s", bookingType, booking.BookingNumber, itemTitle),
		})
	}

	return &CreateBookingResult{
		BookingNumber: booking.BookingNumber,
		BookingID:     booking.ID,
		Status:        booking.Status,
		ItemTitle:     itemTitle,
		Type:          booking.Type,
	}, nil
}

func duplicateResult(b *models.Booking, itemTitle string) *CreateBookingResult {
	return &CreateBookingResult{
		BookingNumber: b.BookingNumber,
		BookingID:     b.ID,
		Status:        b.Status,
		ItemTitle:     itemTitle,
		Type:          b.Type,
		Duplicate:     true,
	}
}

func (s *BookingService) releaseClaim(ctx context.Context, key string) {
	if err := s.dedupe.Release(ctx, key); err != nil {
		logger.Error("Failed to release booking dedupe key", err)
	}
}

// checkItem confirms the referenced tour or service exists and returns its title.
func (s *BookingService) checkItem(bookingType models.BookingType, itemID uint, travelers int) (string, error) {
	if bookingType == models.BookingTypeService {
		service, err := models.FindServiceByID(s.db, itemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrServiceNotFound
		}
		if err != nil {
			return "", apperrors.Unexpected("Failed to load service", err)
		}
		return service.Title, nil
	}

	tour, err := models.FindTourByID(s.db, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrTourNotFound
	}
	if err != nil {
		return "", apperrors.Unexpected("Failed to load tour", err)
	}
	if tour.MaxParticipants > 0 && travelers > tour.MaxParticipants {
		return "", apperrors.Validation(fmt.Sprintf("This tour accepts at most %d travelers", tour.MaxParticipants))
	}
	return tour.Title, nil
}

// insertWithFreshNumber assigns a booking number and inserts, drawing a new
// number when one collides. When the idempotency key collides instead, the
// booking already stored under it is returned.
func (s *BookingService) insertWithFreshNumber(b *models.Booking) (*models.Booking, error) {
	var err error
	for attempt := 0; attempt < bookingNumberAttempts; attempt++ {
		b.BookingNumber = utils.GenerateBookingNumber(s.clock())
		err = s.db.Create(b).Error
		if err == nil {
			return nil, nil
		}
		if !IsUniqueViolation(err) {
			return nil, apperrors.Unexpected("Failed to create booking", err)
		}
		if b.IdempotencyKey != nil {
			if existing, ferr := models.FindBookingByIdempotencyKey(s.db, *b.IdempotencyKey); ferr == nil {
				return existing, nil
			}
		}
		b.ID = 0
	}
	return nil, apperrors.Unexpected("Failed to allocate a unique booking number", err)
}

// IsUniqueViolation recognises duplicate-key errors from either driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// itemTitle includes soft-deleted items so old bookings keep their label.
func (s *BookingService) itemTitle(b *models.Booking) string {
	if b.Type == models.BookingTypeService {
		var service models.Service
		if err := s.db.Unscoped().Select("id", "title").First(&service, b.ItemID).Error; err == nil {
			return service.Title
		}
		return ""
	}
	var tour models.Tour
	if err := s.db.Unscoped().Select("id", "title").First(&tour, b.ItemID).Error; err == nil {
		return tour.Title
	}
	return ""
}

func (s *BookingService) loadBooking(id uint) (*models.Booking, error) {
	booking, err := models.FindBookingByID(s.db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, apperrors.Unexpected("Failed to load booking", err)
	}
	return booking, nil
}

// UpdateBookingStatus moves a booking along the status workflow. Only a real
// change notifies the customer; the optional note is appended best-effort.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, id uint, status string, notes string, actor *Actor) (*BookingDetail, error) {
	next := models.BookingStatus(strings.TrimSpace(status))
	if !next.IsValid() {
		return nil, ErrInvalidStatus
	}

	booking, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}

	from := booking.Status
	if !from.CanTransitionTo(next) {
		return nil, apperrors.Validation(fmt.Sprintf("Cannot change booking status from %s to %s", from, next))
	}

	if from != next {
		if err := s.db.Model(booking).Update("status", next).Error; err != nil {
			return nil, apperrors.Unexpected("Failed to update booking status", err)
		}
		booking.Status = next
	}

	if content := strings.TrimSpace(notes); content != "" && actor != nil && actor.ID != 0 {
		note := &models.BookingNote{BookingID: booking.ID, Content: content, CreatedBy: actor.ID}
		if err := s.db.Create(note).Error; err != nil {
			logger.Error(fmt.Sprintf("Failed to append note to booking %s", booking.BookingNumber), err)
		}
	}

	itemTitle := s.itemTitle(booking)
	if from != next {
		if s.notifier != nil {
			s.notifier.StatusChanged(context.WithoutCancel(ctx), booking, itemTitle, from)
		}
		if s.events != nil {
			s.events.Publish(EventBookingStatusUpdated, map[string]interface{}{
				"id":             booking.ID,
				"bookingNumber":  booking.BookingNumber,
				"previousStatus": from,
				"status":         next,
			})
		}
		if s.activity != nil {
			s.activity.Record(actorEntry(actor, ActivityEntry{
				Action:      models.ActionStatusChange,
				EntityType:  "booking",
				EntityID:    booking.ID,
				Description: fmt.Sprintf("Booking %s status changed from %s to %s", booking.BookingNumber, from, next),
				Changes:     map[string]interface{}{"from": from, "to": next},
			}))
		}
	}

	return s.detail(booking, true)
}

func actorEntry(actor *Actor, entry ActivityEntry) ActivityEntry {
	if actor != nil {
		entry.UserID = actor.ID
		entry.UserName = actor.Name
		entry.IPAddress = actor.IPAddress
		entry.UserAgent = actor.UserAgent
	}
	return entry
}

func (s *BookingService) AddBookingNote(ctx context.Context, id uint, content string, actor *Actor) (*models.BookingNote, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrNoteRequired
	}
	if actor == nil || actor.ID == 0 {
		return nil, apperrors.Auth("Authentication required")
	}

	booking, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}

	note := &models.BookingNote{BookingID: booking.ID, Content: content, CreatedBy: actor.ID}
	if err := s.db.Create(note).Error; err != nil {
		return nil, apperrors.Unexpected("Failed to add note", err)
	}

	saved, err := models.FindBookingNoteByID(s.db, note.ID)
	if err != nil {
		return nil, apperrors.Unexpected("Failed to load note", err)
	}

	if s.events != nil {
		s.events.Publish(EventBookingNoteAdded, map[string]interface{}{
			"bookingId":     booking.ID,
			"bookingNumber": booking.BookingNumber,
			"note":          saved,
		})
	}
	if s.activity != nil {
		s.activity.Record(actorEntry(actor, ActivityEntry{
			Action:      models.ActionAddNote,
			EntityType:  "booking",
			EntityID:    booking.ID,
			Description: "Added note to booking " + booking.BookingNumber,
		}))
	}
	return saved, nil
}

func (s *BookingService) detail(b *models.Booking, withNotes bool) (*BookingDetail, error) {
	if withNotes {
		notes, err := models.FindBookingNotes(s.db, b.ID)
		if err != nil {
			return nil, apperrors.Unexpected("Failed to load booking notes", err)
		}
		b.Notes = notes
	}
	return &BookingDetail{Booking: *b, ItemTitle: s.itemTitle(b)}, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uint) (*BookingDetail, error) {
	booking, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}
	return s.detail(booking, true)
}

// LookupBooking lets a customer find their own booking. Admin notes are not included.
func (s *BookingService) LookupBooking(ctx context.Context, bookingNumber, email string) (*BookingDetail, error) {
	bookingNumber = strings.TrimSpace(bookingNumber)
	email = strings.TrimSpace(email)
	if bookingNumber == "" || email == "" {
		return nil, apperrors.Validation("Booking number and email are required")
	}
	booking, err := models.FindBookingByNumber(s.db, bookingNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !strings.EqualFold(booking.CustomerEmail, email)) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, apperrors.Unexpected("Failed to load booking", err)
	}
	return s.detail(booking, false)
}

func (s *BookingService) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, int64, error) {
	query := s.db.Model(&models.Booking{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(booking_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ? OR customer_phone LIKE ?",
			like, like, like, like,
		)
	}
	if f.DateFrom != nil {
		query = query.Where("created_at >= ?", now.With(*f.DateFrom).BeginningOfDay())
	}
	if f.DateTo != nil {
		query = query.Where("created_at <= ?", now.With(*f.DateTo).EndOfDay())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Unexpected("Failed to count bookings", err)
	}

	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	var bookings []models.Booking
	err := query.Order(orderBy).Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&bookings).Error
	if err != nil {
		return nil, 0, apperrors.Unexpected("Failed to list bookings", err)
	}
	return bookings, total, nil
}

type countRow struct {
	GroupKey string
	Count    int64
}

func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStats, error) {
	stats := &BookingStats{
		ByStatus: map[string]int64{},
		ByType:   map[string]int64{string(models.BookingTypeTour): 0, string(models.BookingTypeService): 0},
	}
	for _, status := range models.AllBookingStatuses() {
		stats.ByStatus[string(status)] = 0
	}

	var byStatus []countRow
	if err := s.db.Model(&models.Booking{}).Select("status AS group_key, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, apperrors.Unexpected("Failed to compute booking stats", err)
	}
	for _, row := range byStatus {
		stats.ByStatus[row.GroupKey] = row.Count
		stats.Total += row.Count
	}

	var byType []countRow
	if err := s.db.Model(&models.Booking{}).Select("type AS group_key, COUNT(*) AS count").Group("type").Scan(&byType).Error; err != nil {
		return nil, apperrors.Unexpected("Failed to compute booking stats", err)
	}
	for _, row := range byType {
		stats.ByType[row.GroupKey] = row.Count
	}

	var revenue struct{ Total float64 }
	if err := s.db.Model(&models.Booking{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("status <> ?", models.BookingStatusCancelled).
		Scan(&revenue).Error; err != nil {
		return nil, apperrors.Unexpected("Failed to compute booking revenue", err)
	}
	stats.TotalRevenue = revenue.Total

	current := s.clock()
	if err := s.db.Model(&models.Booking{}).Where("created_at >= ?", now.With(current).BeginningOfDay()).Count(&stats.Today).Error; err != nil {
		return nil, apperrors.Unexpected("Failed to compute booking stats", err)
	}
	if err := s.db.Model(&models.Booking{}).Where("created_at >= ?", current.AddDate(0, 0, -7)).Count(&stats.Last7Days).Error; err != nil {
		return nil, apperrors.Unexpected("Failed to compute booking stats", err)
	}

	return stats, nil
}
