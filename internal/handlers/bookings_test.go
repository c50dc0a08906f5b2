package handlers_test

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) activeTour(t *testing.T, title string) *models.Tour {
	t.Helper()
	tour := &models.Tour{Title: title, Slug: utils.Slugify(title), Price: 100, Status: models.ItemStatusActive}
	require.NoError(t, tour.Save(s.db))
	return tour
}

func bookingBody(tourID uint) map[string]interface{} {
	return map[string]interface{}{
		"tourId":         tourID,
		"customerName":   "Pham Minh",
		"customerEmail":  "minh@example.com",
		"customerPhone":  "+84987654321",
		"startDate":      time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		"adults":         2,
		"totalTravelers": 2,
		"totalAmount":    200,
	}
}

func TestPublicBookingFlow(t *testing.T) {
	s := newTestServer(t)
	tour := s.activeTour(t, "Imperial City Hue")

	w := s.do(t, http.MethodPost, "/api/bookings", bookingBody(tour.ID), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result services.CreateBookingResult
	env := decode(t, w, &result)
	assert.Equal(t, "Booking created successfully", env.Message)
	assert.Regexp(t, utils.BookingNumberPattern, result.BookingNumber)
	assert.Equal(t, "Imperial City Hue", result.ItemTitle)

	kinds := []services.JobKind{}
	for _, job := range s.queue.all() {
		kinds = append(kinds, job.Kind)
	}
	assert.Equal(t, []services.JobKind{services.JobAdminBookingAlert, services.JobBookingConfirmation}, kinds)

	w = s.do(t, http.MethodGet, "/api/bookings/lookup?bookingNumber="+result.BookingNumber+"&email=MINH@example.com", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var detail services.BookingDetail
	decode(t, w, &detail)
	assert.Equal(t, result.BookingNumber, detail.BookingNumber)
	assert.Equal(t, "Imperial City Hue", detail.ItemTitle)

	w = s.do(t, http.MethodGet, "/api/bookings/lookup?bookingNumber="+result.BookingNumber+"&email=other@example.com", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicBookingValidation(t *testing.T) {
	s := newTestServer(t)
	tour := s.activeTour(t, "Da Lat Flowers")

	body := bookingBody(tour.ID)
	delete(body, "customerEmail")
	w := s.do(t, http.MethodPost, "/api/bookings", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required booking information", decode(t, w, nil).Message)

	body = bookingBody(tour.ID)
	body["startDate"] = time.Now().AddDate(0, 0, -2).Format("2006-01-02")
	w = s.do(t, http.MethodPost, "/api/bookings", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w, nil).Message, "past")

	body = bookingBody(4040)
	w = s.do(t, http.MethodPost, "/api/bookings", body, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	body = bookingBody(tour.ID)
	body["totalTravelers"] = "two"
	w = s.do(t, http.MethodPost, "/api/bookings", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, s.queue.all())
}

func TestPublicBookingIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	tour := s.activeTour(t, "Con Dao Diving")

	first := s.do(t, http.MethodPost, "/api/bookings", bookingBody(tour.ID), "", "Idempotency-Key", "retry-123")
	require.Equal(t, http.StatusCreated, first.Code)
	var a services.CreateBookingResult
	decode(t, first, &a)

	second := s.do(t, http.MethodPost, "/api/bookings", bookingBody(tour.ID), "", "Idempotency-Key", "retry-123")
	require.Equal(t, http.StatusOK, second.Code)
	var b services.CreateBookingResult
	env := decode(t, second, &b)
	assert.Equal(t, "Booking already submitted", env.Message)
	assert.Equal(t, a.BookingNumber, b.BookingNumber)
	assert.True(t, b.Duplicate)

	var count int64
	require.NoError(t, s.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAdminBookingManagement(t *testing.T) {
	s := newTestServer(t)
	_, token := s.createUser(t, "admin@example.com", false)
	tour := s.activeTour(t, "Mui Ne Dunes")

	w := s.do(t, http.MethodPost, "/api/bookings", bookingBody(tour.ID), "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created services.CreateBookingResult
	decode(t, w, &created)
	path := "/api/bookings/" + strconv.Itoa(int(created.BookingID))

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/bookings", nil, "").Code)

	var list []models.Booking
	env := decode(t, s.do(t, http.MethodGet, "/api/bookings?status=pending", nil, token), &list)
	assert.Equal(t, 1, env.Pagination.Total)
	require.Len(t, list, 1)

	w = s.do(t, http.MethodPut, path+"/status", map[string]interface{}{"status": "confirmed", "notes": "Deposit received"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var detail services.BookingDetail
	decode(t, w, &detail)
	assert.Equal(t, models.BookingStatusConfirmed, detail.Status)
	require.Len(t, detail.Notes, 1)
	assert.Equal(t, "Admin admin@example.com", detail.Notes[0].CreatedByName)

	w = s.do(t, http.MethodPut, path+"/status", map[string]interface{}{"status": "shipped"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, path+"/notes", map[string]interface{}{"content": "Called to confirm pickup"}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, path+"/notes", map[string]interface{}{"content": ""}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	decode(t, s.do(t, http.MethodGet, path, nil, token), &detail)
	assert.Len(t, detail.Notes, 2)

	var stats services.BookingStats
	decode(t, s.do(t, http.MethodGet, "/api/bookings/stats", nil, token), &stats)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus["confirmed"])

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/bookings/999", nil, token).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/bookings/abc", nil, token).Code)
}
