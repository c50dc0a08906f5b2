package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CreateDirectBooking handles public booking submissions
func CreateDirectBooking(svc *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.BookingInput
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, bindingError(err))
			return
		}
		input.IdempotencyKey = c.GetHeader("Idempotency-Key")

		result, err := svc.CreateDirectBooking(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}

		if result.Duplicate {
			respond(c, http.StatusOK, "Booking already submitted", result)
			return
		}
		respond(c, http.StatusCreated, "Booking created successfully", result)
	}
}

func ListBookings(svc *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := parsePagination(c)
		filter := services.BookingFilter{
			Status:  c.Query("status"),
			Type:    c.Query("type"),
			Search:  c.Query("search"),
			Page:    page,
			Limit:   limit,
			OrderBy: sortClause(c, services.BookingSortColumns, "created_at DESC"),
		}
		if v := c.Query("dateFrom"); v != "" {
			t, err := services.ParseDate(v)
			if err != nil {
				failValidation(c, "Invalid dateFrom")
				return
			}
			filter.DateFrom = &t
		}
		if v := c.Query("dateTo"); v != "" {
			t, err := services.ParseDate(v)
			if err != nil {
				failValidation(c, "Invalid dateTo")
				return
			}
			filter.DateTo = &t
		}

		bookings, total, err := svc.ListBookings(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		respondList(c, bookings, page, limit, total)
	}
}

func GetBookingStats(svc *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.GetBookingStats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", stats)
	}
}

func GetBooking(svc *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			respondError(c, services.ErrBookingNotFound)
			return
		}
		booking, err := svc.GetBooking(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", booking)
	}
}

// LookupBooking lets customers check a booking with its number and their email
func LookupBooking(svc *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := svc.LookupBooking(c.Request.Context(), c.Query("bookingNumber"), c.Query("email"))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", booking)
	}
}

func UpdateBookingStatus(svc *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			respondError(c, services.ErrBookingNotFound)
			return
		}
		var input struct {
			Status string `json:"status"`
			Notes  string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindingError(err))
			return
		}

		booking, err := svc.UpdateBookingStatus(c.Request.Context(), id, input.Status, input.Notes, actorFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "Booking status updated", booking)
	}
}

func AddBookingNote(svc *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			respondError(c, services.ErrBookingNotFound)
			return
		}
		var input struct {
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, bindingError(err))
			return
		}

		note, err := svc.AddBookingNote(c.Request.Context(), id, input.Content, actorFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusCreated, "Note added", note)
	}
}
