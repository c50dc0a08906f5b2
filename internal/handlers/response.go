package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/chachabrian/tourbook-backend/internal/middleware"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Response is the JSON envelope of every endpoint.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondList(c *gin.Context, data interface{}, page, limit int, total int64) {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       data,
		Pagination: &Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages},
	})
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindConflict:
		return http.StatusBadRequest
	case apperrors.KindAuth:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError translates err into the HTTP taxonomy. Unexpected and storage
// failures are logged and answered with a generic message.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			appErr = apperrors.NotFound("Resource not found")
		} else {
			appErr = apperrors.Unexpected("Internal server error", err)
		}
	}

	status := statusFor(appErr.Kind)
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Method+" "+c.FullPath()+": "+appErr.Message, appErr.Err)
		if appErr.Kind == apperrors.KindUnexpected {
			message = "Internal server error"
		}
	}

	c.AbortWithStatusJSON(status, Response{Success: false, Message: message, Details: appErr.Details})
}

func failValidation(c *gin.Context, message string) {
	respondError(c, apperrors.Validation(message))
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// sortClause builds an ORDER BY from sortBy/sortOrder (or sort/order), only
// ever emitting whitelisted columns.
func sortClause(c *gin.Context, allowed map[string]string, fallback string) string {
	sortBy := c.Query("sortBy")
	if sortBy == "" {
		sortBy = c.Query("sort")
	}
	column, ok := allowed[sortBy]
	if !ok {
		return fallback
	}
	order := c.Query("sortOrder")
	if order == "" {
		order = c.Query("order")
	}
	if strings.EqualFold(order, "asc") {
		return column + " ASC"
	}
	return column + " DESC"
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// actorFrom collects the authenticated admin and request metadata.
func actorFrom(c *gin.Context) *services.Actor {
	return &services.Actor{
		ID:        c.GetUint(middleware.UserIDKey),
		Name:      c.GetString(middleware.UserNameKey),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func record(activity services.ActivityRecorder, c *gin.Context, action, entityType string, entityID uint, description string, changes map[string]interface{}) {
	if activity == nil {
		return
	}
	actor := actorFrom(c)
	activity.Record(services.ActivityEntry{
		UserID:      actor.ID,
		UserName:    actor.Name,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		Changes:     changes,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
}
