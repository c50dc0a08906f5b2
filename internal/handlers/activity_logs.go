package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type ActivityStats struct {
	Total     int64            `json:"total"`
	Last24h   int64            `json:"last24h"`
	ByAction  map[string]int64 `json:"byAction"`
	ByEntity  map[string]int64 `json:"byEntity"`
	OldestLog *time.Time       `json:"oldestLog,omitempty"`
}

type groupCount struct {
	GroupKey string
	Count    int64
}

func countBy(db *gorm.DB, column string) (map[string]int64, error) {
	var rows []groupCount
	err := db.Model(&models.ActivityLog{}).
		Select(column + " AS group_key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.GroupKey] = r.Count
	}
	return counts, nil
}

func ListActivityLogs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := parsePagination(c)
		query := db.Model(&models.ActivityLog{})

		if userID, err := strconv.ParseUint(c.Query("userId"), 10, 64); err == nil {
			query = query.Where("user_id = ?", userID)
		}
		if action := c.Query("action"); action != "" {
			query = query.Where("action = ?", action)
		}
		if entityType := c.Query("entityType"); entityType != "" {
			query = query.Where("entity_type = ?", entityType)
		}
		if v := c.Query("dateFrom"); v != "" {
			t, err := services.ParseDate(v)
			if err != nil {
				failValidation(c, "Invalid dateFrom")
				return
			}
			query = query.Where("created_at >= ?", now.With(t).BeginningOfDay())
		}
		if v := c.Query("dateTo"); v != "" {
			t, err := services.ParseDate(v)
			if err != nil {
				failValidation(c, "Invalid dateTo")
				return
			}
			query = query.Where("created_at <= ?", now.With(t).EndOfDay())
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to count activity logs", err))
			return
		}

		var logs []models.ActivityLog
		err := query.Order("created_at DESC").Order("id DESC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&logs).Error
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to fetch activity logs", err))
			return
		}
		respondList(c, logs, page, limit, total)
	}
}

func GetActivityStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats ActivityStats
		if err := db.Model(&models.ActivityLog{}).Count(&stats.Total).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to compute activity stats", err))
			return
		}
		since := time.Now().Add(-24 * time.Hour)
		if err := db.Model(&models.ActivityLog{}).Where("created_at >= ?", since).Count(&stats.Last24h).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to compute activity stats", err))
			return
		}

		var err error
		if stats.ByAction, err = countBy(db, "action"); err != nil {
			respondError(c, apperrors.Unexpected("Failed to compute activity stats", err))
			return
		}
		if stats.ByEntity, err = countBy(db, "entity_type"); err != nil {
			respondError(c, apperrors.Unexpected("Failed to compute activity stats", err))
			return
		}

		if stats.Total > 0 {
			var oldest models.ActivityLog
			if err := db.Order("created_at ASC").First(&oldest).Error; err == nil {
				stats.OldestLog = &oldest.CreatedAt
			}
		}
		respond(c, http.StatusOK, "", stats)
	}
}

// CleanupActivityLogs purges rows older than the retention window.
func CleanupActivityLogs(db *gorm.DB, retentionDays int, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := retentionDays
		if days <= 0 {
			days = 365
		}
		cutoff := time.Now().AddDate(0, 0, -days)

		deleted, err := models.DeleteActivityLogsBefore(db, cutoff)
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to clean up activity logs", err))
			return
		}

		record(activity, c, models.ActionCleanup, "activity_log", 0, "Purged old activity logs",
			map[string]interface{}{"deleted": deleted, "retentionDays": days})
		respond(c, http.StatusOK, "Activity logs cleaned up", gin.H{
			"deleted":       deleted,
			"retentionDays": days,
			"cutoff":        cutoff,
		})
	}
}
