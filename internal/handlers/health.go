package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports database reachability and, when configured, Redis.
func Health(db *gorm.DB, rdb *redis.Client, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{}
		healthy := true

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			checks["database"] = "down"
			healthy = false
		} else {
			checks["database"] = "up"
		}

		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = "down"
				healthy = false
			} else {
				checks["redis"] = "up"
			}
		}
		if hub != nil {
			checks["websocketClients"] = hub.GetConnectedClients()
		}

		status := http.StatusOK
		message := "OK"
		if !healthy {
			status = http.StatusServiceUnavailable
			message = "Degraded"
		}
		c.JSON(status, Response{Success: healthy, Message: message, Data: checks})
	}
}
