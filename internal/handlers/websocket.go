package handlers

import (
	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/middleware"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	errFeedAdminOnly       = apperrors.Forbidden("Admin access required")
	errFeedUpgradeRequired = apperrors.Validation("WebSocket upgrade required")
)

// WebSocketHandler upgrades an authenticated admin to the live booking feed.
// Plain HTTP requests get an envelope error instead of a bare upgrade failure.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !middleware.IsAdmin(c) {
			respondError(c, errFeedAdminOnly)
			return
		}
		if !websocket.IsWebSocketUpgrade(c.Request) {
			respondError(c, errFeedUpgradeRequired)
			return
		}

		services.HandleWebSocket(hub, c.Writer, c.Request, c.GetUint(middleware.UserIDKey), c.GetString(middleware.UserRoleKey))
	}
}
