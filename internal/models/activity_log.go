package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity actions
const (
	ActionLogin        = "login"
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionStatusChange = "status_change"
	ActionAddNote      = "add_note"
	ActionCleanup      = "cleanup"
)

// ActivityLog is an append-only audit row for admin mutations.
type ActivityLog struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      *uint             `gorm:"index" json:"userId,omitempty"`
	UserName    string            `json:"userName,omitempty"`
	Action      string            `gorm:"size:50;not null;index" json:"action"`
	EntityType  string            `gorm:"size:50;index" json:"entityType"`
	EntityID    *uint             `json:"entityId,omitempty"`
	Description string            `gorm:"type:text" json:"description"`
	Changes     datatypes.JSONMap `json:"changes,omitempty"`
	IPAddress   string            `gorm:"size:64" json:"ipAddress,omitempty"`
	UserAgent   string            `json:"userAgent,omitempty"`
	CreatedAt   time.Time         `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// DeleteActivityLogsBefore purges rows created before cutoff and returns how many went.
func DeleteActivityLogsBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("created_at < ?", cutoff).Delete(&ActivityLog{})
	return result.RowsAffected, result.Error
}
