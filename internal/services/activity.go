package services

import (
	"sync"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityEntry describes one admin action to record.
type ActivityEntry struct {
	UserID      uint
	UserName    string
	Action      string
	EntityType  string
	EntityID    uint
	Description string
	Changes     map[string]interface{}
	IPAddress   string
	UserAgent   string
}

// ActivityRecorder accepts audit entries without blocking the request.
type ActivityRecorder interface {
	Record(entry ActivityEntry)
}

// AsyncActivityLogger writes audit rows from a single background goroutine.
type AsyncActivityLogger struct {
	db      *gorm.DB
	channel chan models.ActivityLog
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

func NewAsyncActivityLogger(db *gorm.DB) *AsyncActivityLogger {
	return &AsyncActivityLogger{
		db:      db,
		channel: make(chan models.ActivityLog, 100),
	}
}

// Start launches the writer goroutine.
func (l *AsyncActivityLogger) Start() {
	l.wg.Add(1)
	go l.process()
}

func (l *AsyncActivityLogger) process() {
	defer l.wg.Done()
	for entry := range l.channel {
		row := entry
		if err := l.db.Create(&row).Error; err != nil {
			logger.Error("Failed to insert activity log", err)
		}
	}
}

// Record enqueues an entry. A full buffer drops the entry rather than
// stalling the request.
func (l *AsyncActivityLogger) Record(entry ActivityEntry) {
	row := models.ActivityLog{
		UserName:    entry.UserName,
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		Description: entry.Description,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		CreatedAt:   time.Now(),
	}
	if entry.UserID != 0 {
		id := entry.UserID
		row.UserID = &id
	}
	if entry.EntityID != 0 {
		id := entry.EntityID
		row.EntityID = &id
	}
	if entry.Changes != nil {
		row.Changes = datatypes.JSONMap(entry.Changes)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.channel <- row:
	default:
		logger.Warning("Activity log buffer full, dropping " + entry.Action + " entry")
	}
}

// Stop flushes queued entries and waits for the writer to exit.
func (l *AsyncActivityLogger) Stop() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.channel)
	}
	l.mu.Unlock()
	l.wg.Wait()
}
