package services

import (
	"context"
	"sync"
	"testing"

	"github.com/chachabrian/tourbook-backend/internal/database"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func uintPtr(v uint) *uint        { return &v }
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

type recordingNotifier struct {
	mu      sync.Mutex
	created []string
	changed []models.BookingStatus
}

func (n *recordingNotifier) BookingCreated(ctx context.Context, b *models.Booking, itemTitle string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, b.BookingNumber)
}

func (n *recordingNotifier) StatusChanged(ctx context.Context, b *models.Booking, itemTitle string, from models.BookingStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, from)
}

func (n *recordingNotifier) changes() []models.BookingStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.BookingStatus(nil), n.changed...)
}

type recordingEvents struct {
	mu     sync.Mutex
	events []string
}

func (e *recordingEvents) Publish(eventType string, data interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, eventType)
}

func (e *recordingEvents) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

type recordingActivity struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

func (a *recordingActivity) Record(entry ActivityEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingActivity) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type memoryQueue struct {
	mu   sync.Mutex
	jobs []Job
	err  error
}

func (q *memoryQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memoryQueue) Close() error { return nil }

func (q *memoryQueue) kinds() []JobKind {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]JobKind, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, j.Kind)
	}
	return out
}

func createTour(t *testing.T, db *gorm.DB, title string, maxParticipants int) *models.Tour {
	t.Helper()
	tour := &models.Tour{
		Title:           title,
		Slug:            utils.Slugify(title),
		Price:           120,
		MaxParticipants: maxParticipants,
		Status:          models.ItemStatusActive,
	}
	require.NoError(t, tour.Save(db))
	return tour
}

func createService(t *testing.T, db *gorm.DB, title string) *models.Service {
	t.Helper()
	service := &models.Service{
		Title:       title,
		Slug:        utils.Slugify(title),
		ServiceType: "transfer",
		Price:       35,
		Status:      models.ItemStatusActive,
	}
	require.NoError(t, service.Save(db))
	return service
}

func createAdmin(t *testing.T, db *gorm.DB, email string, super bool) *models.User {
	t.Helper()
	role := models.RoleAdmin
	if super {
		role = models.RoleSuperAdmin
	}
	user := &models.User{
		Name:         "Admin " + email,
		Email:        email,
		Password:     "secret123",
		Role:         role,
		IsSuperAdmin: super,
		IsActive:     true,
	}
	require.NoError(t, user.Save(db))
	return user
}
