package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/database"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/internal/routes"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const jwtSecret = "handler-test-secret"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type queuedJobs struct {
	mu   sync.Mutex
	jobs []services.Job
}

func (q *queuedJobs) Enqueue(ctx context.Context, job services.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *queuedJobs) Close() error { return nil }

func (q *queuedJobs) all() []services.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]services.Job(nil), q.jobs...)
}

type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	uploadDir string
	queue     *queuedJobs
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	uploadDir := t.TempDir()
	store, err := services.NewLocalStorage(uploadDir, "http://api.test")
	require.NoError(t, err)

	queue := &queuedJobs{}
	notifications := services.NewNotifications(db, queue, services.NotificationSettings{
		CompanyName: "Tourbook",
		AdminEmail:  "ops@example.com",
		FrontendURL: "http://app.test",
	})

	r := gin.New()
	routes.SetupRoutes(r, routes.Deps{
		DB:        db,
		JWTSecret: jwtSecret,
		Bookings: services.NewBookingService(db, services.BookingServiceDeps{
			Notifier: notifications,
		}),
		Auth: services.NewAuthService(db, services.AuthServiceConfig{
			JWTSecret: jwtSecret,
			TokenTTL:  time.Hour,
		}, notifications, nil),
		Notifications:         notifications,
		Storage:               store,
		Hub:                   services.NewHub(),
		ActivityRetentionDays: 90,
	})

	return &testServer{router: r, db: db, uploadDir: uploadDir, queue: queue}
}

func (s *testServer) createUser(t *testing.T, email string, super bool) (*models.User, string) {
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
	require.NoError(t, user.Save(s.db))

	token, err := utils.GenerateToken(jwtSecret, time.Hour, user.ID, string(user.EffectiveRole()), user.Email, user.Name)
	require.NoError(t, err)
	return user, token
}

// createBootstrapAdmin seeds the protected super admin the way the database
// bootstrap does.
func (s *testServer) createBootstrapAdmin(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	user, token := s.createUser(t, email, true)
	require.NoError(t, s.db.Model(user).Update("is_bootstrap", true).Error)
	user.IsBootstrap = true
	return user, token
}

type envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Data       json.RawMessage      `json:"data"`
	Details    json.RawMessage      `json:"details"`
	Pagination *struct{ Total int } `json:"pagination"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type upload struct {
	field string
	name  string
	data  []byte
}

func (s *testServer) multipart(t *testing.T, method, path string, fields map[string]string, files []upload, token string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}
