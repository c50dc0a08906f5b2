package handlers_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var checks map[string]interface{}
	env := decode(t, w, &checks)
	assert.True(t, env.Success)
	assert.Equal(t, "up", checks["database"])
	assert.NotContains(t, checks, "redis")
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "admin@example.com", false)

	w := s.do(t, http.MethodPost, "/api/auth/admin/login", map[string]interface{}{"email": "admin@example.com", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid admin credentials", decode(t, w, nil).Message)

	w = s.do(t, http.MethodPost, "/api/auth/admin/login", map[string]interface{}{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/admin/login", map[string]interface{}{"email": "admin@example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login services.LoginResult
	decode(t, w, &login)
	require.NotEmpty(t, login.Token)

	w = s.do(t, http.MethodGet, "/api/auth/me", nil, login.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decode(t, w, &me)
	assert.Equal(t, "admin@example.com", me.Email)

	w = s.do(t, http.MethodPost, "/api/auth/change-password", map[string]interface{}{"currentPassword": "nope-nope", "newPassword": "changed123"}, login.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password is incorrect", decode(t, w, nil).Message)

	w = s.do(t, http.MethodPost, "/api/auth/change-password", map[string]interface{}{"currentPassword": "secret123", "newPassword": "changed123"}, login.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/admin/login", map[string]interface{}{"email": "admin@example.com", "password": "changed123"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordResetEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.createUser(t, "admin@example.com", false)

	unknown := s.do(t, http.MethodPost, "/api/auth/forgot-password", map[string]interface{}{"email": "ghost@example.com"}, "")
	known := s.do(t, http.MethodPost, "/api/auth/forgot-password", map[string]interface{}{"email": "admin@example.com"}, "")
	require.Equal(t, http.StatusOK, unknown.Code)
	require.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, decode(t, unknown, nil).Message, decode(t, known, nil).Message)

	var token models.PasswordResetToken
	require.NoError(t, s.db.Where("user_id = ?", admin.ID).First(&token).Error)

	w := s.do(t, http.MethodGet, "/api/auth/verify-reset-token/"+token.Token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var verified struct {
		Valid bool   `json:"valid"`
		Email string `json:"email"`
	}
	decode(t, w, &verified)
	assert.True(t, verified.Valid)
	assert.Equal(t, "admin@example.com", verified.Email)

	w = s.do(t, http.MethodPost, "/api/auth/reset-password", map[string]interface{}{"token": token.Token, "newPassword": "fresh-pass"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/reset-password", map[string]interface{}{"token": token.Token, "newPassword": "fresh-pass-2"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/auth/verify-reset-token/"+token.Token, nil, "").Code)
}

func TestSocialLinks(t *testing.T) {
	s := newTestServer(t)
	_, token := s.createUser(t, "admin@example.com", false)

	var ids []uint
	for _, platform := range []string{"facebook", "instagram", "youtube"} {
		w := s.do(t, http.MethodPost, "/api/social-links", map[string]interface{}{"platform": platform, "url": "https://" + platform + ".com/tourbook"}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var link models.SocialLink
		decode(t, w, &link)
		assert.Equal(t, len(ids), link.SortOrder)
		ids = append(ids, link.ID)
	}

	w := s.do(t, http.MethodPost, "/api/social-links", map[string]interface{}{"platform": "x", "url": "not a url"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/social-links/"+strconv.Itoa(int(ids[1])), map[string]interface{}{"isActive": false}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var public []models.SocialLink
	decode(t, s.do(t, http.MethodGet, "/api/social-links", nil, ""), &public)
	assert.Len(t, public, 2)

	reversed := []uint{ids[2], ids[1], ids[0]}
	w = s.do(t, http.MethodPut, "/api/social-links/reorder", map[string]interface{}{"ids": reversed}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ordered []models.SocialLink
	decode(t, w, &ordered)
	require.Len(t, ordered, 3)
	for i, link := range ordered {
		assert.Equal(t, reversed[i], link.ID)
		assert.Equal(t, i, link.SortOrder)
	}

	w = s.do(t, http.MethodPut, "/api/social-links/reorder", map[string]interface{}{"ids": []uint{ids[0], ids[0]}}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPut, "/api/social-links/reorder", map[string]interface{}{"ids": []uint{ids[0], 999}}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodPut, "/api/social-links/reorder", map[string]interface{}{"ids": []uint{}}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/social-links/"+strconv.Itoa(int(ids[0])), nil, token).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/social-links/"+strconv.Itoa(int(ids[0])), nil, token).Code)
}

func TestEmailSettings(t *testing.T) {
	s := newTestServer(t)
	_, token := s.createUser(t, "admin@example.com", false)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/email-settings", nil, "").Code)

	var settings []models.EmailSetting
	decode(t, s.do(t, http.MethodGet, "/api/email-settings", nil, token), &settings)
	assert.Len(t, settings, 4)

	w := s.do(t, http.MethodPut, "/api/email-settings/"+models.SettingAdminNotificationEmail, map[string]interface{}{"settingValue": "nope"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/email-settings/"+models.SettingAdminNotificationEmail, map[string]interface{}{"settingValue": "alerts@example.com"}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/email-settings/footer_note", map[string]interface{}{"settingValue": "See you soon"}, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPut, "/api/email-settings/footer_note", map[string]interface{}{}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/email-settings/footer_note", nil, token).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/email-settings/footer_note", nil, token).Code)
}

func TestSendTestEmail(t *testing.T) {
	s := newTestServer(t)
	_, token := s.createUser(t, "admin@example.com", false)

	w := s.do(t, http.MethodPost, "/api/email-settings/test", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		To string `json:"to"`
	}
	env := decode(t, w, &data)
	assert.Equal(t, "Test email queued", env.Message)
	assert.Equal(t, "admin@example.com", data.To)

	w = s.do(t, http.MethodPost, "/api/email-settings/test", map[string]interface{}{"email": "qa@example.com"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	jobs := s.queue.all()
	require.Len(t, jobs, 2)
	assert.Equal(t, services.JobTestEmail, jobs[1].Kind)
	assert.Equal(t, []string{"qa@example.com"}, jobs[1].To)
}

func TestSiteContent(t *testing.T) {
	s := newTestServer(t)
	_, token := s.createUser(t, "admin@example.com", false)

	w := s.do(t, http.MethodPost, "/api/content", map[string]interface{}{
		"key": "home_hero", "page": "home", "section": "hero", "title": "Discover Vietnam",
		"metadata": map[string]interface{}{"cta": "Book now"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/content", map[string]interface{}{"key": "home_hero", "title": "Again"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Content key already exists", decode(t, w, nil).Message)

	w = s.multipart(t, http.MethodPost, "/api/content", map[string]string{
		"key": "about_team", "page": "about", "title": "Our Team", "metadata": `{"members": 5}`, "status": "inactive",
	}, []upload{{field: "image", name: "team.png", data: pngBytes}}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var team models.Content
	decode(t, w, &team)
	assert.True(t, strings.HasPrefix(team.Image, "http://api.test/uploads/content/"))
	assert.EqualValues(t, 5, team.Metadata["members"])

	var items []models.Content
	decode(t, s.do(t, http.MethodGet, "/api/content?pageName=home", nil, ""), &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Book now", items[0].Metadata["cta"])

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/content/about_team", nil, "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/content/about_team", nil, token).Code)

	w = s.do(t, http.MethodPut, "/api/content/home_hero", map[string]interface{}{"title": "Discover Asia"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	var hero models.Content
	decode(t, w, &hero)
	assert.Equal(t, "Discover Asia", hero.Title)
	assert.Equal(t, "hero", hero.Section)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/content/home_hero", nil, token).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/content/home_hero", nil, token).Code)
}

func TestActivityLogs(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.createUser(t, "admin@example.com", false)
	_, rootToken := s.createUser(t, "root@example.com", true)

	old := time.Now().AddDate(0, 0, -200)
	rows := []models.ActivityLog{
		{Action: models.ActionCreate, EntityType: "tour", Description: "Created tour", CreatedAt: time.Now()},
		{Action: models.ActionUpdate, EntityType: "tour", Description: "Updated tour", CreatedAt: time.Now()},
		{Action: models.ActionDelete, EntityType: "booking", Description: "Ancient", CreatedAt: old},
	}
	require.NoError(t, s.db.Create(&rows).Error)

	var logs []models.ActivityLog
	env := decode(t, s.do(t, http.MethodGet, "/api/activity-logs?entityType=tour", nil, adminToken), &logs)
	assert.Equal(t, 2, env.Pagination.Total)

	w := s.do(t, http.MethodGet, "/api/activity-logs/stats", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Total    int64            `json:"total"`
		Last24h  int64            `json:"last24h"`
		ByEntity map[string]int64 `json:"byEntity"`
	}
	decode(t, w, &stats)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Last24h)
	assert.Equal(t, int64(2), stats.ByEntity["tour"])

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/activity-logs/cleanup", nil, adminToken).Code)

	w = s.do(t, http.MethodPost, "/api/activity-logs/cleanup", nil, rootToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cleanup map[string]json.RawMessage
	decode(t, w, &cleanup)
	assert.JSONEq(t, "1", string(cleanup["deleted"]))
	assert.JSONEq(t, "90", string(cleanup["retentionDays"]))
}
