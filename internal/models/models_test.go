package models_test

import (
	"testing"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/database"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to models.BookingStatus
		allowed  bool
	}{
		{models.BookingStatusPending, models.BookingStatusConfirmed, true},
		{models.BookingStatusPending, models.BookingStatusContacted, true},
		{models.BookingStatusPending, models.BookingStatusCompleted, false},
		{models.BookingStatusConfirmed, models.BookingStatusCompleted, true},
		{models.BookingStatusCancelled, models.BookingStatusPending, true},
		{models.BookingStatusCancelled, models.BookingStatusConfirmed, false},
		{models.BookingStatusCompleted, models.BookingStatusCancelled, false},
		{models.BookingStatusCompleted, models.BookingStatusCompleted, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, models.BookingStatus("contacted").IsValid())
	assert.False(t, models.BookingStatus("shipped").IsValid())
	assert.Len(t, models.AllBookingStatuses(), 5)
}

func TestTourListsRoundTrip(t *testing.T) {
	db := setupDB(t)

	tour := &models.Tour{
		Title:  "Ha Long Bay Cruise",
		Slug:   "ha-long-bay-cruise",
		Price:  199,
		Status: models.ItemStatusActive,
		Images: []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
		Itinerary: []models.ItineraryDay{
			{Day: 1, Title: "Board the junk"},
			{Day: 2, Title: "Kayaking"},
		},
	}
	require.NoError(t, tour.Save(db))

	loaded, err := models.FindTourBySlug(db, "ha-long-bay-cruise")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, []string(loaded.Images))
	require.Len(t, loaded.Itinerary, 2)
	assert.Equal(t, "Kayaking", loaded.Itinerary[1].Title)
	assert.NotNil(t, loaded.Included)
	assert.Len(t, loaded.Included, 0)
}

func TestStoredImages(t *testing.T) {
	tour := models.Tour{FeaturedImage: "f.jpg", Images: []string{"a.jpg", "b.jpg"}}
	assert.Equal(t, []string{"f.jpg", "a.jpg", "b.jpg"}, tour.StoredImages())

	service := models.Service{Images: []string{"a.jpg"}}
	assert.Equal(t, []string{"a.jpg"}, service.StoredImages())
}

func TestCategoryUsageIgnoresDeletedItems(t *testing.T) {
	db := setupDB(t)

	cat := &models.Category{Name: "Adventure", Slug: "adventure", Type: models.CategoryTypeBoth, Status: models.ItemStatusActive}
	require.NoError(t, cat.Save(db))

	live := &models.Tour{Title: "Sapa Trek", Slug: "sapa-trek", Status: models.ItemStatusActive, CategoryID: &cat.ID}
	gone := &models.Tour{Title: "Old Trek", Slug: "old-trek", Status: models.ItemStatusActive, CategoryID: &cat.ID}
	service := &models.Service{Title: "Visa", Slug: "visa", Status: models.ItemStatusActive, CategoryID: &cat.ID}
	require.NoError(t, live.Save(db))
	require.NoError(t, gone.Save(db))
	require.NoError(t, service.Save(db))
	require.NoError(t, db.Delete(gone).Error)

	usage, err := cat.Usage(db)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUsage{Tours: 1, Services: 1, Total: 2}, usage)
}

func TestUserSaveHashesAndNormalizes(t *testing.T) {
	db := setupDB(t)

	user := &models.User{Name: "Linh", Email: "  Linh@Example.COM ", Password: "secret1", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, user.Save(db))

	loaded, err := models.FindUserByEmail(db, "LINH@example.com")
	require.NoError(t, err)
	assert.Equal(t, "linh@example.com", loaded.Email)
	assert.NotEqual(t, "secret1", loaded.PasswordHash)
	assert.NoError(t, loaded.CheckPassword("secret1"))
	assert.Error(t, loaded.CheckPassword("wrong"))
	assert.Equal(t, models.RoleAdmin, loaded.EffectiveRole())

	loaded.IsSuperAdmin = true
	assert.Equal(t, models.RoleSuperAdmin, loaded.EffectiveRole())
	assert.False(t, (&models.User{Role: models.RoleCustomer}).CanSignInToDashboard())
}

func TestResetTokenSingleUse(t *testing.T) {
	db := setupDB(t)

	user := &models.User{Name: "Minh", Email: "minh@example.com", Password: "secret1", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, user.Save(db))

	token := &models.PasswordResetToken{UserID: user.ID, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, db.Create(token).Error)

	first, err := token.MarkAsUsed(db)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := token.MarkAsUsed(db)
	require.NoError(t, err)
	assert.False(t, again)

	loaded, err := models.FindResetToken(db, "tok")
	require.NoError(t, err)
	assert.False(t, loaded.IsValid())
	require.NotNil(t, loaded.User)
	assert.Equal(t, "minh@example.com", loaded.User.Email)
}

func TestEmailSettingFlags(t *testing.T) {
	db := setupDB(t)

	assert.True(t, models.EmailSettingEnabled(db, "unknown_setting"))

	setting, err := models.FindEmailSettingByKey(db, models.SettingCustomerConfirmationEnabled)
	require.NoError(t, err)
	setting.SettingValue = "false"
	require.NoError(t, setting.Save(db))
	assert.False(t, models.EmailSettingEnabled(db, models.SettingCustomerConfirmationEnabled))

	for _, v := range []string{"0", "off", "No", "disabled"} {
		assert.False(t, (&models.EmailSetting{SettingValue: v}).Enabled(), v)
	}
	assert.True(t, (&models.EmailSetting{SettingValue: "true"}).Enabled())
}

func TestDeleteActivityLogsBefore(t *testing.T) {
	db := setupDB(t)

	old := &models.ActivityLog{Action: models.ActionLogin, EntityType: "user", CreatedAt: time.Now().AddDate(-2, 0, 0)}
	recent := &models.ActivityLog{Action: models.ActionLogin, EntityType: "user"}
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, db.Create(recent).Error)

	deleted, err := models.DeleteActivityLogsBefore(db, time.Now().AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestFindSocialLinksOrdersAndFilters(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, (&models.SocialLink{Platform: "facebook", URL: "https://facebook.com/x", SortOrder: 2, IsActive: true}).Save(db))
	require.NoError(t, (&models.SocialLink{Platform: "zalo", URL: "https://zalo.me/x", SortOrder: 1, IsActive: false}).Save(db))
	require.NoError(t, (&models.SocialLink{Platform: "instagram", URL: "https://instagram.com/x", SortOrder: 0, IsActive: true}).Save(db))

	all, err := models.FindSocialLinks(db, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "instagram", all[0].Platform)
	assert.Equal(t, "zalo", all[1].Platform)

	active, err := models.FindSocialLinks(db, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
