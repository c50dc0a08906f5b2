package database

import (
	"testing"

	"github.com/chachabrian/tourbook-backend/internal/config"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsSeedsEmailSettings(t *testing.T) {
	db, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))
	// Idempotent
	require.NoError(t, RunMigrations(db))

	settings, err := models.FindEmailSettings(db)
	require.NoError(t, err)
	assert.Len(t, settings, 4)
	assert.True(t, models.EmailSettingEnabled(db, models.SettingStatusUpdateEnabled))
}

func TestSeedSuperAdmin(t *testing.T) {
	db, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))

	cfg := &config.Config{
		BootstrapAdminEmail:    "Owner@Example.com",
		BootstrapAdminPassword: "secret123",
		BootstrapAdminName:     "Owner",
	}
	require.NoError(t, SeedSuperAdmin(db, cfg))
	require.NoError(t, SeedSuperAdmin(db, cfg))

	var count int64
	db.Model(&models.User{}).Where("is_super_admin = ?", true).Count(&count)
	assert.Equal(t, int64(1), count)

	admin, err := models.FindUserByEmail(db, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.True(t, admin.IsBootstrap)
	assert.NoError(t, admin.CheckPassword("secret123"))
}

func TestSeedSuperAdminWithoutCredentials(t *testing.T) {
	db, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))

	require.NoError(t, SeedSuperAdmin(db, &config.Config{}))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
