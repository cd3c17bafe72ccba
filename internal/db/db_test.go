package db

import (
	"path/filepath"
	"testing"

	"github.com/diewo77/go-workhours/internal/config"
	"github.com/diewo77/go-workhours/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTemp(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := Open(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
}

func TestRunModes(t *testing.T) {
	conn := openTemp(t)
	require.NoError(t, Run(conn, "off"))
	assert.False(t, conn.Migrator().HasTable(&models.Invoice{}))

	require.Error(t, Run(conn, "bogus"))

	require.NoError(t, Run(conn, "auto"))
	for _, m := range models.All() {
		assert.True(t, conn.Migrator().HasTable(m), "%T", m)
	}
}

func TestMigrateSQLCreatesSchema(t *testing.T) {
	conn := openTemp(t)
	require.NoError(t, MigrateSQL(conn))
	// A second run is a no-op.
	require.NoError(t, MigrateSQL(conn))

	for _, table := range []string{"users", "profiles", "permissions", "profile_permissions",
		"projects", "work_logs", "invoices", "invoice_items", "checklist_items",
		"master_progress_statuses", "master_work_categories", "master_inquiry_statuses", "master_machine_series"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
	assert.True(t, conn.Migrator().HasColumn(&models.User{}, "is_active"))
}

func TestSeedIsIdempotent(t *testing.T) {
	conn := openTemp(t)
	require.NoError(t, Migrate(conn))

	require.NoError(t, Seed(conn))
	var perms, profiles, progress int64
	conn.Model(&models.Permission{}).Count(&perms)
	conn.Model(&models.Profile{}).Count(&profiles)
	conn.Model(&models.ProgressStatus{}).Count(&progress)

	require.NoError(t, Seed(conn))
	var perms2, profiles2, progress2 int64
	conn.Model(&models.Permission{}).Count(&perms2)
	conn.Model(&models.Profile{}).Count(&profiles2)
	conn.Model(&models.ProgressStatus{}).Count(&progress2)

	assert.Equal(t, int64(len(permissionSeeds)), perms)
	assert.Equal(t, perms, perms2)
	assert.Equal(t, int64(3), profiles)
	assert.Equal(t, profiles, profiles2)
	assert.Equal(t, progress, progress2)
}

func TestSeedProfilesAssignsPermissions(t *testing.T) {
	conn := openTemp(t)
	require.NoError(t, Migrate(conn))
	require.NoError(t, SeedProfiles(conn))

	var admin models.Profile
	require.NoError(t, conn.Preload("Permissions").Where("name = ?", "admin").First(&admin).Error)
	assert.Equal(t, []string{"*:*"}, admin.Codes())

	var engineer models.Profile
	require.NoError(t, conn.Preload("Permissions").Where("name = ?", "engineer").First(&engineer).Error)
	assert.Contains(t, engineer.Codes(), "invoice:preview")
	assert.NotContains(t, engineer.Codes(), "invoice:close")
}

func TestSeedMastersInProgressStartsProjects(t *testing.T) {
	conn := openTemp(t)
	require.NoError(t, Migrate(conn))
	require.NoError(t, SeedMasters(conn))

	var st models.ProgressStatus
	require.NoError(t, conn.Where("status_name = ?", models.ProjectStatusInProgress).First(&st).Error)
	assert.True(t, st.StartDateTrigger)
	assert.True(t, st.IsActive)
}

func TestSeedUser(t *testing.T) {
	conn := openTemp(t)
	require.NoError(t, Migrate(conn))

	_, err := SeedUser(conn, "a@example.com", "A", "admin")
	require.Error(t, err, "profile must exist first")

	require.NoError(t, SeedProfiles(conn))
	u, err := SeedUser(conn, "a@example.com", "A", "admin")
	require.NoError(t, err)
	require.NotNil(t, u.ProfileID)

	again, err := SeedUser(conn, "a@example.com", "A", "viewer")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.NotEqual(t, *u.ProfileID, *again.ProfileID)
}
