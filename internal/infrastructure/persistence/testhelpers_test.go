package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/identity"
	"github.com/ngo-pm/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database with every table migrated.
// A single connection keeps transactions on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.OrganizationModel{},
		&models.UserModel{},
		&models.ProjectModel{},
		&models.ProgressReportModel{},
		&models.DeliveryModel{},
	))
	return db
}

func newTestOrganization(t *testing.T, name string) *identity.Organization {
	t.Helper()
	org, err := identity.NewOrganization(name, "contact@"+identity.Slugify(name)+".org", "ke")
	require.NoError(t, err)
	return org
}

func newTestUser(t *testing.T, orgID uuid.UUID, email string, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser(orgID, email, "amina", "odhiambo", "s3cret-pass", role)
	require.NoError(t, err)
	return u
}
