// internal/testutil/db.go
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/autoimport-backend/internal/models"
)

// NewDB opens an isolated in-memory sqlite database with the contract tables.
// Car requests use a postgres array column and are not migrated here.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.IdentityDocument{},
		&models.Contract{},
	))
	return db
}

// CreateAdmin inserts an active admin with the given password.
func CreateAdmin(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		FullName: "Test Admin",
		UserType: models.UserTypeAdmin,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateClient inserts an active client account.
func CreateClient(t *testing.T, db *gorm.DB, email, fullName string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		FullName: fullName,
		UserType: models.UserTypeClient,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// MigrateCarRequests creates car_requests with a TEXT images column, which
// pq.StringArray scans from its "{a,b}" literal.
func MigrateCarRequests(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Exec(`CREATE TABLE car_requests (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		client_id TEXT NOT NULL,
		brand TEXT NOT NULL,
		model TEXT NOT NULL,
		year INTEGER,
		fuel_type TEXT,
		budget NUMERIC NOT NULL,
		notes TEXT,
		images TEXT,
		status TEXT DEFAULT 'new',
		offer_link TEXT,
		offer_sent_at DATETIME
	)`).Error)
}
