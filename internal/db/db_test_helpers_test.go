package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/elan/internal/models"
	"gorm.io/gorm"
)

func openTestSQLite(t *testing.T, name string) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(filepath.Join(t.TempDir(), name), nil)
	require.NoError(t, err, "open sqlite")

	sqlDB, err := database.DB()
	require.NoError(t, err, "open sql db")
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func createUser(t *testing.T, database *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{Email: email, Role: models.RoleUser}
	require.NoError(t, database.Create(&user).Error, "create user %s", email)
	return user
}
