// Package databasetest opens throwaway SQLite databases for tests.
package databasetest

import (
	"fmt"
	"testing"

	migration "github.com/bizfish/tag-a-meal-app/cmd/database/migrate"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated in-memory database private to t and a Gateway
// bound to it.
func Open(t testing.TB) (*gorm.DB, database.Gateway) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.Migrate(db))

	gw, err := database.NewGateway(db)
	require.NoError(t, err)
	return db, gw
}
