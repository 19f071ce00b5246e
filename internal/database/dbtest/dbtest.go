// Package dbtest provisions throwaway databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"inventario/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory sqlite database private to t.
// The schema is dropped and the connection closed when t finishes.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(database.Options{Driver: database.DriverSQLite, DSN: dsn})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and avoids
	// shared-cache table locks between concurrent writers.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		_ = database.DropAll(db)
		_ = database.Close(db)
	})
	return db
}
