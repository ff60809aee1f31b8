// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
)

var nameReplacer = strings.NewReplacer("/", "_", " ", "_", "#", "_")

// New returns a fresh migrated SQLite database; every call gets its own.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := nameReplacer.Replace(t.Name()) + "_" + uuid.NewString()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	gdb, err := db.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return gdb
}
