// Package dbtest opens throwaway SQLite stores for package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"fintra/internal/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated store backed by a file in t.TempDir().
func Open(t testing.TB, models ...any) *gorm.DB {
	t.Helper()

	gdb, err := db.Open("sqlite://"+filepath.Join(t.TempDir(), "fintra.db"), db.Options{})
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close(gdb) })

	require.NoError(t, db.Migrate(context.Background(), gdb, models...), "failed to migrate test database")
	return gdb
}
