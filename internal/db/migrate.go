package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// migrationLockKey serializes schema migration across instances starting
// at the same time.
const migrationLockKey int64 = 0x66696e747261

// Migrate creates or updates the tables for models under the migration
// advisory lock.
func Migrate(ctx context.Context, gdb *gorm.DB, models ...any) error {
	return WithAdvisoryLock(ctx, gdb, migrationLockKey, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(models...); err != nil {
			return fmt.Errorf("auto migrate: %w", Classify(err))
		}
		return nil
	})
}

// WithAdvisoryLock runs fn while holding a session-level Postgres advisory
// lock on key. fn gets a handle bound to the connection that holds the lock
// and must use it for all its queries; the pool may have no other
// connection to give. On other dialects the lock is skipped.
func WithAdvisoryLock(ctx context.Context, gdb *gorm.DB, key int64, fn func(tx *gorm.DB) error) error {
	err := gdb.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		tx := conn.Session(&gorm.Session{})
		if tx.Dialector.Name() != "postgres" {
			return fn(tx)
		}

		if err := tx.Exec("SELECT pg_advisory_lock(?)", key).Error; err != nil {
			return fmt.Errorf("advisory lock %d: %w", key, Classify(err))
		}
		defer tx.WithContext(context.WithoutCancel(ctx)).Exec("SELECT pg_advisory_unlock(?)", key)

		return fn(tx)
	})
	if err != nil {
		return fmt.Errorf("with advisory lock: %w", Classify(err))
	}
	return nil
}
