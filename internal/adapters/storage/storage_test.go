package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nmadhukar/workforcenexus/internal/adapters/storage/gormdb"
	"github.com/nmadhukar/workforcenexus/migrations"
)

func openTestDB(t *testing.T) *gormdb.DB {
	t.Helper()

	db, err := gormdb.Open(gormdb.Config{
		Driver: gormdb.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.sqlite"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	sqlDB, err := db.WriteSQLDB()
	if err != nil {
		t.Fatalf("write sql db: %v", err)
	}
	if err := migrations.Up(context.Background(), sqlDB, db.GooseDialect()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
