// Package testutil provides per-test database fixtures.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/taskhive-dev/taskhive/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an in-memory SQLite database with all migrations applied.
// Each call gets its own database; it goes away with the test process.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	return conn
}

// NewTestLogger returns a logger that discards everything.
func NewTestLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	return zap.NewNop().Sugar()
}
