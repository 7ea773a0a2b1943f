package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/pkg/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every model
// migrated. Each call gets its own database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.MigrateModels(db, model.All()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
