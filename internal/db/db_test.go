package db

import (
	"testing"

	"github.com/caroica/carousel/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db.internal", Port: 3307, Name: "dating", User: "carousel"}
	got := DSN(cfg)
	want := "carousel@tcp(db.internal:3307)/dating?parseTime=true"
	if got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestDSN_WithPassword(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "127.0.0.1", Port: 3306, Name: "carousel", User: "app", Password: "s3cret"}
	got := DSN(cfg)
	want := "app:s3cret@tcp(127.0.0.1:3306)/carousel?parseTime=true"
	if got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestAutoMigrate(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	for _, table := range []string{"events", "rooms", "sessions"} {
		if !gdb.Migrator().HasTable(table) {
			t.Errorf("table %q not created", table)
		}
	}
}
