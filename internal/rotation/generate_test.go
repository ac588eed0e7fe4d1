package rotation

import (
	"errors"
	"testing"

	"github.com/caroica/carousel/internal/models"
	"github.com/caroica/carousel/internal/roster"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Pooled connections would otherwise each get their own in-memory database.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Event{}, &models.Room{}, &models.Session{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedEvent(t *testing.T, db *gorm.DB, slotMinutes int) uint {
	t.Helper()
	event := models.Event{Title: "test event", SlotMinutes: slotMinutes, Active: true}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return event.ID
}

func seedRoom(t *testing.T, db *gorm.DB, eventID uint, email, group string) {
	t.Helper()
	room := models.Room{EventID: eventID, Email: email, Group: group, RoomID: "room-" + email, Active: true}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("seed room %s: %v", email, err)
	}
}

// seedTwoByTwo seeds the canonical A1/A2 x B1/B2 event.
func seedTwoByTwo(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	eventID := seedEvent(t, db, 5)
	seedRoom(t, db, eventID, "a1@example.com", models.GroupA)
	seedRoom(t, db, eventID, "a2@example.com", models.GroupA)
	seedRoom(t, db, eventID, "b1@example.com", models.GroupB)
	seedRoom(t, db, eventID, "b2@example.com", models.GroupB)
	return eventID
}

func TestGenerateSchedule_CrossProduct(t *testing.T) {
	db := openTestDB(t)
	eventID := seedTwoByTwo(t, db)

	sessions, err := GenerateSchedule(db, eventID)
	if err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}
	if len(sessions) != 4 {
		t.Fatalf("sessions = %d, want 4", len(sessions))
	}

	want := [][2]string{
		{"a1@example.com", "b1@example.com"},
		{"a1@example.com", "b2@example.com"},
		{"a2@example.com", "b1@example.com"},
		{"a2@example.com", "b2@example.com"},
	}
	for i, s := range sessions {
		if s.SideAEmail != want[i][0] || s.SideBEmail != want[i][1] {
			t.Errorf("session %d = (%s, %s), want (%s, %s)", i, s.SideAEmail, s.SideBEmail, want[i][0], want[i][1])
		}
		if s.Status != models.StatusUpcoming {
			t.Errorf("session %d status = %q, want %q", i, s.Status, models.StatusUpcoming)
		}
		if s.ID == 0 {
			t.Errorf("session %d has no ID", i)
		}
	}
	// IDs encode rotation order.
	for i := 1; i < len(sessions); i++ {
		if sessions[i].ID <= sessions[i-1].ID {
			t.Errorf("session IDs not ascending: %d then %d", sessions[i-1].ID, sessions[i].ID)
		}
	}
}

func TestGenerateSchedule_EmptyGroupWritesNothing(t *testing.T) {
	db := openTestDB(t)
	eventID := seedEvent(t, db, 5)
	seedRoom(t, db, eventID, "a1@example.com", models.GroupA)

	_, err := GenerateSchedule(db, eventID)
	if !errors.Is(err, roster.ErrInsufficientParticipants) {
		t.Fatalf("err = %v, want ErrInsufficientParticipants", err)
	}

	var count int64
	if err := db.Model(&models.Session{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("sessions written = %d, want 0", count)
	}
}

func TestGenerateSchedule_EventNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := GenerateSchedule(db, 99)
	if !errors.Is(err, roster.ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
}

func TestGenerateSchedule_RerunAppends(t *testing.T) {
	db := openTestDB(t)
	eventID := seedTwoByTwo(t, db)

	if _, err := GenerateSchedule(db, eventID); err != nil {
		t.Fatalf("first GenerateSchedule: %v", err)
	}
	if _, err := GenerateSchedule(db, eventID); err != nil {
		t.Fatalf("second GenerateSchedule: %v", err)
	}

	var count int64
	if err := db.Model(&models.Session{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 8 {
		t.Errorf("sessions = %d, want 8 (no dedup across runs)", count)
	}
}
