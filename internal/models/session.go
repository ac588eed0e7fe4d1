package models

import "time"

// Session lifecycle statuses. The rotation is linear: a session is seeded
// as upcoming, opened to available, claimed to busy, and closed to
// completed. Completed is terminal.
const (
	StatusUpcoming  = "upcoming"
	StatusAvailable = "available"
	StatusBusy      = "busy"
	StatusCompleted = "completed"
)

// Session is one scheduled match between a group-A and a group-B
// participant of an event. Rows are created in bulk by the schedule
// generator and never deleted; the ascending ID is the rotation order.
type Session struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	EventID     uint   `gorm:"not null;index"`
	SideAEmail  string `gorm:"size:128;not null;index"`
	SideBEmail  string `gorm:"size:128;not null;index"`
	Status      string `gorm:"size:16;default:upcoming;index"`
	MatchToken  string `gorm:"size:36"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	MatchedAt   *time.Time
	CompletedAt *time.Time
}

// ValidAdminStatus reports whether s is a status the administrative
// update endpoint accepts.
func ValidAdminStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusBusy, StatusCompleted:
		return true
	}
	return false
}
