package models

import "time"

// Event is the speed-dating event a rotation runs inside. Event CRUD is
// owned by a separate service; the rotation engine only validates
// existence and reads the slot length for the stale-session sweep.
type Event struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"size:128;not null"`
	SlotMinutes int
	StartsAt    *time.Time
	Active      bool `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
