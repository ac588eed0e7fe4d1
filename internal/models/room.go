package models

import "time"

// Rotation groups. Every participant room belongs to exactly one group;
// sessions always pair a group-A participant with a group-B participant.
const (
	GroupA = "a"
	GroupB = "b"
)

// Room is a participant's assignment within an event: their rotation
// group and the video room they host. One row per (event, email). Owned
// by event setup; the rotation engine reads it and takes row locks on it
// but never mutates it.
type Room struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	EventID   uint   `gorm:"not null;uniqueIndex:idx_event_email,priority:1"`
	Email     string `gorm:"size:128;not null;uniqueIndex:idx_event_email,priority:2"`
	Group     string `gorm:"size:8;not null;index"`
	RoomID    string `gorm:"size:36;not null"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
