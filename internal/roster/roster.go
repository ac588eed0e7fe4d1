// Package roster resolves the confirmed participant list of an event,
// partitioned by rotation group.
package roster

import (
	"errors"
	"fmt"

	"github.com/caroica/carousel/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrEventNotFound is returned when the event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrInsufficientParticipants is returned when one or both rotation
	// groups have no active participants, so no rotation can run.
	ErrInsufficientParticipants = errors.New("insufficient participants")
)

// Roster is the active participant-room list of an event, split by
// rotation group.
type Roster struct {
	Event  models.Event
	GroupA []models.Room
	GroupB []models.Room
}

// Resolve loads the active rooms of an event and partitions them into the
// two rotation groups. Rooms come back in insertion order so schedule
// generation is deterministic.
func Resolve(db *gorm.DB, eventID uint) (*Roster, error) {
	var event models.Event
	if err := db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("roster: event %d: %w", eventID, ErrEventNotFound)
		}
		return nil, fmt.Errorf("roster: load event %d: %w", eventID, err)
	}

	var rooms []models.Room
	if err := db.Where("event_id = ? AND active = ?", eventID, true).
		Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("roster: load rooms for event %d: %w", eventID, err)
	}

	r := &Roster{Event: event}
	for _, room := range rooms {
		switch room.Group {
		case models.GroupA:
			r.GroupA = append(r.GroupA, room)
		case models.GroupB:
			r.GroupB = append(r.GroupB, room)
		}
	}

	if len(r.GroupA) == 0 || len(r.GroupB) == 0 {
		return nil, fmt.Errorf("roster: event %d has %d/%d active participants: %w",
			eventID, len(r.GroupA), len(r.GroupB), ErrInsufficientParticipants)
	}
	return r, nil
}
