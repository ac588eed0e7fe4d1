package rotation

import (
	"errors"
	"fmt"
	"time"

	"github.com/caroica/carousel/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrSessionNotFound is returned when no session matches the lookup.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidStatus is returned for a status value outside the
	// accepted set or a transition out of a completed session.
	ErrInvalidStatus = errors.New("invalid session status")
)

// CanTransition reports whether the normal rotation path permits moving
// a session from one status to the other: forward along
// upcoming → available → busy → completed, with upcoming sessions also
// claimable straight to busy. The matcher gates every claim on it.
// Administrative overrides are looser; see AdminUpdate.
func CanTransition(from, to string) bool {
	switch from {
	case models.StatusUpcoming:
		return to == models.StatusAvailable || to == models.StatusBusy
	case models.StatusAvailable:
		return to == models.StatusBusy
	case models.StatusBusy:
		return to == models.StatusCompleted
	}
	return false
}

// AdminUpdate applies an administrative status override to one session.
// Any of available/busy/completed may be set directly except that a
// completed session never moves backward. The update runs in a
// transaction with an exclusive lock on the session row.
func AdminUpdate(db *gorm.DB, eventID, sessionID uint, status string) (*models.Session, error) {
	if !models.ValidAdminStatus(status) {
		return nil, fmt.Errorf("rotation: status %q: %w", status, ErrInvalidStatus)
	}

	var updated models.Session

	err := db.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		result := forUpdate(tx).
			Where("id = ? AND event_id = ?", sessionID, eventID).
			Limit(1).Find(&session)
		if result.Error != nil {
			return fmt.Errorf("rotation: load session %d: %w", sessionID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("rotation: event %d session %d: %w", eventID, sessionID, ErrSessionNotFound)
		}

		if session.Status == models.StatusCompleted && status != models.StatusCompleted {
			return fmt.Errorf("rotation: session %d is completed: %w", sessionID, ErrInvalidStatus)
		}

		updates := map[string]interface{}{"status": status}
		if status == models.StatusCompleted && session.CompletedAt == nil {
			now := time.Now()
			updates["completed_at"] = now
			session.CompletedAt = &now
		}
		if err := tx.Model(&models.Session{}).Where("id = ?", session.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("rotation: update session %d: %w", sessionID, err)
		}

		session.Status = status
		updated = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListSessions returns all sessions of an event in rotation order.
func ListSessions(db *gorm.DB, eventID uint) ([]models.Session, error) {
	var sessions []models.Session
	if err := db.Where("event_id = ?", eventID).
		Order("id ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("rotation: list sessions for event %d: %w", eventID, err)
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("rotation: event %d has no sessions: %w", eventID, ErrSessionNotFound)
	}
	return sessions, nil
}
