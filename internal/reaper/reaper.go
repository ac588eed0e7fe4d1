// Package reaper completes busy sessions whose slot has run out, so a
// crashed or silent client cannot block its counterpart for the rest of
// the event.
package reaper

import (
	"fmt"
	"time"

	"github.com/caroica/carousel/internal/models"
	"gorm.io/gorm"
)

// DefaultSlot is used when neither the event nor the configuration
// supplies a slot length.
const DefaultSlot = 5 * time.Minute

// Sweep completes every busy session whose matched_at is older than its
// event's slot length (or defaultSlot when the event has none). Returns
// the number of sessions completed.
func Sweep(db *gorm.DB, defaultSlot time.Duration) (int, error) {
	if defaultSlot <= 0 {
		defaultSlot = DefaultSlot
	}

	var swept int

	err := db.Transaction(func(tx *gorm.DB) error {
		var events []models.Event
		if err := tx.Find(&events).Error; err != nil {
			return fmt.Errorf("reaper: load events: %w", err)
		}

		now := time.Now()
		for _, event := range events {
			slot := defaultSlot
			if event.SlotMinutes > 0 {
				slot = time.Duration(event.SlotMinutes) * time.Minute
			}
			cutoff := now.Add(-slot)

			result := tx.Model(&models.Session{}).
				Where("event_id = ? AND status = ? AND matched_at IS NOT NULL AND matched_at < ?",
					event.ID, models.StatusBusy, cutoff).
				Updates(map[string]interface{}{
					"status":       models.StatusCompleted,
					"completed_at": now,
				})
			if result.Error != nil {
				return fmt.Errorf("reaper: sweep event %d: %w", event.ID, result.Error)
			}
			swept += int(result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return swept, nil
}
