// Package rotation implements the matchmaking engine for a live event:
// schedule generation, the locked next-match claim, and the session
// state machine. All coordination is pushed to the database's row-level
// locking; the package keeps no in-process pairing state.
package rotation

import (
	"fmt"

	"github.com/caroica/carousel/internal/models"
	"github.com/caroica/carousel/internal/roster"
	"gorm.io/gorm"
)

// GenerateSchedule builds the full cross-product pairing schedule for an
// event: one upcoming session per (group-A, group-B) combination,
// inserted in a single transaction. Ascending session IDs encode the
// rotation order (A-outer, B-inner). Re-invoking appends a disjoint
// batch; it performs no deduplication against a prior run.
func GenerateSchedule(db *gorm.DB, eventID uint) ([]models.Session, error) {
	var created []models.Session

	err := db.Transaction(func(tx *gorm.DB) error {
		r, err := roster.Resolve(tx, eventID)
		if err != nil {
			return err
		}

		sessions := make([]models.Session, 0, len(r.GroupA)*len(r.GroupB))
		for _, a := range r.GroupA {
			for _, b := range r.GroupB {
				sessions = append(sessions, models.Session{
					EventID:    eventID,
					SideAEmail: a.Email,
					SideBEmail: b.Email,
					Status:     models.StatusUpcoming,
				})
			}
		}

		if err := tx.Create(&sessions).Error; err != nil {
			return fmt.Errorf("rotation: insert %d sessions for event %d: %w", len(sessions), eventID, err)
		}
		created = sessions
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
