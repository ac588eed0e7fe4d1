package rotation

import (
	"errors"
	"fmt"
	"time"

	"github.com/caroica/carousel/internal/models"
	"github.com/caroica/carousel/internal/roster"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrRoomNotFound is returned when the requesting participant has no
	// active room in the event.
	ErrRoomNotFound = errors.New("room not found")
	// ErrNoAvailableMatch is returned when every remaining counterpart
	// is currently busy. Clients treat it as "poll again later".
	ErrNoAvailableMatch = errors.New("no available users found for chat")
)

// forUpdate applies an exclusive row lock on dialects that support it.
// SQLite has no FOR UPDATE; there, transaction serialization alone
// guards the claim, just with lower concurrency.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// MatchOpts tunes a single next-match request.
type MatchOpts struct {
	// GlobalExclusion widens the busy-participant exclusion set to every
	// event instead of just the requester's. This mirrors the original
	// platform's behavior; see config rotation.exclusion_scope.
	GlobalExclusion bool
}

// Match is the outcome of a next-match request: who the requester talks
// to next and where.
type Match struct {
	SessionID   uint      `json:"session_id"`
	MatchToken  string    `json:"match_token"`
	Counterpart string    `json:"counterpart"`
	RoomID      string    `json:"room_id"`
	Group       string    `json:"group"`
	MatchedAt   time.Time `json:"matched_at"`
	// Rejoined is true when the requester was already in a busy session
	// and got the same counterpart back instead of a new claim.
	Rejoined bool `json:"rejoined"`
}

// NextMatch finds and atomically claims the requester's next pairing.
// Everything runs in one transaction with exclusive locks on the rows
// whose state the claim depends on: the requester's busy session if any,
// the candidate session rows, and the counterpart's room row. After the
// room lock is granted the busy state of both sides is re-read under
// it, so exclusion data that went stale while waiting on a contended
// lock never produces a double booking. If the requester is already
// busy the existing counterpart is returned unchanged with no writes,
// so polling is idempotent.
func NextMatch(db *gorm.DB, eventID uint, email string, opts MatchOpts) (*Match, error) {
	var match *Match

	err := db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("rotation: event %d: %w", eventID, roster.ErrEventNotFound)
			}
			return fmt.Errorf("rotation: load event %d: %w", eventID, err)
		}

		var requester models.Room
		result := tx.Where("event_id = ? AND email = ? AND active = ?", eventID, email, true).
			Limit(1).Find(&requester)
		if result.Error != nil {
			return fmt.Errorf("rotation: load room for %s: %w", email, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("rotation: event %d has no active room for %s: %w", eventID, email, ErrRoomNotFound)
		}

		// Already in a busy session: return the same counterpart.
		var existing models.Session
		result = forUpdate(tx).
			Where("event_id = ? AND status = ? AND (side_a_email = ? OR side_b_email = ?)",
				eventID, models.StatusBusy, email, email).
			Order("id ASC").Limit(1).Find(&existing)
		if result.Error != nil {
			return fmt.Errorf("rotation: check busy session for %s: %w", email, result.Error)
		}
		if result.RowsAffected > 0 {
			m, err := rejoinMatch(tx, &existing, email)
			if err != nil {
				return err
			}
			match = m
			return nil
		}

		excluded, err := busyParticipants(tx, eventID, opts)
		if err != nil {
			return err
		}

		var candidates []models.Session
		if err := forUpdate(tx).
			Where("event_id = ? AND status IN ? AND (side_a_email = ? OR side_b_email = ?)",
				eventID, []string{models.StatusUpcoming, models.StatusAvailable}, email, email).
			Order("id ASC").Find(&candidates).Error; err != nil {
			return fmt.Errorf("rotation: load candidates for %s: %w", email, err)
		}

		m, err := claimNext(tx, eventID, email, candidates, excluded, opts)
		if err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

// claimNext walks the candidate sessions in rotation order and claims
// the first one whose counterpart is free. excluded is a snapshot taken
// before any row lock was acquired; a racing claim can commit while
// this transaction waits on the counterpart's room lock, so the busy
// state of both sides is read again under that lock before the
// transition.
func claimNext(tx *gorm.DB, eventID uint, email string, candidates []models.Session, excluded map[string]bool, opts MatchOpts) (*Match, error) {
	for i := range candidates {
		if !CanTransition(candidates[i].Status, models.StatusBusy) {
			continue
		}
		other := counterpartEmail(&candidates[i], email)
		if excluded[other] {
			continue
		}

		// Lock the counterpart's room row to serialize against their
		// own simultaneous poll.
		var otherRoom models.Room
		res := forUpdate(tx).
			Where("event_id = ? AND email = ? AND active = ?", eventID, other, true).
			Limit(1).Find(&otherRoom)
		if res.Error != nil {
			return nil, fmt.Errorf("rotation: lock room for %s: %w", other, res.Error)
		}
		if res.RowsAffected == 0 {
			// Counterpart deactivated after scheduling; skip them.
			continue
		}

		conflicts, err := busyConflicts(tx, eventID, email, other, opts)
		if err != nil {
			return nil, err
		}
		if conflicts.requester != nil {
			// The requester's own racing poll already claimed a
			// session; hand that one back.
			return rejoinMatch(tx, conflicts.requester, email)
		}
		if conflicts.counterpartBusy {
			continue
		}

		now := time.Now()
		token := uuid.NewString()
		if err := tx.Model(&models.Session{}).Where("id = ?", candidates[i].ID).
			Updates(map[string]interface{}{
				"status":      models.StatusBusy,
				"matched_at":  now,
				"match_token": token,
			}).Error; err != nil {
			return nil, fmt.Errorf("rotation: claim session %d: %w", candidates[i].ID, err)
		}

		return &Match{
			SessionID:   candidates[i].ID,
			MatchToken:  token,
			Counterpart: other,
			RoomID:      otherRoom.RoomID,
			Group:       otherRoom.Group,
			MatchedAt:   now,
		}, nil
	}

	return nil, fmt.Errorf("rotation: event %d: no eligible counterpart for %s: %w", eventID, email, ErrNoAvailableMatch)
}

// busyConflict is the result of re-reading the busy state of a
// requester/counterpart pair under the counterpart's room lock.
type busyConflict struct {
	// requester is the requester's busy session in this event, if any.
	requester *models.Session
	// counterpartBusy is true when the counterpart is in any busy
	// session within the exclusion scope.
	counterpartBusy bool
}

// busyConflicts runs a locking read of the busy sessions involving
// either side of a prospective pairing. It sees rows committed by
// transactions whose locks this one had to wait on, which the earlier
// snapshot reads cannot.
func busyConflicts(tx *gorm.DB, eventID uint, email, other string, opts MatchOpts) (busyConflict, error) {
	pair := []string{email, other}
	q := forUpdate(tx).Where("status = ?", models.StatusBusy).
		Where("side_a_email IN ? OR side_b_email IN ?", pair, pair)
	if !opts.GlobalExclusion {
		q = q.Where("event_id = ?", eventID)
	}

	var sessions []models.Session
	if err := q.Order("id ASC").Find(&sessions).Error; err != nil {
		return busyConflict{}, fmt.Errorf("rotation: recheck busy participants for %s: %w", email, err)
	}

	var conflict busyConflict
	for i := range sessions {
		s := &sessions[i]
		if s.SideAEmail == other || s.SideBEmail == other {
			conflict.counterpartBusy = true
		}
		if (s.SideAEmail == email || s.SideBEmail == email) &&
			s.EventID == eventID && conflict.requester == nil {
			conflict.requester = s
		}
	}
	return conflict, nil
}

// rejoinMatch rebuilds the Match for a session the requester already
// holds. Read-only.
func rejoinMatch(tx *gorm.DB, session *models.Session, email string) (*Match, error) {
	other := counterpartEmail(session, email)

	var otherRoom models.Room
	result := tx.Where("event_id = ? AND email = ?", session.EventID, other).
		Limit(1).Find(&otherRoom)
	if result.Error != nil {
		return nil, fmt.Errorf("rotation: load room for %s: %w", other, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("rotation: event %d has no room for %s: %w", session.EventID, other, ErrRoomNotFound)
	}

	m := &Match{
		SessionID:   session.ID,
		MatchToken:  session.MatchToken,
		Counterpart: other,
		RoomID:      otherRoom.RoomID,
		Group:       otherRoom.Group,
		Rejoined:    true,
	}
	if session.MatchedAt != nil {
		m.MatchedAt = *session.MatchedAt
	}
	return m, nil
}

// busyParticipants returns the set of participant emails currently in a
// busy session: the exclusion set for new claims. Scope is global or
// per-event per opts.
func busyParticipants(tx *gorm.DB, eventID uint, opts MatchOpts) (map[string]bool, error) {
	type pair struct {
		SideAEmail string
		SideBEmail string
	}

	q := tx.Model(&models.Session{}).Where("status = ?", models.StatusBusy)
	if !opts.GlobalExclusion {
		q = q.Where("event_id = ?", eventID)
	}

	var pairs []pair
	if err := q.Select("side_a_email", "side_b_email").Find(&pairs).Error; err != nil {
		return nil, fmt.Errorf("rotation: load busy participants: %w", err)
	}

	excluded := make(map[string]bool, 2*len(pairs))
	for _, p := range pairs {
		excluded[p.SideAEmail] = true
		excluded[p.SideBEmail] = true
	}
	return excluded, nil
}

// counterpartEmail returns the session participant that is not email.
func counterpartEmail(session *models.Session, email string) string {
	if session.SideAEmail == email {
		return session.SideBEmail
	}
	return session.SideAEmail
}
