// Package notify delivers organizer-facing ops alerts (stale-session
// sweeps, schedule generation) through a pluggable backend.
package notify

import (
	"fmt"

	"github.com/caroica/carousel/internal/config"
)

// Notifier posts a short alert to the organizer channel. Best-effort:
// callers log failures and move on.
type Notifier interface {
	Post(text string) error
}

// FromConfig builds the configured Notifier. Backend "none" returns nil,
// which every call site treats as "alerts disabled".
func FromConfig(cfg config.NotifyConfig) (Notifier, error) {
	switch cfg.Backend {
	case "none", "":
		return nil, nil
	case "slack":
		return NewSlack(cfg.Token, cfg.Channel), nil
	case "discord":
		return NewDiscord(cfg.Token, cfg.Channel)
	default:
		return nil, fmt.Errorf("notify: backend %q is not supported", cfg.Backend)
	}
}
