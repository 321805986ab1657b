package session

import (
	"fmt"
	"strings"
	"time"
)

// Status describes where a session is with respect to expiring due to inactivity.
// Values are ordered by severity and compare as integers.
type Status uint8

const (
	// StatusNew is a session with no recorded activity yet.
	StatusNew Status = iota
	// StatusActive is a session with recent activity.
	StatusActive
	// StatusIdle is a session idle long enough to ask the user whether they are still there.
	StatusIdle
	// StatusOverdue is a session whose user should be logged out at the next opportunity.
	StatusOverdue
	// StatusExpired is a session that must be treated as invalid and removed.
	StatusExpired
)

var statusNames = [...]string{
	StatusNew:     "new",
	StatusActive:  "active",
	StatusIdle:    "idle",
	StatusOverdue: "overdue",
	StatusExpired: "expired",
}

// String returns the lower-case name of the status.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Label returns the name used by status and keepalive responses.
// Expired sessions are reported as TIMEOUT.
func (s Status) Label() string {
	if s == StatusExpired {
		return "TIMEOUT"
	}
	return strings.ToUpper(s.String())
}

// AtLeast reports whether s is as severe as other or more.
func (s Status) AtLeast(other Status) bool {
	return s >= other
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid session status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStatus parses a status name or response label, case-insensitively.
func ParseStatus(name string) (Status, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "timeout" {
		return StatusExpired, nil
	}
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return StatusNew, fmt.Errorf("unknown session status %q", name)
}

// Classify computes the status of rec at now. It is deterministic and has no side effects.
//
// Sessions that were never stamped fall back to the store's native expiry.
// All threshold comparisons are strict: an elapsed time equal to a threshold
// does not cross it.
func Classify(rec Record, now time.Time, cfg Config) Status {
	init, ok := rec.InitTimestamp()
	if !ok {
		if nativeExpired(rec, now) {
			return StatusExpired
		}
		return StatusNew
	}

	elapsed := now.Sub(init)
	switch {
	case elapsed > cfg.ExpireLimit():
		return StatusExpired
	case cfg.Overdue != nil && elapsed > *cfg.Overdue:
		return StatusOverdue
	case cfg.Idle != nil && elapsed > *cfg.Idle:
		return StatusIdle
	default:
		return StatusActive
	}
}

// IsExpired reports whether Classify would return StatusExpired, without
// evaluating the idle and overdue tiers.
func IsExpired(rec Record, now time.Time, cfg Config) bool {
	init, ok := rec.InitTimestamp()
	if !ok {
		return nativeExpired(rec, now)
	}
	return now.Sub(init) > cfg.ExpireLimit()
}

// IdleTime returns the time elapsed since the init timestamp.
// Unstamped sessions and timestamps in the future yield zero.
func IdleTime(rec Record, now time.Time) time.Duration {
	init, ok := rec.InitTimestamp()
	if !ok {
		return 0
	}
	if d := now.Sub(init); d > 0 {
		return d
	}
	return 0
}

func nativeExpired(rec Record, now time.Time) bool {
	return !rec.ExpiresAt.IsZero() && rec.ExpiresAt.Before(now)
}
