package session

import "time"

// Outcome describes what Refresh did to a record.
type Outcome struct {
	// Status is the status of the session before the interaction was applied.
	Status Status
	// Refreshed is true when the init timestamp was written.
	Refreshed bool
	// UserStamped is true when the user id was associated with the session.
	UserStamped bool
	// ForceLogout is true when the session has expired and must be cleared.
	ForceLogout bool
}

// Modified reports whether the record must be saved.
func (o Outcome) Modified() bool {
	return o.Refreshed || o.UserStamped
}

// Refresh applies one inbound interaction to rec.
//
// A non-empty userID is stored if the session has no user yet. An expired
// session is flagged for forced logout and left untouched otherwise. An
// unstamped session is stamped with now. With ExpireAfterLastActivity the stamp
// moves to now once more than RefreshGracePeriod has passed since the last write.
func Refresh(rec *Record, now time.Time, cfg Config, userID string) Outcome {
	var out Outcome
	out.UserStamped = rec.SetUserID(userID)
	out.Status = Classify(*rec, now, cfg)

	if out.Status == StatusExpired {
		out.ForceLogout = true
		return out
	}

	init, stamped := rec.InitTimestamp()
	switch {
	case !stamped:
		out.Refreshed = rec.SetInitTimestamp(now)
	case cfg.ExpireAfterLastActivity && now.Sub(init) > cfg.RefreshGracePeriod:
		out.Refreshed = rec.SetInitTimestamp(now)
	}
	return out
}
