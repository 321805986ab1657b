package pg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessiontimeout/core/session"
)

const insertTimeoutQuery = `INSERT INTO session_timeouts (id, session_key, user_id, reason, session, timed_out_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)`

// AuditLog records every timeout in the session_timeouts table created by Migrate.
// It implements session.Subscriber.
type AuditLog struct {
	db Querier
}

// NewAuditLog creates an audit subscriber writing through db.
func NewAuditLog(db Querier) *AuditLog {
	return &AuditLog{db: db}
}

// OnTimeout implements session.Subscriber.
func (a *AuditLog) OnTimeout(ctx context.Context, t session.Timeout) error {
	snapshot := t.Session
	if snapshot == nil {
		snapshot = map[string]any{}
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("pg: encode session %s: %w", t.Key, err)
	}

	if _, err := querier(ctx, a.db).Exec(ctx, insertTimeoutQuery,
		uuid.New(), t.Key, t.UserID, string(t.Reason), raw, t.At,
	); err != nil {
		return fmt.Errorf("pg: record timeout of %s: %w", t.Key, err)
	}
	return nil
}
