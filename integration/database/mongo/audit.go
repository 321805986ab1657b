package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/sessiontimeout/core/session"
)

// Inserter is the part of *mongo.Collection used by AuditLog.
type Inserter interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
}

type timeoutDocument struct {
	SessionKey string         `bson:"session_key"`
	UserID     string         `bson:"user_id,omitempty"`
	Email      string         `bson:"email,omitempty"`
	Reason     string         `bson:"reason"`
	Session    map[string]any `bson:"session"`
	TimedOutAt time.Time      `bson:"timed_out_at"`
}

// AuditLog stores every timeout as a document. It implements session.Subscriber.
type AuditLog struct {
	coll Inserter
}

// NewAuditLog creates an audit subscriber writing to coll.
func NewAuditLog(coll Inserter) *AuditLog {
	return &AuditLog{coll: coll}
}

// OnTimeout implements session.Subscriber.
func (a *AuditLog) OnTimeout(ctx context.Context, t session.Timeout) error {
	doc := timeoutDocument{
		SessionKey: t.Key,
		UserID:     t.UserID,
		Reason:     string(t.Reason),
		Session:    t.Session,
		TimedOutAt: t.At.UTC(),
	}
	if doc.Session == nil {
		doc.Session = map[string]any{}
	}
	if t.Identity != nil {
		doc.Email = t.Identity.Email
	}

	if _, err := a.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: record timeout of %s: %w", t.Key, err)
	}
	return nil
}
