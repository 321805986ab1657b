package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/dmitrymomot/sessiontimeout/core/session"
)

const defaultIndex = "session-timeouts"

type timeoutDocument struct {
	SessionKey string            `json:"session_key"`
	UserID     string            `json:"user_id,omitempty"`
	Identity   *session.Identity `json:"identity,omitempty"`
	Reason     session.Reason    `json:"reason"`
	Session    map[string]any    `json:"session"`
	TimedOutAt time.Time         `json:"timed_out_at"`
}

// AuditIndexer indexes every timeout as a document. It implements session.Subscriber.
type AuditIndexer struct {
	transport opensearchapi.Transport
	index     string
	monthly   bool
	refresh   string
}

// AuditOption configures an AuditIndexer.
type AuditOption func(*AuditIndexer)

// WithIndex sets the index name, or the index prefix with WithMonthlyIndex.
func WithIndex(name string) AuditOption {
	return func(a *AuditIndexer) {
		if name != "" {
			a.index = name
		}
	}
}

// WithMonthlyIndex appends a "-YYYY.MM" suffix taken from the timeout time.
func WithMonthlyIndex(enabled bool) AuditOption {
	return func(a *AuditIndexer) { a.monthly = enabled }
}

// WithRefresh sets the refresh parameter of index requests ("true", "wait_for").
func WithRefresh(refresh string) AuditOption {
	return func(a *AuditIndexer) { a.refresh = refresh }
}

// NewAuditIndexer creates an indexer sending requests through transport,
// usually an *opensearch.Client.
func NewAuditIndexer(transport opensearchapi.Transport, opts ...AuditOption) *AuditIndexer {
	a := &AuditIndexer{transport: transport, index: defaultIndex}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OnTimeout implements session.Subscriber.
func (a *AuditIndexer) OnTimeout(ctx context.Context, t session.Timeout) error {
	doc := timeoutDocument{
		SessionKey: t.Key,
		UserID:     t.UserID,
		Identity:   t.Identity,
		Reason:     t.Reason,
		Session:    t.Session,
		TimedOutAt: t.At.UTC(),
	}
	if doc.Session == nil {
		doc.Session = map[string]any{}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Join(ErrIndexFailed, err)
	}

	res, err := opensearchapi.IndexRequest{
		Index:      a.indexFor(t.At),
		DocumentID: uuid.NewString(),
		Body:       bytes.NewReader(body),
		Refresh:    a.refresh,
	}.Do(ctx, a.transport)
	if err != nil {
		return errors.Join(ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return errors.Join(ErrIndexFailed, fmt.Errorf("status %s: %s", res.Status(), bytes.TrimSpace(msg)))
	}
	return nil
}

func (a *AuditIndexer) indexFor(at time.Time) string {
	if !a.monthly {
		return a.index
	}
	return a.index + "-" + at.UTC().Format("2006.01")
}
