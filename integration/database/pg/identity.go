package pg

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/sessiontimeout/core/session"
)

// DefaultIdentityQuery looks a user up by id in a conventional users table.
// It must select id, email and name, in that order, for the single $1 argument.
const DefaultIdentityQuery = `SELECT id::text, COALESCE(email, ''), COALESCE(name, '') FROM users WHERE id::text = $1`

// IdentityResolver resolves session users from PostgreSQL.
type IdentityResolver struct {
	db    Querier
	query string
}

// IdentityOption configures an IdentityResolver.
type IdentityOption func(*IdentityResolver)

// WithIdentityQuery replaces DefaultIdentityQuery.
func WithIdentityQuery(query string) IdentityOption {
	return func(r *IdentityResolver) {
		if query != "" {
			r.query = query
		}
	}
}

// NewIdentityResolver creates a resolver reading through db.
func NewIdentityResolver(db Querier, opts ...IdentityOption) *IdentityResolver {
	r := &IdentityResolver{db: db, query: DefaultIdentityQuery}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve implements session.IdentityResolver.
func (r *IdentityResolver) Resolve(ctx context.Context, userID string) (session.Identity, error) {
	var id session.Identity
	err := querier(ctx, r.db).QueryRow(ctx, r.query, userID).Scan(&id.ID, &id.Email, &id.Name)
	if IsNotFoundError(err) {
		return session.Identity{}, fmt.Errorf("%w: %s", session.ErrIdentityNotFound, userID)
	}
	if err != nil {
		return session.Identity{}, fmt.Errorf("pg: resolve user %s: %w", userID, err)
	}
	return id, nil
}
