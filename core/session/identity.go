package session

import "context"

// Identity is the user a session belongs to, as resolved from its user id.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// IdentityResolver looks up the user behind a session's user id.
// Implementations return ErrIdentityNotFound for unknown ids.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) (Identity, error)
}

// IdentityResolverFunc adapts a function to IdentityResolver.
type IdentityResolverFunc func(ctx context.Context, userID string) (Identity, error)

func (f IdentityResolverFunc) Resolve(ctx context.Context, userID string) (Identity, error) {
	return f(ctx, userID)
}

// resolveIdentity returns nil when the record has no user or the lookup fails.
// Without a resolver the identity carries the user id only.
func resolveIdentity(ctx context.Context, resolver IdentityResolver, rec Record) (*Identity, error) {
	userID, ok := rec.UserID()
	if !ok {
		return nil, nil
	}
	if resolver == nil {
		return &Identity{ID: userID}, nil
	}
	id, err := resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
