package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/sessiontimeout/core/session"
)

// Finder is the part of *mongo.Collection used to look users up.
type Finder interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
}

type userDocument struct {
	ID    any    `bson:"_id"`
	Email string `bson:"email"`
	Name  string `bson:"name"`
}

// IdentityResolver resolves session users from a users collection.
// Ids that are valid ObjectID hex strings match either form of _id.
type IdentityResolver struct {
	users Finder
}

// NewIdentityResolver creates a resolver reading from users.
func NewIdentityResolver(users Finder) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve implements session.IdentityResolver.
func (r *IdentityResolver) Resolve(ctx context.Context, userID string) (session.Identity, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, userFilter(userID),
		options.FindOne().SetProjection(bson.D{{Key: "email", Value: 1}, {Key: "name", Value: 1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return session.Identity{}, fmt.Errorf("%w: %s", session.ErrIdentityNotFound, userID)
	}
	if err != nil {
		return session.Identity{}, fmt.Errorf("mongo: resolve user %s: %w", userID, err)
	}

	return session.Identity{
		ID:    idString(doc.ID, userID),
		Email: doc.Email,
		Name:  doc.Name,
	}, nil
}

func userFilter(userID string) bson.D {
	if oid, err := bson.ObjectIDFromHex(userID); err == nil {
		return bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{oid, userID}}}}}
	}
	return bson.D{{Key: "_id", Value: userID}}
}

func idString(id any, fallback string) string {
	switch v := id.(type) {
	case bson.ObjectID:
		return v.Hex()
	case string:
		return v
	case nil:
		return fallback
	default:
		return fmt.Sprint(v)
	}
}
