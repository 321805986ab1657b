package session

import (
	"context"
	"iter"
)

// Store is the minimal session store capability this package needs.
// Implementations must provide read-modify-write consistency per key and be
// safe for concurrent use. Records passed in and out are copies.
type Store interface {
	// Get returns the record stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (Record, error)
	// Save creates or replaces the record.
	Save(ctx context.Context, rec Record) error
	// Delete removes the record. Deleting a missing key is not an error;
	// removed reports whether this call actually removed it.
	Delete(ctx context.Context, key string) (removed bool, err error)
	// All yields every stored record in no particular order. Errors wrapping
	// ErrRecordUnreadable concern one record and iteration continues; any
	// other error ends it.
	All(ctx context.Context) iter.Seq2[Record, error]
}
