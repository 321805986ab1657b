package session

import "errors"

var (
	// ErrNotFound is returned when a session cannot be found in the store.
	ErrNotFound = errors.New("session not found")
	// ErrStoreClosed is returned by stores that have been closed.
	ErrStoreClosed = errors.New("session store closed")
	// ErrStoreAccess wraps failures reported by the underlying store.
	// Callers such as schedulers use it to decide on retries.
	ErrStoreAccess = errors.New("session store access failed")
	// ErrRecordUnreadable marks a store error that concerns a single record,
	// such as a payload that cannot be decoded. Iteration continues past it.
	ErrRecordUnreadable = errors.New("stored session cannot be read")
	// ErrNilStore is returned when a manager or sweeper is built without a store.
	ErrNilStore = errors.New("session store is required")
	// ErrIdentityNotFound is returned by identity resolvers for unknown user ids.
	ErrIdentityNotFound = errors.New("user identity not found")
	// ErrSubscriberFailed wraps a failure of a single timeout subscriber.
	ErrSubscriberFailed = errors.New("timeout subscriber failed")
	// ErrWorkerStarted is returned when starting a sweep worker twice.
	ErrWorkerStarted = errors.New("sweep worker already started")
	// ErrWorkerNotStarted is returned when stopping a sweep worker that is not running.
	ErrWorkerNotStarted = errors.New("sweep worker not started")
)
