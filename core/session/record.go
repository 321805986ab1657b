package session

import (
	"encoding/json"
	"maps"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Well-known keys inside a session's value bag.
const (
	// InitTimestampKey holds the moment the idle clock was last reset,
	// as epoch seconds with fractional precision.
	InitTimestampKey = "_session_init_timestamp_"
	// UserKey holds the id of the user the session belongs to.
	UserKey = "_session_user_"
)

// Record is a stored session: an opaque key-value bag plus the store's own expiry.
type Record struct {
	Key       string
	Values    map[string]any
	ExpiresAt time.Time // native store expiry, consulted only for unstamped sessions
}

// NewKey generates a random session key.
func NewKey() string {
	return uuid.NewString()
}

// NewRecord creates an empty record with a generated key.
func NewRecord(ttl time.Duration, now time.Time) Record {
	return Record{
		Key:       NewKey(),
		Values:    make(map[string]any),
		ExpiresAt: now.Add(ttl),
	}
}

// Get returns the value stored under key, or def when absent.
func (r Record) Get(key string, def any) any {
	if v, ok := r.Values[key]; ok {
		return v
	}
	return def
}

// Set stores value under key.
func (r *Record) Set(key string, value any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	r.Values[key] = value
}

// Clear removes every value from the bag.
func (r *Record) Clear() {
	clear(r.Values)
}

// IsEmpty reports whether the bag holds no values.
func (r Record) IsEmpty() bool {
	return len(r.Values) == 0
}

// InitTimestamp returns the init timestamp, if the session has one.
func (r Record) InitTimestamp() (time.Time, bool) {
	secs, ok := toEpochSeconds(r.Values[InitTimestampKey])
	if !ok {
		return time.Time{}, false
	}
	return fromEpochSeconds(secs), true
}

// SetInitTimestamp stamps the init timestamp with t truncated to microseconds,
// the precision that survives the float epoch encoding. The stamp never moves
// backwards: it returns false and leaves the record untouched when t is not
// after the current stamp.
func (r *Record) SetInitTimestamp(t time.Time) bool {
	t = t.Truncate(time.Microsecond)
	if cur, ok := r.InitTimestamp(); ok && !t.After(cur) {
		return false
	}
	r.Set(InitTimestampKey, toEpochSeconds64(t))
	return true
}

// UserID returns the id of the user associated with the session.
func (r Record) UserID() (string, bool) {
	switch v := r.Values[UserKey].(type) {
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uuid.UUID:
		return v.String(), v != uuid.Nil
	default:
		return "", false
	}
}

// SetUserID associates the session with a user. The first id wins: it returns
// false without writing when an id is already present or id is empty.
func (r *Record) SetUserID(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := r.UserID(); ok {
		return false
	}
	r.Set(UserKey, id)
	return true
}

// Snapshot returns a copy of the value bag that later mutations of r do not affect.
func (r Record) Snapshot() map[string]any {
	if r.Values == nil {
		return map[string]any{}
	}
	return maps.Clone(r.Values)
}

// Clone returns a copy of r with its own value bag.
func (r Record) Clone() Record {
	r.Values = r.Snapshot()
	return r
}

func toEpochSeconds64(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}

// fromEpochSeconds rounds to whole microseconds so stamps written by
// SetInitTimestamp read back exactly.
func fromEpochSeconds(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	micros := int64(math.Round(frac * float64(time.Second/time.Microsecond)))
	return time.Unix(int64(whole), micros*int64(time.Microsecond))
}

func toEpochSeconds(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}
