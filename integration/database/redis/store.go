package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessiontimeout/core/session"
)

const (
	defaultKeyPrefix     = "session:"
	defaultScanBatchSize = 1000
)

// Store is a session.Store over Redis string keys.
type Store struct {
	client    redis.UniversalClient
	prefix    string
	batchSize int64
	now       func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeyPrefix sets the prefix prepended to session keys.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) { s.prefix = prefix }
}

// WithScanBatchSize sets the COUNT hint used when enumerating sessions.
func WithScanBatchSize(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = int64(n)
		}
	}
}

// WithStoreConfig applies the store related fields of cfg.
func WithStoreConfig(cfg Config) StoreOption {
	return func(s *Store) {
		if cfg.KeyPrefix != "" {
			s.prefix = cfg.KeyPrefix
		}
		if cfg.ScanBatchSize > 0 {
			s.batchSize = int64(cfg.ScanBatchSize)
		}
	}
}

// NewStore creates a store over client.
func NewStore(client redis.UniversalClient, opts ...StoreOption) *Store {
	s := &Store{
		client:    client,
		prefix:    defaultKeyPrefix,
		batchSize: defaultScanBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) (session.Record, error) {
	return s.get(ctx, s.prefix+key)
}

func (s *Store) get(ctx context.Context, redisKey string) (session.Record, error) {
	var (
		getCmd *redis.StringCmd
		ttlCmd *redis.DurationCmd
	)
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		getCmd = pipe.Get(ctx, redisKey)
		ttlCmd = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return session.Record{}, fmt.Errorf("redis get %s: %w", redisKey, err)
	}

	raw, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Record{}, session.ErrNotFound
	}
	if err != nil {
		return session.Record{}, fmt.Errorf("redis get %s: %w", redisKey, err)
	}

	values, err := decodeValues(raw)
	if err != nil {
		return session.Record{}, fmt.Errorf("%w: %w: %s: %w", session.ErrRecordUnreadable, ErrCorruptSession, redisKey, err)
	}

	rec := session.Record{
		Key:    strings.TrimPrefix(redisKey, s.prefix),
		Values: values,
	}
	if ttl := ttlCmd.Val(); ttl > 0 {
		rec.ExpiresAt = s.now().Add(ttl)
	}
	return rec, nil
}

// Save writes the value bag. A future ExpiresAt becomes the key's TTL;
// otherwise the existing TTL is kept.
func (s *Store) Save(ctx context.Context, rec session.Record) error {
	raw, err := encodeValues(rec.Values)
	if err != nil {
		return err
	}

	var ttl time.Duration = redis.KeepTTL
	if !rec.ExpiresAt.IsZero() {
		if d := rec.ExpiresAt.Sub(s.now()); d > 0 {
			ttl = d
		}
	}

	if err := s.client.Set(ctx, s.prefix+rec.Key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.prefix+rec.Key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del %s: %w", s.prefix+key, err)
	}
	return n > 0, nil
}

// All walks the key space with SCAN. Keys that vanish between SCAN and GET
// are skipped. Undecodable sessions are yielded as errors wrapping
// session.ErrRecordUnreadable and the walk goes on.
func (s *Store) All(ctx context.Context) iter.Seq2[session.Record, error] {
	return func(yield func(session.Record, error) bool) {
		var cursor uint64
		for {
			keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", s.batchSize).Result()
			if err != nil {
				yield(session.Record{}, fmt.Errorf("redis scan: %w", err))
				return
			}

			for _, k := range keys {
				rec, err := s.get(ctx, k)
				if errors.Is(err, session.ErrNotFound) {
					continue
				}
				if !yield(rec, err) {
					return
				}
			}

			cursor = next
			if cursor == 0 {
				return
			}
		}
	}
}

func encodeValues(values map[string]any) ([]byte, error) {
	if values == nil {
		values = map[string]any{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return raw, nil
}

// decodeValues keeps numbers as json.Number so epoch stamps keep their precision.
func decodeValues(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	values := make(map[string]any)
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}
