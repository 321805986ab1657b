// Package redis connects to Redis and exposes sessions stored there as a session.Store.
//
// Connect parses the URL, retries until the server answers PING and returns a
// ready client. Healthcheck wraps PING for readiness checks.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := redis.NewStore(client, redis.WithKeyPrefix("session:"))
//	manager, err := session.NewManager(store)
//
// Each session is a string key holding the JSON-encoded value bag. The key's
// TTL is the store's native expiry and is reported as Record.ExpiresAt. All
// enumerates sessions with SCAN, so the sweep never blocks the server.
//
// Configuration is read from the environment:
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//		ScanBatchSize  int           `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000"`
//		KeyPrefix      string        `env:"REDIS_SESSION_PREFIX" envDefault:"session:"`
//	}
//
// Errors: ErrEmptyConnectionURL, ErrFailedToParseRedisConnString, ErrRedisNotReady,
// ErrHealthcheckFailed and ErrCorruptSession can be checked with errors.Is.
package redis
