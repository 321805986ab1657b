package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParse is returned when environment variables cannot be parsed into a config struct.
var ErrParse = errors.New("failed to parse config")

var (
	dotenvOnce sync.Once

	cacheMu sync.RWMutex
	cache   = make(map[reflect.Type]any)
)

// loadDotEnv loads .env from the working directory once per process.
// A missing file is not an error; variables already set take precedence.
func loadDotEnv() {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Load parses environment variables into cfg. The result is cached per type:
// later calls with the same type copy the cached value without re-reading the environment.
func Load[T any](cfg *T) error {
	t := reflect.TypeFor[T]()

	cacheMu.RLock()
	cached, ok := cache[t]
	cacheMu.RUnlock()
	if ok {
		*cfg = cached.(T)
		return nil
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cached, ok := cache[t]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := Parse(cfg); err != nil {
		return err
	}
	cache[t] = *cfg
	return nil
}

// MustLoad is like Load but panics on failure. Useful during startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Parse reads environment variables into cfg on every call, bypassing the cache.
// Use it for settings that may change while the process runs.
func Parse(cfg any) error {
	loadDotEnv()
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return nil
}

// reset clears the cache. Tests only.
func reset() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	clear(cache)
}
