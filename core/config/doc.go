// Package config provides type-safe environment variable loading using Go
// generics and the caarlos0/env library. A .env file in the working directory
// is loaded on first use.
//
// Basic usage:
//
//	type RedisConfig struct {
//		URL string `env:"REDIS_URL,required"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// # Caching Behavior
//
// Load caches the parsed value per type, so every later Load of the same type
// returns the first result. Parse skips the cache and re-reads the environment
// each time, which suits settings that are allowed to change at runtime, such
// as session thresholds.
package config
