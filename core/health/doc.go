// Package health verifies that the backends a sweep depends on are reachable.
//
// Checks follow the func(context.Context) error signature exposed by the
// integration packages:
//
//	err := health.Readiness(ctx, log,
//		health.Check{Name: "redis", Fn: redis.Healthcheck(client)},
//		health.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//	)
//
// All checks run concurrently and every failure is reported, wrapped with
// ErrNotReady and the name of the failing check.
package health
