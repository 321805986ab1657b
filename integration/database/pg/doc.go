// Package pg connects to PostgreSQL and provides the session identity resolver
// and timeout audit log backed by it.
//
// Connect opens a pgxpool with retry and verification; Migrate applies the
// embedded goose migrations that create the session_timeouts table:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg); err != nil {
//		return err
//	}
//
//	manager, err := session.NewManager(store,
//		session.WithIdentityResolver(pg.NewIdentityResolver(pool)),
//	)
//	manager.Notifier().Subscribe(pg.NewAuditLog(pool))
//
// The resolver runs DefaultIdentityQuery against a users table unless
// WithIdentityQuery supplies another statement.
//
// Both the resolver and the audit log join a transaction attached to the
// context with WithTx:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx)
//
//	res, err := manager.Expire(pg.WithTx(ctx, tx))
//	if err != nil {
//		return err
//	}
//	return tx.Commit(ctx)
//
// Configuration is read from PG_* environment variables (see Config).
package pg
