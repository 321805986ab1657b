// Package session decides, from timestamps alone, where a stored session is in
// its lifecycle and removes the ones that have timed out.
//
// The package works on top of any key-value session store. It needs two
// well-known keys in each session's value bag: the init timestamp, reset on
// activity, and the id of the user the session belongs to.
//
// # Statuses
//
// Sessions move through five ordered statuses:
//
//   - StatusNew: no activity recorded yet
//   - StatusActive: recent activity
//   - StatusIdle: inactive longer than Config.Idle
//   - StatusOverdue: inactive longer than Config.Overdue
//   - StatusExpired: inactive longer than Config.Expire
//
// Idle and overdue tiers are optional. Without them sessions are reported as
// ACTIVE until they expire. Sessions that were never stamped are NEW unless
// the store's own expiry has passed.
//
//	cfg := session.NewConfig(
//		session.WithExpire(25*time.Minute),
//		session.WithIdle(10*time.Minute),
//		session.WithOverdue(20*time.Minute),
//	)
//	status := session.Classify(rec, time.Now(), cfg)
//
// # Manager
//
// Manager binds the policy to a Store:
//
//	manager, err := session.NewManager(store,
//		session.WithConfigSource(session.EnvConfig(log)),
//		session.WithIdentityResolver(users),
//		session.WithLogger(log),
//	)
//
//	// On every request that counts as activity:
//	out, err := manager.Touch(ctx, sessionKey, userID)
//	if out.ForceLogout {
//		// redirect to login
//	}
//
//	// Status endpoint, never refreshes:
//	report, err := manager.Status(ctx, sessionKey)
//
//	// Periodic cleanup:
//	res, err := manager.Expire(ctx)
//
// # Notifications
//
// Subscribers registered with the Notifier are told once per timed out
// session, both when an interaction finds a session expired and when a sweep
// removes it. Delivery is synchronous; a failing subscriber is logged and
// does not affect the others.
//
//	manager.Notifier().SubscribeFunc(func(ctx context.Context, t session.Timeout) error {
//		audit.Record(t.UserID, t.Reason)
//		return nil
//	})
//
// # Configuration
//
// Configuration is read through a ConfigSource on every operation, so
// thresholds can change without restarting. EnvConfig reads:
//
//	SESSION_EXPIRE                      absolute lifetime (default 336h)
//	SESSION_IDLE                        idle tier (unset = disabled)
//	SESSION_OVERDUE                     overdue tier (unset = disabled)
//	SESSION_EXPIRE_AFTER_LAST_ACTIVITY  sliding expiration (default false)
//	SESSION_REFRESH_GRACE_PERIOD        min time between refresh writes (default 1s)
//	SESSION_SWEEP_DRY_RUN               report expired sessions without removing them
package session
