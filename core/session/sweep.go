package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessiontimeout/core/logger"
)

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	Scanned  int // records examined
	Expired  int // records classified as expired
	Removed  int // records deleted by this pass
	Notified int // timeouts delivered to the notifier
	// Warnings holds non-fatal problems, such as user ids that could not be resolved.
	Warnings []error
}

// Sweeper removes expired sessions from a store and notifies subscribers once per removal.
//
// A record is deleted before its subscribers are called, so a subscriber that
// looks the session up in the store finds it gone. Everything a subscriber
// needs is carried in the Timeout it receives.
type Sweeper struct {
	store    Store
	notifier *Notifier
	resolver IdentityResolver
	config   ConfigSource
	now      Clock
	logger   *slog.Logger
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepNotifier sets the notifier informed about removed sessions.
func WithSweepNotifier(n *Notifier) SweeperOption {
	return func(s *Sweeper) { s.notifier = n }
}

// WithSweepIdentityResolver sets the resolver used to look up session users.
func WithSweepIdentityResolver(r IdentityResolver) SweeperOption {
	return func(s *Sweeper) { s.resolver = r }
}

// WithSweepConfig sets the configuration source.
func WithSweepConfig(src ConfigSource) SweeperOption {
	return func(s *Sweeper) {
		if src != nil {
			s.config = src
		}
	}
}

// WithSweepClock sets the clock.
func WithSweepClock(c Clock) SweeperOption {
	return func(s *Sweeper) {
		if c != nil {
			s.now = c
		}
	}
}

// WithSweepLogger sets the logger.
func WithSweepLogger(l *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSweeper creates a sweeper over store.
func NewSweeper(store Store, opts ...SweeperOption) (*Sweeper, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	s := &Sweeper{
		store:  store,
		config: StaticConfig(DefaultConfig()),
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = NewNotifier(WithNotifierLogger(s.logger))
	}
	return s, nil
}

// Notifier returns the notifier the sweeper reports removals to.
func (s *Sweeper) Notifier() *Notifier {
	return s.notifier
}

// Sweep walks every stored session once and removes the expired ones.
//
// Each record is handled independently: a failure on one record is
// collected and the sweep moves on. Cancelling ctx stops the walk between
// records; everything processed so far stays processed. Subscribers run after
// the record has been deleted. The returned error
// joins store failures and is nil when every record was handled.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var (
		res  SweepResult
		errs []error
	)

	cfg := s.config()
	now := s.now()
	start := time.Now()
	log := s.logger.With(
		logger.Component("session"),
		logger.ID("sweep_id", uuid.New()),
		slog.Bool("dry_run", cfg.DryRun))

	for rec, err := range s.store.All(ctx) {
		if errors.Is(err, ErrRecordUnreadable) {
			res.Scanned++
			errs = append(errs, err)
			log.WarnContext(ctx, "skipping unreadable session", logger.Error(err))
			continue
		}
		if err != nil {
			errs = append(errs, errors.Join(ErrStoreAccess, err))
			break
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res.Scanned++
		if !IsExpired(rec, now, cfg) {
			log.DebugContext(ctx, "keeping session",
				logger.SessionKey(rec.Key),
				logger.UserID(userIDOf(rec)))
			continue
		}
		res.Expired++

		if cfg.DryRun {
			log.InfoContext(ctx, "expired session left in place",
				logger.SessionKey(rec.Key),
				logger.UserID(userIDOf(rec)))
			continue
		}

		if err := s.expire(ctx, log, rec, now, &res); err != nil {
			errs = append(errs, err)
		}
	}

	log.InfoContext(ctx, "session sweep finished",
		logger.Count("scanned", res.Scanned),
		logger.Count("expired", res.Expired),
		logger.Count("removed", res.Removed),
		logger.Elapsed(start))

	return res, errors.Join(errs...)
}

// expire deletes rec and notifies subscribers. Both steps are attempted even
// if the other fails. When a concurrent sweep already removed the record no
// notification is sent, so every expiry is reported once.
func (s *Sweeper) expire(ctx context.Context, log *slog.Logger, rec Record, now time.Time, res *SweepResult) error {
	snapshot := rec.Snapshot()
	userID := userIDOf(rec)

	identity, err := resolveIdentity(ctx, s.resolver, rec)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Errorf("session %s: resolve user %q: %w", rec.Key, userID, err))
		log.WarnContext(ctx, "could not resolve session user",
			logger.SessionKey(rec.Key),
			logger.UserID(userID),
			logger.Error(err))
	}

	removed, delErr := s.store.Delete(ctx, rec.Key)
	if delErr != nil {
		delErr = fmt.Errorf("%w: delete session %s: %w", ErrStoreAccess, rec.Key, delErr)
		log.ErrorContext(ctx, "failed to delete expired session",
			logger.SessionKey(rec.Key),
			logger.Error(delErr))
	}
	if removed {
		res.Removed++
		log.InfoContext(ctx, "removed expired session",
			logger.SessionKey(rec.Key),
			logger.UserID(userID))
	}
	if !removed && delErr == nil {
		return nil
	}

	if err := s.notifier.Notify(ctx, Timeout{
		Key:      rec.Key,
		UserID:   userID,
		Identity: identity,
		Session:  snapshot,
		Reason:   ReasonSweep,
		At:       now,
	}); err != nil {
		res.Warnings = append(res.Warnings, err)
	}
	res.Notified++

	return delErr
}

func userIDOf(rec Record) string {
	id, _ := rec.UserID()
	return id
}
