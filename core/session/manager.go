package session

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"time"

	"github.com/dmitrymomot/sessiontimeout/core/logger"
)

// Report is the answer to status and keepalive queries.
// Durations are whole seconds; limits are nil when the tier is not configured.
type Report struct {
	Status       string `json:"status"`
	IdleTime     int    `json:"idleTime"`
	IdleLimit    *int   `json:"idleLimit"`
	TimeoutLimit *int   `json:"timeoutLimit"`
}

// Manager applies the timeout policy to sessions held in a Store.
// It keeps no per-session state and is safe for concurrent use.
type Manager struct {
	store    Store
	notifier *Notifier
	resolver IdentityResolver
	config   ConfigSource
	now      Clock
	logger   *slog.Logger
	exempt   []string
	sweeper  *Sweeper
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithConfigSource sets the source consulted on every operation.
func WithConfigSource(src ConfigSource) ManagerOption {
	return func(m *Manager) {
		if src != nil {
			m.config = src
		}
	}
}

// WithConfig uses a fixed configuration.
func WithConfig(opts ...Option) ManagerOption {
	return func(m *Manager) {
		m.config = StaticConfig(NewConfig(opts...))
	}
}

// WithClock overrides time.Now.
func WithClock(c Clock) ManagerOption {
	return func(m *Manager) {
		if c != nil {
			m.now = c
		}
	}
}

// WithNotifier sets the notifier informed about timed out sessions.
func WithNotifier(n *Notifier) ManagerOption {
	return func(m *Manager) { m.notifier = n }
}

// WithIdentityResolver sets the resolver used to look up session users.
func WithIdentityResolver(r IdentityResolver) ManagerOption {
	return func(m *Manager) { m.resolver = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithExemptPaths lists request paths (path.Match patterns) whose
// interactions must not count as activity.
func WithExemptPaths(patterns ...string) ManagerOption {
	return func(m *Manager) {
		m.exempt = append(m.exempt, patterns...)
	}
}

// NewManager creates a manager over store.
func NewManager(store Store, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	m := &Manager{
		store:  store,
		config: StaticConfig(DefaultConfig()),
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.notifier == nil {
		m.notifier = NewNotifier(WithNotifierLogger(m.logger))
	}

	sweeper, err := NewSweeper(store,
		WithSweepNotifier(m.notifier),
		WithSweepIdentityResolver(m.resolver),
		WithSweepConfig(m.config),
		WithSweepClock(m.now),
		WithSweepLogger(m.logger),
	)
	if err != nil {
		return nil, err
	}
	m.sweeper = sweeper

	return m, nil
}

// Notifier returns the notifier subscribers register with.
func (m *Manager) Notifier() *Notifier {
	return m.notifier
}

// Sweeper returns the sweeper used by Expire.
func (m *Manager) Sweeper() *Sweeper {
	return m.sweeper
}

// Exempt reports whether interactions on urlPath must not refresh the session.
func (m *Manager) Exempt(urlPath string) bool {
	for _, pattern := range m.exempt {
		if ok, _ := path.Match(pattern, urlPath); ok {
			return true
		}
	}
	return false
}

// Touch applies one interaction to the session stored under key.
// userID is the authenticated user making the request, or empty.
//
// Missing and empty sessions are skipped. An expired session is reported to
// subscribers and removed from the store; the outcome then has ForceLogout set
// and the caller must treat the request as logged out.
func (m *Manager) Touch(ctx context.Context, key, userID string) (Outcome, error) {
	rec, err := m.load(ctx, key)
	if err != nil {
		return Outcome{}, err
	}
	if rec.IsEmpty() {
		return Outcome{Status: StatusNew}, nil
	}

	now := m.now()
	out := Refresh(&rec, now, m.config(), userID)

	if stored, ok := rec.UserID(); ok && userID != "" && stored != userID {
		m.logger.WarnContext(ctx, "session user differs from request user, keeping the first",
			logger.Component("session"),
			logger.SessionKey(key),
			logger.UserID(stored),
			slog.String("request_user_id", userID))
	}

	if out.ForceLogout {
		return out, m.forceLogout(ctx, rec, now)
	}

	if out.Modified() {
		if err := m.store.Save(ctx, rec); err != nil {
			return out, errors.Join(ErrStoreAccess, err)
		}
	}
	return out, nil
}

// forceLogout notifies subscribers with the pre-clear snapshot and then
// clears the session. Both steps run even if the other fails.
func (m *Manager) forceLogout(ctx context.Context, rec Record, now time.Time) error {
	userID := userIDOf(rec)
	identity, err := resolveIdentity(ctx, m.resolver, rec)
	if err != nil {
		m.logger.WarnContext(ctx, "could not resolve session user",
			logger.Component("session"),
			logger.SessionKey(rec.Key),
			logger.UserID(userID),
			logger.Error(err))
	}

	if err := m.notifier.Notify(ctx, Timeout{
		Key:      rec.Key,
		UserID:   userID,
		Identity: identity,
		Session:  rec.Snapshot(),
		Reason:   ReasonInteraction,
		At:       now,
	}); err != nil {
		m.logger.WarnContext(ctx, "timeout notification incomplete",
			logger.Component("session"),
			logger.SessionKey(rec.Key),
			logger.Error(err))
	}

	rec.Clear()
	if _, err := m.store.Delete(ctx, rec.Key); err != nil {
		return errors.Join(ErrStoreAccess, err)
	}

	m.logger.InfoContext(ctx, "session timed out",
		logger.Component("session"),
		logger.SessionKey(rec.Key),
		logger.UserID(userID))
	return nil
}

// Status reports the current state of the session without refreshing it.
func (m *Manager) Status(ctx context.Context, key string) (Report, error) {
	rec, err := m.load(ctx, key)
	if err != nil {
		return Report{}, err
	}
	return m.report(rec, m.now(), m.config()), nil
}

// Keepalive applies an interaction like Touch and reports the resulting state.
// A session that had already expired is reported as TIMEOUT.
func (m *Manager) Keepalive(ctx context.Context, key, userID string) (Report, error) {
	out, err := m.Touch(ctx, key, userID)
	if err != nil {
		return Report{}, err
	}
	cfg := m.config()
	if out.ForceLogout {
		r := m.report(Record{Key: key}, m.now(), cfg)
		r.Status = StatusExpired.Label()
		return r, nil
	}
	return m.Status(ctx, key)
}

// Expire runs one sweep pass over the store.
func (m *Manager) Expire(ctx context.Context) (SweepResult, error) {
	return m.sweeper.Sweep(ctx)
}

func (m *Manager) load(ctx context.Context, key string) (Record, error) {
	rec, err := m.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return Record{Key: key}, nil
	}
	if err != nil {
		return Record{}, errors.Join(ErrStoreAccess, err)
	}
	return rec, nil
}

func (m *Manager) report(rec Record, now time.Time, cfg Config) Report {
	r := Report{
		Status:   Classify(rec, now, cfg).Label(),
		IdleTime: int(IdleTime(rec, now) / time.Second),
	}
	if cfg.Idle != nil {
		r.IdleLimit = seconds(*cfg.Idle)
	}
	if cfg.Overdue != nil {
		r.TimeoutLimit = seconds(*cfg.Overdue)
	} else {
		r.TimeoutLimit = seconds(cfg.ExpireLimit())
	}
	return r
}

func seconds(d time.Duration) *int {
	s := int(d / time.Second)
	return &s
}
