// Command expiresessions removes timed out sessions from Redis and notifies
// the configured subscribers about each of them.
//
// It runs a single sweep and exits, or keeps sweeping on an interval:
//
//	expiresessions               # one sweep, non-zero exit on failure
//	expiresessions -interval 5m  # sweep every five minutes until SIGINT/SIGTERM
//	expiresessions -dry-run      # report what would expire, change nothing
//	expiresessions -check        # verify every configured backend is reachable
//
// Settings come from the environment (and a .env file): SESSION_* thresholds,
// REDIS_*, IDENTITY_BACKEND, AUDIT_BACKENDS, EMAIL_PROVIDER and the backend
// specific PG_*, MONGODB_*, OPENSEARCH_*, KAFKA_*, SMTP_* and POSTMARK_* variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/sessiontimeout/core/config"
	"github.com/dmitrymomot/sessiontimeout/core/health"
	"github.com/dmitrymomot/sessiontimeout/core/logger"
	"github.com/dmitrymomot/sessiontimeout/core/session"
	"github.com/dmitrymomot/sessiontimeout/integration/database/redis"
)

type appConfig struct {
	LogLevel        string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string   `env:"LOG_FORMAT" envDefault:"json"`
	IdentityBackend string   `env:"IDENTITY_BACKEND" envDefault:"none"` // pg, mongo or none
	AuditBackends   []string `env:"AUDIT_BACKENDS" envSeparator:","`    // any of pg, mongo, opensearch, kafka
	EmailProvider   string   `env:"EMAIL_PROVIDER" envDefault:"none"`   // smtp, postmark, dev or none
	EmailDevDir     string   `env:"EMAIL_DEV_DIR" envDefault:"./dev_emails"`
	AppName         string   `env:"APP_NAME"`
	LoginURL        string   `env:"APP_LOGIN_URL"`
	UsersCollection string   `env:"MONGODB_USERS_COLLECTION" envDefault:"users"`
	AuditCollection string   `env:"MONGODB_AUDIT_COLLECTION" envDefault:"session_timeouts"`
	PGMigrate       bool     `env:"PG_MIGRATE" envDefault:"true"`
}

type options struct {
	interval time.Duration
	dryRun   bool
	check    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "expiresessions:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	log := newLogger(cfg, stderr)

	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		return err
	}
	client, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	deps, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	if opts.check {
		checks := append([]health.Check{{Name: "redis", Fn: redis.Healthcheck(client)}}, deps.checks...)
		if err := health.Readiness(ctx, log, checks...); err != nil {
			return err
		}
		log.InfoContext(ctx, "all backends are ready", logger.Count("checks", len(checks)))
		return nil
	}

	src := session.EnvConfig(log)
	if opts.dryRun {
		src = forceDryRun(src)
	}

	manager, err := session.NewManager(redis.NewStore(client, redis.WithStoreConfig(redisCfg)),
		session.WithConfigSource(src),
		session.WithIdentityResolver(deps.resolver),
		session.WithLogger(log),
	)
	if err != nil {
		return err
	}
	for _, sub := range deps.subscribers {
		manager.Notifier().Subscribe(sub)
	}
	manager.Notifier().SubscribeFunc(func(ctx context.Context, t session.Timeout) error {
		log.InfoContext(ctx, "session expired",
			logger.SessionKey(t.Key),
			logger.UserID(t.UserID),
			slog.String("reason", string(t.Reason)))
		return nil
	})

	if opts.interval <= 0 {
		res, err := manager.Expire(ctx)
		logResult(ctx, log, res, err)
		return err
	}

	worker := session.NewSweepWorker(manager,
		session.WithSweepInterval(opts.interval),
		session.WithRunOnStart(true),
		session.WithWorkerLogger(log),
		session.WithSweepCallback(func(res session.SweepResult, err error) {
			logResult(ctx, log, res, err)
		}),
	)
	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	stats := worker.Stats()
	log.Info("sweep worker finished",
		slog.Int64("runs", stats.Runs),
		slog.Int64("failures", stats.Failures),
		slog.Int64("removed", stats.Removed))
	return nil
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("expiresessions", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.DurationVar(&opts.interval, "interval", 0, "keep sweeping at this interval instead of running once")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "report expired sessions without removing them")
	fs.BoolVar(&opts.check, "check", false, "check backend connectivity and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.interval < 0 {
		return options{}, fmt.Errorf("interval must not be negative: %s", opts.interval)
	}
	return opts, nil
}

func newLogger(cfg appConfig, w io.Writer) *slog.Logger {
	opts := []logger.Option{
		logger.WithOutput(w),
		logger.WithLevel(parseLevel(cfg.LogLevel)),
		logger.WithAttr(logger.Component("expiresessions")),
	}
	if cfg.LogFormat == "text" {
		opts = append(opts, logger.WithTextFormatter())
	} else {
		opts = append(opts, logger.WithJSONFormatter())
	}
	return logger.New(opts...)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func forceDryRun(src session.ConfigSource) session.ConfigSource {
	return func() session.Config {
		cfg := src()
		cfg.DryRun = true
		return cfg
	}
}

func logResult(ctx context.Context, log *slog.Logger, res session.SweepResult, err error) {
	attrs := []any{
		logger.Count("scanned", res.Scanned),
		logger.Count("expired", res.Expired),
		logger.Count("removed", res.Removed),
		logger.Count("notified", res.Notified),
	}
	if len(res.Warnings) > 0 {
		attrs = append(attrs, logger.Errors(res.Warnings...))
	}
	if err != nil {
		log.ErrorContext(ctx, "sweep failed", append(attrs, logger.Error(err))...)
		return
	}
	log.InfoContext(ctx, "sweep finished", attrs...)
}
