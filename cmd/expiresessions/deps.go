package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dmitrymomot/sessiontimeout/core/config"
	"github.com/dmitrymomot/sessiontimeout/core/email"
	"github.com/dmitrymomot/sessiontimeout/core/health"
	"github.com/dmitrymomot/sessiontimeout/core/session"
	"github.com/dmitrymomot/sessiontimeout/integration/database/mongo"
	"github.com/dmitrymomot/sessiontimeout/integration/database/opensearch"
	"github.com/dmitrymomot/sessiontimeout/integration/database/pg"
	"github.com/dmitrymomot/sessiontimeout/integration/email/postmark"
	"github.com/dmitrymomot/sessiontimeout/integration/email/smtp"
	"github.com/dmitrymomot/sessiontimeout/integration/messaging/kafka"
)

// dependencies are the optional backends selected by appConfig.
type dependencies struct {
	resolver    session.IdentityResolver
	subscribers []session.Subscriber
	checks      []health.Check
	closers     []func()
}

// Close releases the backends in reverse order of opening.
func (d *dependencies) Close() {
	if d == nil {
		return
	}
	for _, c := range slices.Backward(d.closers) {
		c()
	}
}

// connect opens the configured backends. On failure everything opened so far
// is closed before the error is returned.
func connect(ctx context.Context, cfg appConfig, log *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}
	if err := deps.open(ctx, cfg, log); err != nil {
		deps.Close()
		return nil, err
	}
	return deps, nil
}

func (d *dependencies) open(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	audit := make(map[string]bool, len(cfg.AuditBackends))
	for _, b := range cfg.AuditBackends {
		if b = strings.TrimSpace(strings.ToLower(b)); b != "" {
			audit[b] = true
		}
	}
	for b := range audit {
		switch b {
		case "pg", "mongo", "opensearch", "kafka":
		default:
			return fmt.Errorf("unknown audit backend %q", b)
		}
	}

	identity := strings.ToLower(cfg.IdentityBackend)
	switch identity {
	case "", "none", "pg", "mongo":
	default:
		return fmt.Errorf("unknown identity backend %q", cfg.IdentityBackend)
	}

	if identity == "pg" || audit["pg"] {
		if err := d.connectPG(ctx, cfg, identity == "pg", audit["pg"]); err != nil {
			return err
		}
	}
	if identity == "mongo" || audit["mongo"] {
		if err := d.connectMongo(ctx, cfg, identity == "mongo", audit["mongo"]); err != nil {
			return err
		}
	}
	if audit["opensearch"] {
		var osCfg opensearch.Config
		if err := config.Load(&osCfg); err != nil {
			return err
		}
		client, err := opensearch.New(ctx, osCfg)
		if err != nil {
			return err
		}
		d.checks = append(d.checks, health.Check{Name: "opensearch", Fn: opensearch.Healthcheck(client)})
		d.subscribers = append(d.subscribers, opensearch.NewAuditIndexer(client, opensearch.WithIndex(osCfg.Index)))
	}

	if audit["kafka"] {
		var kafkaCfg kafka.Config
		if err := config.Load(&kafkaCfg); err != nil {
			return err
		}
		writer := kafka.NewWriter(kafkaCfg)
		d.closers = append(d.closers, func() { _ = writer.Close() })
		d.checks = append(d.checks, health.Check{Name: "kafka", Fn: kafka.Healthcheck(kafkaCfg)})
		d.subscribers = append(d.subscribers, kafka.NewPublisher(writer))
	}

	sender, err := newSender(cfg)
	if err != nil {
		return err
	}
	if sender != nil {
		if d.resolver == nil {
			log.Warn("timeout emails need an identity backend to find addresses; none configured")
		}
		d.subscribers = append(d.subscribers, email.NewTimeoutNotifier(sender,
			email.WithAppName(cfg.AppName),
			email.WithLoginURL(cfg.LoginURL),
			email.WithNoticeLogger(log),
		))
	}

	return nil
}

func (d *dependencies) connectPG(ctx context.Context, cfg appConfig, resolve, audit bool) error {
	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	d.closers = append(d.closers, pool.Close)
	d.checks = append(d.checks, health.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})

	if resolve {
		d.resolver = pg.NewIdentityResolver(pool)
	}
	if audit {
		if cfg.PGMigrate {
			if err := pg.Migrate(ctx, pool, pgCfg); err != nil {
				return err
			}
		}
		d.subscribers = append(d.subscribers, pg.NewAuditLog(pool))
	}
	return nil
}

func (d *dependencies) connectMongo(ctx context.Context, cfg appConfig, resolve, audit bool) error {
	var mongoCfg mongo.Config
	if err := config.Load(&mongoCfg); err != nil {
		return err
	}
	client, err := mongo.New(ctx, mongoCfg)
	if err != nil {
		return err
	}
	d.closers = append(d.closers, func() { _ = client.Disconnect(context.Background()) })
	d.checks = append(d.checks, health.Check{Name: "mongo", Fn: mongo.Healthcheck(client)})

	db := client.Database(mongoCfg.Database)
	if resolve {
		d.resolver = mongo.NewIdentityResolver(db.Collection(cfg.UsersCollection))
	}
	if audit {
		d.subscribers = append(d.subscribers, mongo.NewAuditLog(db.Collection(cfg.AuditCollection)))
	}
	return nil
}

// newSender returns nil when emails are disabled.
func newSender(cfg appConfig) (email.EmailSender, error) {
	switch strings.ToLower(cfg.EmailProvider) {
	case "", "none":
		return nil, nil
	case "dev":
		return email.NewDevSender(cfg.EmailDevDir), nil
	case "smtp":
		var smtpCfg smtp.Config
		if err := config.Load(&smtpCfg); err != nil {
			return nil, err
		}
		return smtp.New(smtpCfg)
	case "postmark":
		var pmCfg postmark.Config
		if err := config.Load(&pmCfg); err != nil {
			return nil, err
		}
		return postmark.New(pmCfg)
	default:
		return nil, errors.New("unknown email provider " + cfg.EmailProvider)
	}
}
