package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	ErrNoBrokers         = errors.New("kafka: no brokers configured")
	ErrHealthcheckFailed = errors.New("kafka healthcheck failed")
	ErrPublishFailed     = errors.New("kafka: publish failed")
)

// Config holds broker addresses and the topic timeouts are written to.
type Config struct {
	Brokers      []string      `env:"KAFKA_BROKERS,required" envSeparator:","`
	Topic        string        `env:"KAFKA_TIMEOUT_TOPIC" envDefault:"session.timeouts"`
	BatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"100ms"`
	DialTimeout  time.Duration `env:"KAFKA_DIAL_TIMEOUT" envDefault:"5s"`
}

// NewWriter creates a synchronous writer for cfg.Topic that waits for all
// in-sync replicas.
func NewWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: cfg.BatchTimeout,
	}
}

// Healthcheck returns a function that dials the first reachable broker.
func Healthcheck(cfg Config) func(context.Context) error {
	return func(ctx context.Context) error {
		if len(cfg.Brokers) == 0 {
			return ErrNoBrokers
		}
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}

		var errs []error
		for _, broker := range cfg.Brokers {
			conn, err := kafka.DialContext(ctx, "tcp", broker)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			_ = conn.Close()
			return nil
		}
		return errors.Join(ErrHealthcheckFailed, errors.Join(errs...))
	}
}
