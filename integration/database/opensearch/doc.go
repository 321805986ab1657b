// Package opensearch connects to an OpenSearch cluster and indexes session
// timeouts for later search and analytics.
//
// New builds a client from Config and verifies the cluster with an Info call
// before returning it:
//
//	client, err := opensearch.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	manager.Notifier().Subscribe(opensearch.NewAuditIndexer(client,
//		opensearch.WithIndex("session-timeouts"),
//		opensearch.WithMonthlyIndex(true),
//	))
//
// Each timeout becomes one document with a generated id; monthly indices get
// a "-2006.01" suffix from the timeout time.
//
// Configuration is read from the environment:
//
//	type Config struct {
//		Addresses    []string `env:"OPENSEARCH_ADDRESSES,required"`
//		Username     string   `env:"OPENSEARCH_USERNAME"`
//		Password     string   `env:"OPENSEARCH_PASSWORD"`
//		MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
//		DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`
//		Index        string   `env:"OPENSEARCH_TIMEOUT_INDEX" envDefault:"session-timeouts"`
//	}
//
// ErrConnectionFailed, ErrHealthcheckFailed and ErrIndexFailed can be checked with errors.Is.
package opensearch
