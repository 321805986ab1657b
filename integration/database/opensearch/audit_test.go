package opensearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontimeout/core/session"
	"github.com/dmitrymomot/sessiontimeout/integration/database/opensearch"
)

// fakeCluster answers info and index requests.
type fakeCluster struct {
	mu       sync.Mutex
	paths    []string
	docs     []map[string]any
	failWith int
}

func (c *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/" {
		_, _ = w.Write([]byte(`{"cluster_name":"test","version":{"number":"2.11.0","distribution":"opensearch"}}`))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != 0 {
		w.WriteHeader(c.failWith)
		_, _ = w.Write([]byte(`{"error":{"type":"cluster_block_exception"}}`))
		return
	}

	var doc map[string]any
	_ = json.NewDecoder(r.Body).Decode(&doc)
	c.paths = append(c.paths, r.Method+" "+r.URL.Path)
	c.docs = append(c.docs, doc)
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(`{"result":"created"}`))
}

func newCluster(t *testing.T) (*fakeCluster, opensearch.Config) {
	t.Helper()
	cluster := &fakeCluster{}
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)
	return cluster, opensearch.Config{Addresses: []string{srv.URL}, DisableRetry: true}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, cfg := newCluster(t)
	client, err := opensearch.New(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, opensearch.Healthcheck(client)(context.Background()))

	_, err = opensearch.New(context.Background(), opensearch.Config{
		Addresses:    []string{"http://127.0.0.1:1"},
		DisableRetry: true,
	})
	assert.ErrorIs(t, err, opensearch.ErrHealthcheckFailed)
}

func TestAuditIndexer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	timeout := session.Timeout{
		Key:      "k",
		UserID:   "42",
		Identity: &session.Identity{ID: "42", Email: "alice@example.com"},
		Session:  map[string]any{"theme": "dark"},
		Reason:   session.ReasonSweep,
		At:       time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}

	t.Run("indexes the timeout", func(t *testing.T) {
		t.Parallel()
		cluster, cfg := newCluster(t)
		client, err := opensearch.New(ctx, cfg)
		require.NoError(t, err)

		require.NoError(t, opensearch.NewAuditIndexer(client).OnTimeout(ctx, timeout))

		cluster.mu.Lock()
		defer cluster.mu.Unlock()
		require.Len(t, cluster.docs, 1)
		assert.True(t, strings.HasPrefix(cluster.paths[0], "PUT /session-timeouts/_doc/"))
		doc := cluster.docs[0]
		assert.Equal(t, "k", doc["session_key"])
		assert.Equal(t, "42", doc["user_id"])
		assert.Equal(t, "sweep", doc["reason"])
		assert.Equal(t, "2026-03-14T09:30:00Z", doc["timed_out_at"])
		assert.Equal(t, map[string]any{"theme": "dark"}, doc["session"])
	})

	t.Run("monthly indices", func(t *testing.T) {
		t.Parallel()
		cluster, cfg := newCluster(t)
		client, err := opensearch.New(ctx, cfg)
		require.NoError(t, err)

		indexer := opensearch.NewAuditIndexer(client, opensearch.WithIndex("audit"), opensearch.WithMonthlyIndex(true))
		require.NoError(t, indexer.OnTimeout(ctx, timeout))

		cluster.mu.Lock()
		defer cluster.mu.Unlock()
		assert.True(t, strings.HasPrefix(cluster.paths[0], "PUT /audit-2026.03/_doc/"))
	})

	t.Run("cluster errors", func(t *testing.T) {
		t.Parallel()
		cluster, cfg := newCluster(t)
		client, err := opensearch.New(ctx, cfg)
		require.NoError(t, err)
		cluster.mu.Lock()
		cluster.failWith = http.StatusForbidden
		cluster.mu.Unlock()

		err = opensearch.NewAuditIndexer(client).OnTimeout(ctx, timeout)
		assert.ErrorIs(t, err, opensearch.ErrIndexFailed)
		assert.Contains(t, err.Error(), "cluster_block_exception")
	})
}
