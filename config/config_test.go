package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, "postgres", cfg.Server.StoreDriver)
	assert.Equal(t, "inventory.alerts", cfg.Kafka.AlertsTopic)
	assert.Equal(t, "purchase-orders.events", cfg.Kafka.ReceiptsTopic)
	assert.Equal(t, 60*time.Second, cfg.Sync.LockTTL)
	assert.Equal(t, 500, cfg.Sync.PullPageSize)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SYNC_PULL_OVERLAP", "750ms")
	t.Setenv("SYNC_LOCK_RETRIES", "7")
	t.Setenv("REDIS_ENABLED", "false")

	cfg := LoadEnv()

	assert.Equal(t, "memory", cfg.Server.StoreDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 750*time.Millisecond, cfg.Sync.PullOverlap)
	assert.Equal(t, 7, cfg.Sync.LockRetries)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("SYNC_LOCK_TTL", "soon")
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "many")

	cfg := LoadEnv()

	assert.Equal(t, 60*time.Second, cfg.Sync.LockTTL)
	assert.Equal(t, 10, cfg.Postgres.MaxOpenConns)
}
