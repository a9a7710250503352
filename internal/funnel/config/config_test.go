package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "VIEW_DEDUP_WINDOW", "ASYNC_VIEWS", "REQUEST_TIMEOUT", "KAFKA_BROKERS", "RATE_LIMIT"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8085", cfg.HTTPPort)
	assert.Zero(t, cfg.ViewDedupWindow)
	assert.False(t, cfg.AsyncViews)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Zero(t, cfg.RateLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("VIEW_DEDUP_WINDOW", "30m")
	t.Setenv("ASYNC_VIEWS", "true")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 30*time.Minute, cfg.ViewDedupWindow)
	assert.True(t, cfg.AsyncViews)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.IsDevelopment())
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("ASYNC_VIEWS", "maybe")

	cfg := Load()
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.AsyncViews)
}
