package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Auth.VerifySignature)
	assert.Equal(t, "memory", cfg.Presence.Store)
	assert.False(t, cfg.Presence.DisconnectCounts)
	assert.Equal(t, "none", cfg.Events.Driver)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())
	yaml := `
server:
  port: 4000
presence:
  store: redis
  disconnect_counts: true
websocket:
  pong_wait: "90s"
events:
  driver: kafka
  kafka:
    brokers: "kafka:9092"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("CONFIG_PATH", dir)
	t.Setenv("PORT", "5000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CLIENT_ORIGIN", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "redis", cfg.Presence.Store)
	assert.True(t, cfg.Presence.DisconnectCounts)
	assert.Equal(t, 90*time.Second, cfg.WebSocket.PongWait)
	assert.Equal(t, "kafka", cfg.Events.Driver)
	assert.Equal(t, "kafka:9092", cfg.Events.Kafka.Brokers)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}
