package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "/api/v1", cfg.APIPrefix)
	require.Equal(t, "classflow", cfg.Database.Name)
	require.Equal(t, 5*time.Minute, cfg.Timeline.CacheTTL)
	require.False(t, cfg.Timeline.CacheEnabled)
	require.Equal(t, 8784*time.Hour, cfg.Sessions.MaxGenerateSpan)
	require.Equal(t, 1, cfg.AutoAssign.QueueWorkers)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TIMELINE_CACHE_ENABLED", "true")
	t.Setenv("TIMELINE_CACHE_TTL", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.True(t, cfg.Timeline.CacheEnabled)
	require.Equal(t, 30*time.Second, cfg.Timeline.CacheTTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	require.Equal(t, time.Minute, parseDuration("", time.Minute))
	require.Equal(t, time.Minute, parseDuration("garbage", time.Minute))
	require.Equal(t, 90*time.Second, parseDuration("90s", time.Minute))
}
