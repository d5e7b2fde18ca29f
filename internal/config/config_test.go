package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "admin", cfg.AdminUser)
	assert.Equal(t, []string{"Alumno", "Profesor", "Directivo", "Personal"}, cfg.Roles)
	assert.Equal(t, []string{"Aula 1", "Aula 2", "Laboratorio", "Gimnasio", "Biblioteca"}, cfg.Spaces)
	assert.False(t, cfg.EventsEnabled)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("RESERVATION_SPACES", "Patio,Salón de actos")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"Patio", "Salón de actos"}, cfg.Spaces)
}

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	require.NoError(t, os.Unsetenv("SESSION_SECRET"))
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, Config{Timezone: "Local"}.Location())
	assert.Equal(t, time.Local, Config{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", Config{Timezone: "UTC"}.Location().String())
}

func TestRateLimitNormalize(t *testing.T) {
	got := RateLimitConfig{Capacity: 0, RefillTokens: 0, RefillInterval: 0, TTL: 0}.normalize()
	assert.Equal(t, 1, got.Capacity)
	assert.Equal(t, 1, got.RefillTokens)
	assert.Equal(t, time.Second, got.RefillInterval)
	assert.Equal(t, 5*time.Second, got.TTL)
}

func TestParseMethods(t *testing.T) {
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, parseMethods([]string{" get", "HEAD", ""}))
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_TLS", "true")

	cfg := LoadRedisConfig()
	assert.False(t, cfg.Disabled)
	assert.Equal(t, "cache:6380", cfg.Address())
	assert.Equal(t, 2, cfg.DB)

	tlsCfg := cfg.tlsConfig()
	require.NotNil(t, tlsCfg)
	assert.False(t, tlsCfg.InsecureSkipVerify, "certificate checks stay on unless asked")

	t.Setenv("REDIS_TLS_INSECURE_SKIP_VERIFY", "true")
	assert.True(t, LoadRedisConfig().tlsConfig().InsecureSkipVerify)
}

func TestRedisAddressPrefersHostAndPort(t *testing.T) {
	cfg := RedisConfig{Addr: "ignored:1", Host: "redis", Port: "6379"}
	assert.Equal(t, "redis:6379", cfg.Address())
	assert.Equal(t, "localhost:6379", RedisConfig{}.Address())
	assert.Nil(t, RedisConfig{}.tlsConfig())
}

func TestNewRedisClientDisabled(t *testing.T) {
	t.Setenv("REDIS_DISABLED", "true")
	assert.Nil(t, NewRedisClient(LoadRedisConfig()))
}
