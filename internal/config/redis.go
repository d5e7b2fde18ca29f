package config

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
)

// RedisConfig locates the Redis server behind sessions, distributed rate
// limiting and the page cache.  Host and Port, when both set, win over Addr.
type RedisConfig struct {
	Disabled              bool   `envconfig:"REDIS_DISABLED" default:"false"`
	Addr                  string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Host                  string `envconfig:"REDIS_HOST"`
	Port                  string `envconfig:"REDIS_PORT"`
	Password              string `envconfig:"REDIS_PASSWORD"`
	DB                    int    `envconfig:"REDIS_DB" default:"0"`
	TLS                   bool   `envconfig:"REDIS_TLS" default:"false"`
	TLSInsecureSkipVerify bool   `envconfig:"REDIS_TLS_INSECURE_SKIP_VERIFY" default:"false"`
}

// LoadRedisConfig reads the REDIS_* variables.  A malformed value disables
// Redis rather than stopping the server.
func LoadRedisConfig() RedisConfig {
	var cfg RedisConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return RedisConfig{Disabled: true}
	}
	return cfg
}

// Address returns the host:port to dial.
func (c RedisConfig) Address() string {
	if c.Host != "" && c.Port != "" {
		return net.JoinHostPort(c.Host, c.Port)
	}
	if c.Addr == "" {
		return "localhost:6379"
	}
	return c.Addr
}

func (c RedisConfig) tlsConfig() *tls.Config {
	if !c.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: c.TLSInsecureSkipVerify}
}

// NewRedisClient connects to Redis and pings it.  It returns nil when Redis
// is disabled or unreachable; callers then fall back to in-process
// sessions, rate limits and no page cache.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	if cfg.Disabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Address(),
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: cfg.tlsConfig(),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
