// Package config reads webpath server settings from the Redis CONFIG_DB.
package config

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// configDB is the CONFIG_DB database index
	configDB = 4

	// settingsKey is the hash holding the server settings
	settingsKey = "WEBPATH|settings"

	defaultRedisAddr = "localhost:6379"
	defaultAddress   = "localhost"
)

// WebPathConfig holds server settings stored in Redis
type WebPathConfig struct {
	Address string
	Port    int
	WebRoot string
}

// GetEndpoint returns the host:port the server should listen on
func (c *WebPathConfig) GetEndpoint() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// ParseWebPathConfig builds a WebPathConfig from the fields of the settings hash
func ParseWebPathConfig(fields map[string]string) (*WebPathConfig, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s not found", settingsKey)
	}

	portStr, ok := fields["port"]
	if !ok || portStr == "" {
		return nil, fmt.Errorf("%s has no port", settingsKey)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %q in %s", portStr, settingsKey)
	}

	cfg := &WebPathConfig{
		Address: fields["address"],
		Port:    port,
		WebRoot: fields["web_root"],
	}
	if cfg.Address == "" {
		cfg.Address = defaultAddress
	}

	return cfg, nil
}

// GetWebPathConfigFromRedis reads the settings hash from CONFIG_DB. The Redis
// address comes from REDIS_ADDR and defaults to localhost:6379.
func GetWebPathConfigFromRedis(ctx context.Context) (*WebPathConfig, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = defaultRedisAddr
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DB:          configDB,
		DialTimeout: 2 * time.Second,
	})
	defer rdb.Close()

	return GetWebPathConfig(ctx, rdb)
}

// GetWebPathConfig reads the settings hash using an existing Redis client
func GetWebPathConfig(ctx context.Context, rdb redis.Cmdable) (*WebPathConfig, error) {
	fields, err := rdb.HGetAll(ctx, settingsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from redis: %w", settingsKey, err)
	}
	return ParseWebPathConfig(fields)
}
