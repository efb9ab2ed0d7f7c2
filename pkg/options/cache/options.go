// Package cache provides cache configuration options.
package cache

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// RedisOptions contains the optional Redis cache tier configuration.
type RedisOptions struct {
	// Enabled turns the Redis tier on.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Host is the Redis host address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the Redis port.
	Port int `json:"port" mapstructure:"port"`

	// Password is the Redis password.
	Password string `json:"password" mapstructure:"password"`

	// Database is the Redis database number.
	Database int `json:"database" mapstructure:"database"`

	// MaxRetries is the maximum retry count.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	// PoolSize is the connection pool size.
	PoolSize int `json:"pool-size" mapstructure:"pool-size"`

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int `json:"min-idle-conns" mapstructure:"min-idle-conns"`
}

// NewRedisOptions creates default Redis options (disabled).
func NewRedisOptions() *RedisOptions {
	return &RedisOptions{
		Enabled:      false,
		Host:         "localhost",
		Port:         6379,
		Database:     0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
	}
}

// Addr returns the host:port address.
func (o *RedisOptions) Addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// Options contains cache configuration.
type Options struct {
	// PDFCacheSize is the capacity of the per-PDF index LFU cache.
	PDFCacheSize int `json:"pdf-cache-size" mapstructure:"pdf-cache-size"`

	// QueryCacheSize is the capacity of the query result LFU cache.
	QueryCacheSize int `json:"query-cache-size" mapstructure:"query-cache-size"`

	// TTL is the expiry of entries in the Redis tier.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// KeyPrefix is the Redis key prefix.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`

	// Redis configures the optional shared cache tier.
	Redis *RedisOptions `json:"redis" mapstructure:"redis"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		PDFCacheSize:   10,
		QueryCacheSize: 100,
		TTL:            1 * time.Hour,
		KeyPrefix:      "docqa:query:",
		Redis:          NewRedisOptions(),
	}
}

// AddFlags adds cache flags to the given FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.PDFCacheSize, "cache.pdf-cache-size", o.PDFCacheSize, "Capacity of the per-PDF index cache")
	fs.IntVar(&o.QueryCacheSize, "cache.query-cache-size", o.QueryCacheSize, "Capacity of the query result cache")
	fs.DurationVar(&o.TTL, "cache.ttl", o.TTL, "TTL of Redis cache entries")
	fs.StringVar(&o.KeyPrefix, "cache.key-prefix", o.KeyPrefix, "Redis cache key prefix")
	fs.BoolVar(&o.Redis.Enabled, "cache.redis.enabled", o.Redis.Enabled, "Enable the Redis cache tier")
	fs.StringVar(&o.Redis.Host, "cache.redis.host", o.Redis.Host, "Redis host")
	fs.IntVar(&o.Redis.Port, "cache.redis.port", o.Redis.Port, "Redis port")
	fs.StringVar(&o.Redis.Password, "cache.redis.password", o.Redis.Password, "Redis password")
	fs.IntVar(&o.Redis.Database, "cache.redis.database", o.Redis.Database, "Redis database number")
	fs.IntVar(&o.Redis.PoolSize, "cache.redis.pool-size", o.Redis.PoolSize, "Redis connection pool size")
	fs.IntVar(&o.Redis.MinIdleConns, "cache.redis.min-idle-conns", o.Redis.MinIdleConns, "Redis minimum idle connections")
}

// Validate validates the cache options.
func (o *Options) Validate() error {
	if o.PDFCacheSize <= 0 {
		return fmt.Errorf("cache.pdf-cache-size must be positive")
	}
	if o.QueryCacheSize <= 0 {
		return fmt.Errorf("cache.query-cache-size must be positive")
	}
	if o.Redis != nil && o.Redis.Enabled {
		if o.Redis.Host == "" {
			return fmt.Errorf("cache.redis.host is required when the Redis tier is enabled")
		}
		if o.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when the Redis tier is enabled")
		}
	}
	return nil
}

// Complete completes the options.
func (o *Options) Complete() error {
	if o.Redis == nil {
		o.Redis = NewRedisOptions()
	}
	return nil
}
