package xredis

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultHost        = "127.0.0.1"
	defaultPort        = 6379
	defaultMinIdle     = 2
	defaultMaxIdle     = 5
	defaultPoolSize    = 10
	defaultMaxLifetime = 2 * time.Minute
	defaultMaxIdleTime = 5 * time.Minute
)

type ClientOption func(*redis.Options)

// NewClient creates a redis client with pool defaults tuned for a single game node.
func NewClient(opts ...ClientOption) *redis.Client {
	options := &redis.Options{
		Addr:            fmt.Sprintf("%s:%d", defaultHost, defaultPort),
		PoolSize:        defaultPoolSize,
		MinIdleConns:    defaultMinIdle,
		MaxIdleConns:    defaultMaxIdle,
		ConnMaxLifetime: defaultMaxLifetime,
		ConnMaxIdleTime: defaultMaxIdleTime,
	}
	for _, opt := range opts {
		opt(options)
	}
	return redis.NewClient(options)
}

// Options applies opts to the defaults without dialing. Used by tests and diagnostics.
func Options(opts ...ClientOption) *redis.Options {
	return NewClient(opts...).Options()
}

// WithAddress sets host:port; malformed addresses are ignored.
func WithAddress(addr string) ClientOption {
	return func(o *redis.Options) {
		if _, _, err := net.SplitHostPort(addr); err == nil {
			o.Addr = addr
		}
	}
}

func WithHost(host string) ClientOption {
	return func(o *redis.Options) {
		_, port, err := net.SplitHostPort(o.Addr)
		if err != nil {
			port = strconv.Itoa(defaultPort)
		}
		o.Addr = net.JoinHostPort(host, port)
	}
}

func WithPort(port int) ClientOption {
	return func(o *redis.Options) {
		host, _, err := net.SplitHostPort(o.Addr)
		if err != nil {
			host = defaultHost
		}
		o.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func WithPassword(pass string) ClientOption {
	return func(o *redis.Options) {
		o.Password = pass
	}
}

func WithDB(db int) ClientOption {
	return func(o *redis.Options) {
		if db >= 0 {
			o.DB = db
		}
	}
}

func WithPoolSize(size int) ClientOption {
	return func(o *redis.Options) {
		if size > 0 {
			o.PoolSize = size
		}
	}
}

func WithDialTimeout(d time.Duration) ClientOption {
	return func(o *redis.Options) {
		if d > 0 {
			o.DialTimeout = d
		}
	}
}
