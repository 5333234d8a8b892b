package data

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"github.com/yola1107/cardduel/internal/conf"
	"github.com/yola1107/cardduel/library/xredis"
)

const pingSlack = 500 * time.Millisecond

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(NewData, NewEventRepo, NewRedis)

// Data holds the optional downstream clients.
type Data struct {
	redis   *redis.Client
	channel string
}

// NewData wires rdb, which is nil when no redis address is configured.
func NewData(c *conf.Data, logger log.Logger, rdb *redis.Client) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	cleanup := func() {
		helper.Info("closing the data resources")
		if rdb != nil {
			_ = rdb.Close()
		}
	}

	d := &Data{redis: rdb}
	if c != nil && c.Redis != nil {
		d.channel = c.Redis.Channel
	}
	return d, cleanup, nil
}

// NewRedis returns nil when data.redis.addr is empty. A failed ping is logged, not fatal:
// the event stream is best effort.
func NewRedis(c *conf.Data) *redis.Client {
	if c == nil || c.Redis == nil || c.Redis.Addr == "" {
		log.Infof("redis disabled, match events are dropped")
		return nil
	}
	rdb := xredis.NewClient(
		xredis.WithAddress(c.Redis.Addr),
		xredis.WithPassword(c.Redis.Password),
		xredis.WithDB(int(c.Redis.DB)),
		xredis.WithDialTimeout(c.Redis.DialTimeout.AsDuration()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.Redis.DialTimeout.AsDuration()+pingSlack)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnf("redis ping %s: %v", c.Redis.Addr, err)
	}
	return rdb
}
