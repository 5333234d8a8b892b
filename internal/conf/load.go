package conf

import (
	"fmt"
	"reflect"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/yola1107/cardduel/library/ext"
	"github.com/yola1107/cardduel/library/log/zap"
	zconf "github.com/yola1107/cardduel/library/log/zap/conf"
)

// Executor runs config updates on the goroutine that owns the rooms.
type Executor interface {
	Post(job func()) bool
}

// LoadConfig reads the yaml config at flagconf and fills defaults.
func LoadConfig(flagconf string) (config.Config, *Bootstrap, *zconf.Bootstrap, error) {
	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)

	if err := c.Load(); err != nil {
		return nil, nil, nil, err
	}

	var (
		bc Bootstrap
		lc zconf.Bootstrap
	)

	if err := c.Scan(&bc); err != nil {
		return c, nil, nil, fmt.Errorf("bootstrap config scan: %w", err)
	}
	if err := bc.Complete(); err != nil {
		return c, nil, nil, fmt.Errorf("bootstrap config defaults: %w", err)
	}
	if err := bc.ValidateAll(); err != nil {
		return c, nil, nil, fmt.Errorf("bootstrap config invalid: %w", err)
	}
	if err := c.Scan(&lc); err != nil {
		return c, nil, nil, fmt.Errorf("logger config scan: %w", err)
	}
	if err := lc.ValidateAll(); err != nil {
		return c, nil, nil, fmt.Errorf("logger config invalid: %w", err)
	}

	return c, &bc, &lc, nil
}

type watchTarget struct {
	key   string
	ptr   any
	apply func(func())
	after func(any)
}

// WatchConfig hot-reloads room.game, room.robot and log.logger. Room sections are
// copied on exec so rooms never observe a half-written config.
func WatchConfig(c config.Config, bc *Bootstrap, lc *zconf.Bootstrap, logger *zap.Logger, exec Executor) error {
	onLoop := func(f func()) {
		if !exec.Post(f) {
			log.Warnf("[config] update dropped, loop stopped")
		}
	}
	direct := func(f func()) { f() }

	targets := []watchTarget{
		{key: "room.game", ptr: bc.Room.Game, apply: onLoop},
		{key: "room.robot", ptr: bc.Room.Robot, apply: onLoop},
	}
	if lc != nil && lc.Log != nil && lc.Log.Logger != nil {
		targets = append(targets, watchTarget{key: "log.logger", ptr: lc.Log.Logger, apply: direct, after: loggerChanged(logger)})
	}

	for _, t := range targets {
		if err := c.Watch(t.key, observer(t.key, t.ptr, t.apply, t.after)); err != nil {
			return fmt.Errorf("watch %q failed: %w", t.key, err)
		}
	}
	return nil
}

func observer(key string, target any, apply func(func()), after func(any)) func(string, config.Value) {
	return func(_ string, val config.Value) {
		typ := reflect.TypeOf(target)
		if typ.Kind() != reflect.Pointer {
			log.Errorf("[config] %q target must be a pointer", key)
			return
		}

		newVal := reflect.New(typ.Elem()).Interface()
		if err := val.Scan(newVal); err != nil {
			log.Errorf("[config] scan failed: key=%q, err=%v", key, err)
			return
		}
		if v, ok := newVal.(interface{ Complete() error }); ok {
			if err := v.Complete(); err != nil {
				log.Errorf("[config] defaults failed: key=%q, err=%v", key, err)
				return
			}
		}
		if v, ok := newVal.(interface{ ValidateAll() error }); ok {
			if err := v.ValidateAll(); err != nil {
				log.Errorf("[config] validation failed: key=%q, err=%v", key, err)
				return
			}
		}

		apply(func() {
			_, diff, err := ext.DiffLog(target, newVal)
			if err != nil {
				log.Errorf("[config] diff failed: key=%q, err=%v", key, err)
				return
			}
			if len(diff) == 0 {
				return
			}
			log.Warnf("[config] [%q] updated:\n%s", key, diff)
			if err := ext.DeepCopy(target, newVal); err != nil {
				log.Errorf("[config] update failed: key=%q, err=%v", key, err)
				return
			}
			if after != nil {
				after(newVal)
			}
		})
	}
}

func loggerChanged(logger *zap.Logger) func(any) {
	return func(val any) {
		v, ok := val.(*zconf.Logger)
		if !ok || logger == nil {
			return
		}
		if v.Level != logger.GetLevel() {
			logger.SetLevel(v.Level)
		}
		if changes, err := ext.Diff(v.Sensitive, logger.GetSensitive()); err == nil && len(changes) > 0 {
			logger.SetSensitive(v.Sensitive)
		}
	}
}
