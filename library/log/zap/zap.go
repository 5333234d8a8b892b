package zap

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yola1107/cardduel/library/log/zap/conf"
)

var _ log.Logger = (*Logger)(nil)

const maskValue = "***"

// Logger adapts zap to the kratos log.Logger interface. Level and masked keys
// can be swapped at runtime by the config watcher.
type Logger struct {
	sink   *sink
	direct *zap.Logger // called through log.Logger.Log
	helper *zap.Logger // called through log.Helper or the global log functions
	masked atomic.Pointer[map[string]struct{}]
}

// NewLogger builds a kratos logger on top of zap. A nil config falls back to conf.DefaultConfig.
func NewLogger(c *conf.Bootstrap) *Logger {
	if c == nil || c.Log == nil || c.Log.Logger == nil {
		c = conf.DefaultConfig()
	}
	lc := c.Log.Logger
	s, err := openSink(lc)
	if err != nil {
		panic(err)
	}
	l := newLogger(s)
	l.SetSensitive(lc.Sensitive)
	log.Debugf("Logger initialized. mode:%d app:%q level:%q directory:%q sensitives:%v",
		lc.Mode, lc.AppName, lc.Level, lc.Directory, lc.Sensitive)
	return l
}

func newLogger(s *sink) *Logger {
	l := &Logger{
		sink:   s,
		direct: s.zl.WithOptions(zap.AddCallerSkip(2)),
		helper: s.zl.WithOptions(zap.AddCallerSkip(3)),
	}
	l.masked.Store(&map[string]struct{}{})
	return l
}

func (l *Logger) Log(level log.Level, keyvals ...any) error {
	lvl := zapLevel(level)
	if !l.sink.level.Enabled(lvl) {
		return nil
	}
	if len(keyvals) == 0 || len(keyvals)%2 != 0 {
		l.sink.zl.Warn(fmt.Sprint("Keyvalues must appear in pairs: ", keyvals))
		return nil
	}

	msg, fields := l.split(keyvals)
	zl := l.direct
	if viaHelper() {
		zl = l.helper
	}
	if ce := zl.Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

// split pulls the message out of keyvals and masks the remaining fields.
func (l *Logger) split(keyvals []any) (string, []zap.Field) {
	masked := *l.masked.Load()
	msg := ""
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		switch _, hide := masked[strings.ToLower(key)]; {
		case key == log.DefaultMessageKey:
			msg, _ = keyvals[i+1].(string)
		case hide:
			fields = append(fields, zap.String(key, maskValue))
		default:
			fields = append(fields, zap.Any(key, keyvals[i+1]))
		}
	}
	return msg, fields
}

func (l *Logger) Close() error {
	defer l.sink.zl.Info("logger closed successfully")
	return l.sink.close()
}

func (l *Logger) GetLevel() string {
	return l.sink.level.String()
}

func (l *Logger) SetLevel(level string) {
	if err := l.sink.level.UnmarshalText([]byte(level)); err != nil {
		l.sink.zl.Info("invalid log level", zap.String("level", level), zap.Error(err))
		return
	}
	l.sink.zl.Info("log level updated", zap.String("level", level))
}

func (l *Logger) GetSensitive() []string {
	return lo.Keys(*l.masked.Load())
}

// SetSensitive replaces the masked keys. Matching is case-insensitive.
func (l *Logger) SetSensitive(keys []string) {
	set := lo.SliceToMap(keys, func(k string) (string, struct{}) {
		return strings.ToLower(k), struct{}{}
	})
	l.masked.Store(&set)
}

func zapLevel(level log.Level) zapcore.Level {
	switch level {
	case log.LevelDebug:
		return zapcore.DebugLevel
	case log.LevelWarn:
		return zapcore.WarnLevel
	case log.LevelError:
		return zapcore.ErrorLevel
	case log.LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// viaHelper reports whether the call came through a kratos wrapper, which adds one frame.
func viaHelper() bool {
	pc := make([]uintptr, 8)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])
	for {
		f, more := frames.Next()
		if strings.Contains(f.Function, "kratos/v2/log.(*") {
			return true
		}
		if !more {
			return false
		}
	}
}
