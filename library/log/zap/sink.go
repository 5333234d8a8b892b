package zap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yola1107/cardduel/library/log/zap/conf"
)

// sink is the zap side of a Logger: the tee of outputs and the shared level.
type sink struct {
	zl      *zap.Logger
	level   zap.AtomicLevel
	closers []io.Closer
}

type levelStyle struct {
	label string
	color string
}

var levelStyles = map[zapcore.Level]levelStyle{
	zapcore.DebugLevel:  {"DEBUG", "\x1b[36m"},
	zapcore.InfoLevel:   {"INFO·", "\x1b[32m"},
	zapcore.WarnLevel:   {"WARN·", "\x1b[33m"},
	zapcore.ErrorLevel:  {"ERROR", "\x1b[31m"},
	zapcore.DPanicLevel: {"PANIC", "\x1b[35m"},
	zapcore.PanicLevel:  {"PANIC", "\x1b[35m"},
	zapcore.FatalLevel:  {"FATAL", "\x1b[35m"},
}

// openSink always writes to stderr. Production mode with a directory adds rotated files.
func openSink(c *conf.Logger) (*sink, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	s := &sink{level: level}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(true)), zapcore.Lock(os.Stderr), level),
	}
	if c.Mode == conf.MODE_PROD && c.Directory != "" {
		cores = append(cores, s.fileCore(c, ".log", level))
		if c.ErrorFile {
			cores = append(cores, s.fileCore(c, "_error.log", zap.ErrorLevel))
		}
	}

	sampled := zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewSamplerWithOptions(core, time.Second, 2000, 10)
	})
	s.zl = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.PanicLevel), sampled)
	return s, nil
}

// fileCore opens <app><suffix> under the log directory behind a lumberjack rotator.
func (s *sink) fileCore(c *conf.Logger, suffix string, enab zapcore.LevelEnabler) zapcore.Core {
	rotate := c.Rotate
	if rotate == nil {
		rotate = conf.DefaultConfig().Log.Logger.Rotate
	}
	w := &lumberjack.Logger{
		Filename:   filepath.Join(c.Directory, lo.CoalesceOrEmpty(c.AppName, "app")+suffix),
		MaxSize:    int(rotate.MaxSizeMB),
		MaxBackups: int(rotate.MaxBackups),
		MaxAge:     int(rotate.MaxAgeDays),
		Compress:   rotate.Compress,
		LocalTime:  rotate.LocalTime,
	}
	s.closers = append(s.closers, w)

	enc := zapcore.NewConsoleEncoder(encoderConfig(false))
	if c.FormatJson {
		enc = zapcore.NewJSONEncoder(encoderConfig(false))
	}
	return zapcore.NewCore(enc, zapcore.AddSync(w), enab)
}

func (s *sink) close() error {
	_ = s.zl.Sync()
	for _, c := range s.closers {
		_ = c.Close()
	}
	return nil
}

// encoderConfig renders "[time] [LEVEL] [caller] msg fields". Terminals get colored levels.
func encoderConfig(terminal bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.ConsoleSeparator = " "
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("[2006/01/02 15:04:05.000]")
	cfg.EncodeCaller = func(ec zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + ec.FullPath() + "]")
	}
	cfg.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		st := levelStyles[l]
		if terminal {
			enc.AppendString("[" + st.color + st.label + "\x1b[0m]")
			return
		}
		enc.AppendString("[" + st.label + "]")
	}
	if terminal {
		cfg.EncodeCaller = zapcore.FullCallerEncoder
	}
	return cfg
}
