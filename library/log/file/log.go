package file

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	timeFormat        = "2006/01/02 15:04:05.000"
	defaultMaxSize    = 10 // MB
	defaultMaxAge     = 7  // days
	defaultMaxBackups = 3
)

// Log writes plain journal lines to one rotating file.
type Log struct {
	logger *zap.Logger
	writer *lumberjack.Logger
}

// NewFileLog opens (lazily, on first write) a rotating journal at filename.
func NewFileLog(filename string) *Log {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeLevel = nil
	encoderCfg.EncodeTime = customTimeEncoder
	encoderCfg.ConsoleSeparator = " "
	fileEnc := zapcore.NewConsoleEncoder(encoderCfg)
	lj := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    defaultMaxSize,
		MaxAge:     defaultMaxAge,
		MaxBackups: defaultMaxBackups,
		LocalTime:  true,
		Compress:   true,
	}
	logger := zap.New(zapcore.NewCore(fileEnc, zapcore.AddSync(lj), zapcore.InfoLevel))
	return &Log{
		logger: logger,
		writer: lj,
	}
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format(timeFormat) + "]")
}

func (l *Log) Sync() error {
	return l.logger.Sync()
}

// Close flushes and releases the file handle.
func (l *Log) Close() error {
	_ = l.logger.Sync()
	return l.writer.Close()
}

// Infow writes a structured line.
func (l *Log) Infow(msg string, kvs ...interface{}) {
	l.logger.Sugar().Infow(msg, kvs...)
}

// WriteLog writes a printf-style line.
func (l *Log) WriteLog(msg string, args ...interface{}) {
	l.logger.Sugar().Infof(msg, args...)
}
